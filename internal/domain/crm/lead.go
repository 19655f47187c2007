// Package crm holds the sales pipeline documents: leads, opportunities,
// quotations and sales orders, plus the activities and communications that
// can be attached to any of them.
package crm

import (
	"strings"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
)

// Lead statuses
const (
	LeadStatusLead          = "Lead"
	LeadStatusOpen          = "Open"
	LeadStatusReplied       = "Replied"
	LeadStatusInterested    = "Interested"
	LeadStatusOpportunity   = "Opportunity"
	LeadStatusQuotation     = "Quotation"
	LeadStatusLostQuotation = "Lost Quotation"
	LeadStatusConverted     = "Converted"
	LeadStatusDoNotContact  = "Do Not Contact"
)

// LeadFlow is the qualification lifecycle of a lead
var LeadFlow = listview.NewStatusFlow("Lead",
	LeadStatusLead, LeadStatusOpen, LeadStatusReplied, LeadStatusInterested, LeadStatusOpportunity,
	LeadStatusQuotation, LeadStatusLostQuotation, LeadStatusConverted, LeadStatusDoNotContact).
	Forward(LeadStatusLead, LeadStatusOpen).
	Forward(LeadStatusOpen, LeadStatusReplied).
	Forward(LeadStatusReplied, LeadStatusInterested).
	Forward(LeadStatusInterested, LeadStatusOpportunity).
	Forward(LeadStatusOpportunity, LeadStatusQuotation).
	Forward(LeadStatusQuotation, LeadStatusConverted).
	Allow(LeadStatusLead, LeadStatusReplied, LeadStatusInterested, LeadStatusDoNotContact).
	Allow(LeadStatusOpen, LeadStatusInterested, LeadStatusOpportunity, LeadStatusDoNotContact).
	Allow(LeadStatusReplied, LeadStatusOpen, LeadStatusOpportunity, LeadStatusDoNotContact).
	Allow(LeadStatusInterested, LeadStatusQuotation, LeadStatusDoNotContact).
	Allow(LeadStatusOpportunity, LeadStatusConverted, LeadStatusDoNotContact).
	Allow(LeadStatusQuotation, LeadStatusLostQuotation).
	Allow(LeadStatusLostQuotation, LeadStatusOpen).
	Allow(LeadStatusDoNotContact, LeadStatusOpen)

// LeadFilterKeys are the server-side filters of the leads page
var LeadFilterKeys = []string{"status", "source", "territory", "lead_owner", "industry"}

// Lead is a prospective customer
type Lead struct {
	Name        string            `json:"name"`
	LeadName    string            `json:"lead_name"`
	FirstName   string            `json:"first_name,omitempty"`
	LastName    string            `json:"last_name,omitempty"`
	CompanyName string            `json:"company_name,omitempty"`
	EmailID     string            `json:"email_id,omitempty"`
	MobileNo    string            `json:"mobile_no,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Source      string            `json:"source,omitempty"`
	Territory   string            `json:"territory,omitempty"`
	Industry    string            `json:"industry,omitempty"`
	LeadOwner   listview.FlexName `json:"lead_owner"`
	Status      string            `json:"status"`
	Creation    listview.Date     `json:"creation"`
}

func (l Lead) RecordName() string  { return l.Name }
func (l Lead) StatusValue() string { return l.Status }

// SearchFields returns the fields the leads search box looks at
func (l Lead) SearchFields() []string {
	return []string{l.Name, l.DisplayName(), l.CompanyName, l.EmailID, l.MobileNo, l.Phone}
}

// DisplayName returns the lead name, or first and last name joined
func (l Lead) DisplayName() string {
	if l.LeadName != "" {
		return l.LeadName
	}
	return listview.Or(strings.TrimSpace(l.FirstName+" "+l.LastName), listview.FallbackUnknown)
}

// LeadSummary is the card strip above the leads table
type LeadSummary struct {
	Count     int `json:"count"`
	Open      int `json:"open"`
	Converted int `json:"converted"`
	Lost      int `json:"lost"`
}

// SummarizeLeads computes the lead cards
func SummarizeLeads(items []Lead) LeadSummary {
	return LeadSummary{
		Count:     len(items),
		Open:      listview.CountStatus(items, Lead.StatusValue, LeadStatusLead, LeadStatusOpen, LeadStatusReplied, LeadStatusInterested),
		Converted: listview.CountStatus(items, Lead.StatusValue, LeadStatusConverted, LeadStatusOpportunity, LeadStatusQuotation),
		Lost:      listview.CountStatus(items, Lead.StatusValue, LeadStatusLostQuotation, LeadStatusDoNotContact),
	}
}

// LeadInput is the payload of the new and edit lead forms
type LeadInput struct {
	FirstName   string `json:"first_name" validate:"required,max=140"`
	LastName    string `json:"last_name,omitempty" validate:"max=140"`
	CompanyName string `json:"company_name,omitempty" validate:"max=140"`
	EmailID     string `json:"email_id,omitempty" validate:"omitempty,email"`
	MobileNo    string `json:"mobile_no,omitempty" validate:"max=40"`
	Phone       string `json:"phone,omitempty" validate:"max=40"`
	Source      string `json:"source,omitempty"`
	Territory   string `json:"territory,omitempty"`
	Industry    string `json:"industry,omitempty"`
	LeadOwner   string `json:"lead_owner,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *LeadInput) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.EmailID = strings.TrimSpace(in.EmailID)
	in.Source = listview.Unsentinel(strings.TrimSpace(in.Source))
	in.Territory = listview.Unsentinel(strings.TrimSpace(in.Territory))
	in.Industry = listview.Unsentinel(strings.TrimSpace(in.Industry))
	in.LeadOwner = listview.Unsentinel(strings.TrimSpace(in.LeadOwner))
	in.Status = listview.Unsentinel(strings.TrimSpace(in.Status))
}

// StatusValue returns the requested lead status
func (in *LeadInput) StatusValue() string { return in.Status }
