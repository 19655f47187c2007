// Package crm wires the sales pipeline pages: leads, opportunities,
// quotations, sales orders, activities and communications.
package crm

import (
	"context"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/crm"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/options"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/export"
)

// Module is the ERP module name of the CRM pages.
const Module = "crm"

// Service holds the CRM resources.
type Service struct {
	Leads          *records.Resource[crm.Lead]
	Opportunities  *records.Resource[crm.Opportunity]
	Quotations     *records.Resource[crm.Quotation]
	SalesOrders    *records.Resource[crm.SalesOrder]
	Activities     *records.Resource[crm.Activity]
	Communications *records.Resource[crm.Communication]
	options        *records.OptionsService
}

// NewService creates the CRM service.
func NewService(deps records.Deps, opts *records.OptionsService) *Service {
	return &Service{
		Leads:          records.NewResource(deps, LeadsDefinition()),
		Opportunities:  records.NewResource(deps, OpportunitiesDefinition()),
		Quotations:     records.NewResource(deps, QuotationsDefinition()),
		SalesOrders:    records.NewResource(deps, SalesOrdersDefinition()),
		Activities:     records.NewResource(deps, ActivitiesDefinition()),
		Communications: records.NewResource(deps, CommunicationsDefinition()),
		options:        opts,
	}
}

// Options returns the CRM lookup lists, optionally narrowed.
func (s *Service) Options(ctx context.Context, narrow string) (options.Bundle, error) {
	return s.options.Bundle(ctx, Module, narrow)
}

// AdvanceOpportunity moves an opportunity one step along Open, Quoted, Closed.
func (s *Service) AdvanceOpportunity(ctx context.Context, name string) (crm.Opportunity, error) {
	return s.Opportunities.Advance(ctx, name)
}

// LogActivity attaches a new activity to ref.
func (s *Service) LogActivity(ctx context.Context, ref crm.Reference, in *crm.ActivityInput) (crm.Activity, error) {
	return s.Activities.CreateByReference(ctx, ref.Doctype, ref.Name, in)
}

// LogCommunication attaches a new communication to ref.
func (s *Service) LogCommunication(ctx context.Context, ref crm.Reference, in *crm.CommunicationInput) (crm.Communication, error) {
	return s.Communications.CreateByReference(ctx, ref.Doctype, ref.Name, in)
}

func endpoint(resource, listKey, recordKey string) records.Endpoint {
	return records.Endpoint{Module: Module, Resource: resource, ListKey: listKey, RecordKey: recordKey}
}

// LeadsDefinition declares the leads page.
func LeadsDefinition() records.Definition[crm.Lead] {
	return records.Definition[crm.Lead]{
		Endpoint:   endpoint("leads", "leads", "lead"),
		Title:      "Leads",
		FilterKeys: crm.LeadFilterKeys,
		Summarize: func(items []crm.Lead, _ time.Time) any {
			return crm.SummarizeLeads(items)
		},
		Columns: []export.Column[crm.Lead]{
			{Header: "Lead ID", Value: func(l crm.Lead) any { return l.Name }},
			{Header: "Name", Value: func(l crm.Lead) any { return l.DisplayName() }},
			{Header: "Company", Value: func(l crm.Lead) any { return listview.OrNA(l.CompanyName) }},
			{Header: "Email", Value: func(l crm.Lead) any { return l.EmailID }},
			{Header: "Mobile", Value: func(l crm.Lead) any { return l.MobileNo }},
			{Header: "Source", Value: func(l crm.Lead) any { return l.Source }},
			{Header: "Owner", Value: func(l crm.Lead) any { return l.LeadOwner.Display() }},
			{Header: "Status", Value: func(l crm.Lead) any { return l.Status }},
		},
		NewInput: func() records.Input { return &crm.LeadInput{} },
		Flow:     crm.LeadFlow,
	}
}

// OpportunitiesDefinition declares the opportunities page.
func OpportunitiesDefinition() records.Definition[crm.Opportunity] {
	return records.Definition[crm.Opportunity]{
		Endpoint:   endpoint("opportunities", "opportunities", "opportunity"),
		Title:      "Opportunities",
		FilterKeys: crm.OpportunityFilterKeys,
		Summarize: func(items []crm.Opportunity, now time.Time) any {
			return crm.SummarizeOpportunities(items, now)
		},
		Columns: []export.Column[crm.Opportunity]{
			{Header: "Opportunity ID", Value: func(o crm.Opportunity) any { return o.Name }},
			{Header: "From", Value: func(o crm.Opportunity) any { return o.OpportunityFrom }},
			{Header: "Party", Value: func(o crm.Opportunity) any { return listview.Or(o.CustomerName, o.PartyName) }},
			{Header: "Stage", Value: func(o crm.Opportunity) any { return o.SalesStage }},
			{Header: "Amount", Value: func(o crm.Opportunity) any { return o.OpportunityAmount.Finite() }},
			{Header: "Probability", Value: func(o crm.Opportunity) any { return o.Probability.Finite() }},
			{Header: "Expected Closing", Value: func(o crm.Opportunity) any { return o.ExpectedClosing.String() }},
			{Header: "Owner", Value: func(o crm.Opportunity) any { return o.OpportunityOwner.Display() }},
			{Header: "Status", Value: func(o crm.Opportunity) any { return o.Status }},
		},
		NewInput: func() records.Input { return &crm.OpportunityInput{} },
		Flow:     crm.OpportunityFlow,
	}
}

// QuotationsDefinition declares the quotations page.
func QuotationsDefinition() records.Definition[crm.Quotation] {
	return records.Definition[crm.Quotation]{
		Endpoint:   endpoint("quotations", "quotations", "quotation"),
		Title:      "Quotations",
		FilterKeys: crm.QuotationFilterKeys,
		Summarize: func(items []crm.Quotation, now time.Time) any {
			return crm.SummarizeQuotations(items, now)
		},
		Columns: []export.Column[crm.Quotation]{
			{Header: "Quotation ID", Value: func(q crm.Quotation) any { return q.Name }},
			{Header: "To", Value: func(q crm.Quotation) any { return q.QuotationTo }},
			{Header: "Party", Value: func(q crm.Quotation) any { return listview.Or(q.CustomerName, q.PartyName) }},
			{Header: "Date", Value: func(q crm.Quotation) any { return q.TransactionDate.String() }},
			{Header: "Valid Till", Value: func(q crm.Quotation) any { return q.ValidTill.String() }},
			{Header: "Grand Total", Value: func(q crm.Quotation) any { return q.GrandTotal.Finite() }},
			{Header: "Status", Value: func(q crm.Quotation) any { return q.Status }},
		},
		NewInput: func() records.Input { return &crm.QuotationInput{} },
	}
}

// SalesOrdersDefinition declares the sales orders page.
func SalesOrdersDefinition() records.Definition[crm.SalesOrder] {
	return records.Definition[crm.SalesOrder]{
		Endpoint:   endpoint("sales-orders", "sales_orders", "sales_order"),
		Title:      "Sales Orders",
		FilterKeys: crm.SalesOrderFilterKeys,
		Summarize: func(items []crm.SalesOrder, now time.Time) any {
			return crm.SummarizeSalesOrders(items, now)
		},
		Columns: []export.Column[crm.SalesOrder]{
			{Header: "Order ID", Value: func(s crm.SalesOrder) any { return s.Name }},
			{Header: "Customer", Value: func(s crm.SalesOrder) any { return listview.Or(s.CustomerName, s.Customer) }},
			{Header: "Date", Value: func(s crm.SalesOrder) any { return s.TransactionDate.String() }},
			{Header: "Delivery Date", Value: func(s crm.SalesOrder) any { return s.DeliveryDate.String() }},
			{Header: "Grand Total", Value: func(s crm.SalesOrder) any { return s.GrandTotal.Finite() }},
			{Header: "% Delivered", Value: func(s crm.SalesOrder) any { return s.PerDelivered.Finite() }},
			{Header: "Status", Value: func(s crm.SalesOrder) any { return s.Status }},
		},
		NewInput: func() records.Input { return &crm.SalesOrderInput{} },
	}
}

// ActivitiesDefinition declares the activities page.
func ActivitiesDefinition() records.Definition[crm.Activity] {
	return records.Definition[crm.Activity]{
		Endpoint:   endpoint("activities", "activities", "activity"),
		Title:      "Activities",
		FilterKeys: crm.ActivityFilterKeys,
		Summarize: func(items []crm.Activity, now time.Time) any {
			return crm.SummarizeActivities(items, now)
		},
		Columns: []export.Column[crm.Activity]{
			{Header: "Activity ID", Value: func(a crm.Activity) any { return a.Name }},
			{Header: "Subject", Value: func(a crm.Activity) any { return a.Subject }},
			{Header: "Type", Value: func(a crm.Activity) any { return a.ActivityType }},
			{Header: "Priority", Value: func(a crm.Activity) any { return a.Priority }},
			{Header: "Date", Value: func(a crm.Activity) any { return a.Date.String() }},
			{Header: "Allocated To", Value: func(a crm.Activity) any { return a.AllocatedTo.Display() }},
			{Header: "Reference", Value: func(a crm.Activity) any { return listview.OrNA(a.ReferenceName) }},
			{Header: "Status", Value: func(a crm.Activity) any { return a.Status }},
		},
		NewInput:    func() records.Input { return &crm.ActivityInput{} },
		ByReference: true,
		Flow:        crm.ActivityFlow,
	}
}

// CommunicationsDefinition declares the communications page.
func CommunicationsDefinition() records.Definition[crm.Communication] {
	return records.Definition[crm.Communication]{
		Endpoint:   endpoint("communications", "communications", "communication"),
		Title:      "Communications",
		FilterKeys: crm.CommunicationFilterKeys,
		Summarize: func(items []crm.Communication, _ time.Time) any {
			return crm.SummarizeCommunications(items)
		},
		Columns: []export.Column[crm.Communication]{
			{Header: "Communication ID", Value: func(c crm.Communication) any { return c.Name }},
			{Header: "Subject", Value: func(c crm.Communication) any { return c.Subject }},
			{Header: "Medium", Value: func(c crm.Communication) any { return c.CommunicationMedium }},
			{Header: "Direction", Value: func(c crm.Communication) any { return c.SentOrReceived }},
			{Header: "Date", Value: func(c crm.Communication) any { return c.CommunicationDate.String() }},
			{Header: "Reference", Value: func(c crm.Communication) any { return listview.OrNA(c.ReferenceName) }},
			{Header: "Status", Value: func(c crm.Communication) any { return c.Status }},
		},
		NewInput:    func() records.Input { return &crm.CommunicationInput{} },
		ByReference: true,
	}
}
