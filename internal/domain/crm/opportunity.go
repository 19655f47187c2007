package crm

import (
	"strings"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared/valueobject"
)

// ClosingHorizonDays is how far ahead the "closing soon" card looks
const ClosingHorizonDays = 30

// Opportunity statuses
const (
	OpportunityStatusOpen      = "Open"
	OpportunityStatusReplied   = "Replied"
	OpportunityStatusQuoted    = "Quoted"
	OpportunityStatusClosed    = "Closed"
	OpportunityStatusConverted = "Converted"
	OpportunityStatusLost      = "Lost"
)

// OpportunityFlow is the sales lifecycle of an opportunity. Advancing walks
// Open, Quoted, Closed.
var OpportunityFlow = listview.NewStatusFlow("Opportunity",
	OpportunityStatusOpen, OpportunityStatusReplied, OpportunityStatusQuoted,
	OpportunityStatusClosed, OpportunityStatusConverted, OpportunityStatusLost).
	Forward(OpportunityStatusOpen, OpportunityStatusQuoted).
	Forward(OpportunityStatusReplied, OpportunityStatusQuoted).
	Forward(OpportunityStatusQuoted, OpportunityStatusClosed).
	Allow(OpportunityStatusOpen, OpportunityStatusReplied, OpportunityStatusLost, OpportunityStatusClosed).
	Allow(OpportunityStatusReplied, OpportunityStatusOpen, OpportunityStatusLost).
	Allow(OpportunityStatusQuoted, OpportunityStatusOpen, OpportunityStatusConverted, OpportunityStatusLost).
	Allow(OpportunityStatusLost, OpportunityStatusOpen).
	Allow(OpportunityStatusClosed, OpportunityStatusOpen)

// OpportunityFilterKeys are the server-side filters of the opportunities page
var OpportunityFilterKeys = []string{"status", "opportunity_from", "opportunity_type", "sales_stage", "opportunity_owner", "territory"}

// Opportunity is a qualified sales opportunity
type Opportunity struct {
	Name              string            `json:"name"`
	OpportunityFrom   string            `json:"opportunity_from"`
	PartyName         string            `json:"party_name"`
	CustomerName      string            `json:"customer_name,omitempty"`
	Title             string            `json:"title,omitempty"`
	OpportunityType   string            `json:"opportunity_type,omitempty"`
	SalesStage        string            `json:"sales_stage,omitempty"`
	OpportunityAmount listview.Amount   `json:"opportunity_amount"`
	Probability       listview.Amount   `json:"probability"`
	Currency          string            `json:"currency,omitempty"`
	ExpectedClosing   listview.Date     `json:"expected_closing"`
	OpportunityOwner  listview.FlexName `json:"opportunity_owner"`
	Territory         string            `json:"territory,omitempty"`
	Status            string            `json:"status"`
}

func (o Opportunity) RecordName() string  { return o.Name }
func (o Opportunity) StatusValue() string { return o.Status }

// SearchFields returns the fields the opportunities search box looks at
func (o Opportunity) SearchFields() []string {
	return []string{o.Name, o.PartyName, o.CustomerName, o.Title, o.OpportunityType, o.SalesStage}
}

// InPipeline reports whether the opportunity still counts toward the pipeline
func (o Opportunity) InPipeline() bool {
	return listview.StatusIs(o.Status, OpportunityStatusOpen, OpportunityStatusQuoted, OpportunityStatusReplied)
}

// ClosingSoon reports whether an open opportunity is expected to close within the horizon
func (o Opportunity) ClosingSoon(now time.Time) bool {
	return o.InPipeline() && listview.DueWithin(o.ExpectedClosing, now, ClosingHorizonDays)
}

// OpportunitySummary is the card strip above the opportunities table
type OpportunitySummary struct {
	Count         int               `json:"count"`
	PipelineValue valueobject.Money `json:"pipeline_value"`
	Open          int               `json:"open"`
	Quoted        int               `json:"quoted"`
	ClosingSoon   int               `json:"closing_soon"`
}

// SummarizeOpportunities computes the opportunity cards as of now
func SummarizeOpportunities(items []Opportunity, now time.Time) OpportunitySummary {
	return OpportunitySummary{
		Count:         len(items),
		PipelineValue: valueobject.ETBFromDecimal(listview.SumWhere(items, Opportunity.InPipeline, func(o Opportunity) float64 { return o.OpportunityAmount.Float64() })),
		Open:          listview.CountStatus(items, Opportunity.StatusValue, OpportunityStatusOpen),
		Quoted:        listview.CountStatus(items, Opportunity.StatusValue, OpportunityStatusQuoted),
		ClosingSoon:   listview.Count(items, func(o Opportunity) bool { return o.ClosingSoon(now) }),
	}
}

// OpportunityInput is the payload of the new and edit opportunity forms
type OpportunityInput struct {
	OpportunityFrom   string  `json:"opportunity_from" validate:"required,oneof=Lead Customer Prospect"`
	PartyName         string  `json:"party_name" validate:"required"`
	Title             string  `json:"title,omitempty" validate:"max=140"`
	OpportunityType   string  `json:"opportunity_type,omitempty"`
	SalesStage        string  `json:"sales_stage,omitempty"`
	OpportunityAmount float64 `json:"opportunity_amount" validate:"gte=0"`
	Probability       float64 `json:"probability" validate:"gte=0,lte=100"`
	Currency          string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	ExpectedClosing   string  `json:"expected_closing,omitempty" validate:"omitempty,datetime=2006-01-02"`
	OpportunityOwner  string  `json:"opportunity_owner,omitempty"`
	Territory         string  `json:"territory,omitempty"`
	Status            string  `json:"status,omitempty"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *OpportunityInput) Normalize() {
	in.OpportunityFrom = listview.Unsentinel(strings.TrimSpace(in.OpportunityFrom))
	in.PartyName = listview.Unsentinel(strings.TrimSpace(in.PartyName))
	in.Title = strings.TrimSpace(in.Title)
	in.OpportunityType = listview.Unsentinel(strings.TrimSpace(in.OpportunityType))
	in.SalesStage = listview.Unsentinel(strings.TrimSpace(in.SalesStage))
	in.Currency = strings.ToUpper(listview.Unsentinel(strings.TrimSpace(in.Currency)))
	in.OpportunityOwner = listview.Unsentinel(strings.TrimSpace(in.OpportunityOwner))
	in.Territory = listview.Unsentinel(strings.TrimSpace(in.Territory))
	in.Status = listview.Unsentinel(strings.TrimSpace(in.Status))
}

// StatusValue returns the requested opportunity status
func (in *OpportunityInput) StatusValue() string { return in.Status }
