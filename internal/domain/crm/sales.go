package crm

import (
	"strings"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared/valueobject"
)

// ValidityHorizonDays is how far ahead the "expiring soon" quotation card looks
const ValidityHorizonDays = 7

// Quotation and sales order statuses
const (
	QuotationStatusDraft     = "Draft"
	QuotationStatusOpen      = "Open"
	QuotationStatusReplied   = "Replied"
	QuotationStatusOrdered   = "Ordered"
	QuotationStatusLost      = "Lost"
	QuotationStatusCancelled = "Cancelled"
	QuotationStatusExpired   = "Expired"

	SalesOrderStatusDraft     = "Draft"
	SalesOrderStatusToDeliver = "To Deliver"
	SalesOrderStatusCompleted = "Completed"
	SalesOrderStatusCancelled = "Cancelled"
	SalesOrderStatusClosed    = "Closed"
	SalesOrderStatusOnHold    = "On Hold"
)

// QuotationFilterKeys are the server-side filters of the quotations page
var QuotationFilterKeys = []string{"status", "quotation_to", "party_name", "company", "from_date", "to_date"}

// SalesOrderFilterKeys are the server-side filters of the sales orders page
var SalesOrderFilterKeys = []string{"status", "customer", "company", "from_date", "to_date"}

// Quotation is a priced offer to a lead or customer
type Quotation struct {
	Name            string          `json:"name"`
	QuotationTo     string          `json:"quotation_to"`
	PartyName       string          `json:"party_name"`
	CustomerName    string          `json:"customer_name,omitempty"`
	Company         string          `json:"company,omitempty"`
	TransactionDate listview.Date   `json:"transaction_date"`
	ValidTill       listview.Date   `json:"valid_till"`
	GrandTotal      listview.Amount `json:"grand_total"`
	Currency        string          `json:"currency,omitempty"`
	OrderType       string          `json:"order_type,omitempty"`
	Opportunity     string          `json:"opportunity,omitempty"`
	Status          string          `json:"status"`
}

func (q Quotation) RecordName() string  { return q.Name }
func (q Quotation) StatusValue() string { return q.Status }

// SearchFields returns the fields the quotations search box looks at
func (q Quotation) SearchFields() []string {
	return []string{q.Name, q.PartyName, q.CustomerName, q.Opportunity}
}

func (q Quotation) settled() bool {
	return listview.StatusIs(q.Status, QuotationStatusOrdered, QuotationStatusLost, QuotationStatusCancelled)
}

// ExpiringSoon reports whether a live quotation runs out within the horizon
func (q Quotation) ExpiringSoon(now time.Time) bool {
	return !q.settled() && !listview.StatusIs(q.Status, QuotationStatusExpired) &&
		listview.DueWithin(q.ValidTill, now, ValidityHorizonDays)
}

// IsExpired reports whether a quotation lapsed without being settled
func (q Quotation) IsExpired(now time.Time) bool {
	if q.settled() {
		return false
	}
	return listview.StatusIs(q.Status, QuotationStatusExpired) || listview.Overdue(q.ValidTill, now)
}

// QuotationSummary is the card strip above the quotations table
type QuotationSummary struct {
	Count        int               `json:"count"`
	TotalValue   valueobject.Money `json:"total_value"`
	Ordered      int               `json:"ordered"`
	ExpiringSoon int               `json:"expiring_soon"`
	Expired      int               `json:"expired"`
}

// SummarizeQuotations computes the quotation cards as of now
func SummarizeQuotations(items []Quotation, now time.Time) QuotationSummary {
	return QuotationSummary{
		Count:        len(items),
		TotalValue:   valueobject.ETBFromDecimal(listview.SumFloat(items, func(q Quotation) float64 { return q.GrandTotal.Float64() })),
		Ordered:      listview.CountStatus(items, Quotation.StatusValue, QuotationStatusOrdered),
		ExpiringSoon: listview.Count(items, func(q Quotation) bool { return q.ExpiringSoon(now) }),
		Expired:      listview.Count(items, func(q Quotation) bool { return q.IsExpired(now) }),
	}
}

// SalesOrder is a confirmed customer order
type SalesOrder struct {
	Name            string          `json:"name"`
	Customer        string          `json:"customer"`
	CustomerName    string          `json:"customer_name,omitempty"`
	Company         string          `json:"company,omitempty"`
	TransactionDate listview.Date   `json:"transaction_date"`
	DeliveryDate    listview.Date   `json:"delivery_date"`
	GrandTotal      listview.Amount `json:"grand_total"`
	Currency        string          `json:"currency,omitempty"`
	PerDelivered    listview.Amount `json:"per_delivered"`
	PerBilled       listview.Amount `json:"per_billed"`
	Status          string          `json:"status"`
}

func (s SalesOrder) RecordName() string  { return s.Name }
func (s SalesOrder) StatusValue() string { return s.Status }

// SearchFields returns the fields the sales orders search box looks at
func (s SalesOrder) SearchFields() []string {
	return []string{s.Name, s.Customer, s.CustomerName}
}

// AwaitingDelivery reports whether goods are still owed to the customer
func (s SalesOrder) AwaitingDelivery() bool {
	return strings.Contains(strings.ToLower(s.Status), strings.ToLower(SalesOrderStatusToDeliver))
}

// DeliveryOverdue reports whether an undelivered order is past its delivery date
func (s SalesOrder) DeliveryOverdue(now time.Time) bool {
	if listview.StatusIs(s.Status, SalesOrderStatusCompleted, SalesOrderStatusClosed, SalesOrderStatusCancelled) {
		return false
	}
	if s.PerDelivered.Finite() >= 100 {
		return false
	}
	return listview.Overdue(s.DeliveryDate, now)
}

// SalesOrderSummary is the card strip above the sales orders table
type SalesOrderSummary struct {
	Count           int               `json:"count"`
	TotalValue      valueobject.Money `json:"total_value"`
	ToDeliver       int               `json:"to_deliver"`
	OverdueDelivery int               `json:"overdue_delivery"`
	Completed       int               `json:"completed"`
}

// SummarizeSalesOrders computes the sales order cards as of now
func SummarizeSalesOrders(items []SalesOrder, now time.Time) SalesOrderSummary {
	return SalesOrderSummary{
		Count:           len(items),
		TotalValue:      valueobject.ETBFromDecimal(listview.SumFloat(items, func(s SalesOrder) float64 { return s.GrandTotal.Float64() })),
		ToDeliver:       listview.Count(items, SalesOrder.AwaitingDelivery),
		OverdueDelivery: listview.Count(items, func(s SalesOrder) bool { return s.DeliveryOverdue(now) }),
		Completed:       listview.CountStatus(items, SalesOrder.StatusValue, SalesOrderStatusCompleted),
	}
}

// LineItemInput is an item row of the quotation and sales order forms
type LineItemInput struct {
	ItemCode string  `json:"item_code" validate:"required"`
	Qty      float64 `json:"qty" validate:"gt=0"`
	Rate     float64 `json:"rate" validate:"gte=0"`
	UOM      string  `json:"uom,omitempty"`
}

// QuotationInput is the payload of the new and edit quotation forms
type QuotationInput struct {
	QuotationTo     string          `json:"quotation_to" validate:"required,oneof=Lead Customer Prospect"`
	PartyName       string          `json:"party_name" validate:"required"`
	Company         string          `json:"company" validate:"required"`
	TransactionDate string          `json:"transaction_date" validate:"required,datetime=2006-01-02"`
	ValidTill       string          `json:"valid_till,omitempty" validate:"omitempty,datetime=2006-01-02"`
	OrderType       string          `json:"order_type,omitempty"`
	Opportunity     string          `json:"opportunity,omitempty"`
	Items           []LineItemInput `json:"items" validate:"required,min=1,dive"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *QuotationInput) Normalize() {
	in.QuotationTo = listview.Unsentinel(strings.TrimSpace(in.QuotationTo))
	in.PartyName = listview.Unsentinel(strings.TrimSpace(in.PartyName))
	in.Company = listview.Unsentinel(strings.TrimSpace(in.Company))
	in.OrderType = listview.Unsentinel(strings.TrimSpace(in.OrderType))
	in.Opportunity = listview.Unsentinel(strings.TrimSpace(in.Opportunity))
	normalizeItems(in.Items)
}

// SalesOrderInput is the payload of the new and edit sales order forms
type SalesOrderInput struct {
	Customer        string          `json:"customer" validate:"required"`
	Company         string          `json:"company" validate:"required"`
	TransactionDate string          `json:"transaction_date" validate:"required,datetime=2006-01-02"`
	DeliveryDate    string          `json:"delivery_date" validate:"required,datetime=2006-01-02"`
	Items           []LineItemInput `json:"items" validate:"required,min=1,dive"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *SalesOrderInput) Normalize() {
	in.Customer = listview.Unsentinel(strings.TrimSpace(in.Customer))
	in.Company = listview.Unsentinel(strings.TrimSpace(in.Company))
	normalizeItems(in.Items)
}

func normalizeItems(items []LineItemInput) {
	for i := range items {
		items[i].ItemCode = listview.Unsentinel(strings.TrimSpace(items[i].ItemCode))
		items[i].UOM = listview.Unsentinel(strings.TrimSpace(items[i].UOM))
	}
}
