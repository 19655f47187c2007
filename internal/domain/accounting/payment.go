// Package accounting holds the Payment Entry documents of the accounting module
package accounting

import (
	"strings"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared/valueobject"
)

// PaymentType is the direction of a payment entry
type PaymentType string

const (
	PaymentTypeReceive          PaymentType = "Receive"
	PaymentTypePay              PaymentType = "Pay"
	PaymentTypeInternalTransfer PaymentType = "Internal Transfer"
)

// IsValid checks if the payment type is known
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeReceive, PaymentTypePay, PaymentTypeInternalTransfer:
		return true
	}
	return false
}

// Payment document statuses
const (
	PaymentStatusDraft     = "Draft"
	PaymentStatusSubmitted = "Submitted"
	PaymentStatusCancelled = "Cancelled"
)

// PaymentFlow is the docstatus lifecycle of a payment entry
var PaymentFlow = listview.NewStatusFlow("Payment Entry",
	PaymentStatusDraft, PaymentStatusSubmitted, PaymentStatusCancelled).
	Forward(PaymentStatusDraft, PaymentStatusSubmitted).
	Allow(PaymentStatusDraft, PaymentStatusCancelled).
	Allow(PaymentStatusSubmitted, PaymentStatusCancelled)

// PaymentFilterKeys are the server-side filters of the payments page
var PaymentFilterKeys = []string{"payment_type", "party", "mode_of_payment", "company", "status", "from_date", "to_date"}

// Payment is a Payment Entry as listed by the ERP server
type Payment struct {
	Name           string          `json:"name"`
	PaymentType    PaymentType     `json:"payment_type"`
	PostingDate    listview.Date   `json:"posting_date"`
	PartyType      string          `json:"party_type,omitempty"`
	Party          string          `json:"party"`
	PartyName      string          `json:"party_name,omitempty"`
	PaidAmount     listview.Amount `json:"paid_amount"`
	ReceivedAmount listview.Amount `json:"received_amount"`
	ModeOfPayment  string          `json:"mode_of_payment,omitempty"`
	ReferenceNo    string          `json:"reference_no,omitempty"`
	ReferenceDate  listview.Date   `json:"reference_date"`
	Company        string          `json:"company,omitempty"`
	Status         string          `json:"status"`
	Remarks        string          `json:"remarks,omitempty"`
}

// RecordName returns the document name
func (p Payment) RecordName() string { return p.Name }

// StatusValue returns the document status
func (p Payment) StatusValue() string { return p.Status }

// SearchFields returns the fields the payments search box looks at
func (p Payment) SearchFields() []string {
	return []string{p.Name, p.Party, p.PartyName, p.ReferenceNo, p.ModeOfPayment}
}

// PartyDisplay returns the party label for list rows
func (p Payment) PartyDisplay() string {
	return listview.Or(p.PartyName, listview.OrNA(p.Party))
}

// PaymentSummary is the card strip above the payments table
type PaymentSummary struct {
	TotalReceived valueobject.Money `json:"total_received"`
	TotalPaid     valueobject.Money `json:"total_paid"`
	Count         int               `json:"count"`
	ReceiveCount  int               `json:"receive_count"`
	PayCount      int               `json:"pay_count"`
	DraftCount    int               `json:"draft_count"`
}

// SummarizePayments computes the payment cards
func SummarizePayments(items []Payment) PaymentSummary {
	isReceive := func(p Payment) bool { return strings.EqualFold(string(p.PaymentType), string(PaymentTypeReceive)) }
	isPay := func(p Payment) bool { return strings.EqualFold(string(p.PaymentType), string(PaymentTypePay)) }

	return PaymentSummary{
		TotalReceived: valueobject.ETBFromDecimal(listview.SumWhere(items, isReceive, func(p Payment) float64 { return p.ReceivedAmount.Float64() })),
		TotalPaid:     valueobject.ETBFromDecimal(listview.SumWhere(items, isPay, func(p Payment) float64 { return p.PaidAmount.Float64() })),
		Count:         len(items),
		ReceiveCount:  listview.Count(items, isReceive),
		PayCount:      listview.Count(items, isPay),
		DraftCount:    listview.CountStatus(items, Payment.StatusValue, PaymentStatusDraft),
	}
}

// PaymentInput is the payload of the new and edit payment forms
type PaymentInput struct {
	PaymentType    PaymentType `json:"payment_type" validate:"required,oneof=Receive Pay 'Internal Transfer'"`
	PostingDate    string      `json:"posting_date" validate:"required,datetime=2006-01-02"`
	PartyType      string      `json:"party_type,omitempty" validate:"omitempty,oneof=Customer Supplier Employee Shareholder"`
	Party          string      `json:"party" validate:"required,max=140"`
	PaidAmount     float64     `json:"paid_amount" validate:"gte=0"`
	ReceivedAmount float64     `json:"received_amount" validate:"gte=0"`
	ModeOfPayment  string      `json:"mode_of_payment,omitempty" validate:"max=140"`
	ReferenceNo    string      `json:"reference_no,omitempty" validate:"max=140"`
	ReferenceDate  string      `json:"reference_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Company        string      `json:"company" validate:"required"`
	Status         string      `json:"status,omitempty"`
	Remarks        string      `json:"remarks,omitempty" validate:"max=2000"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *PaymentInput) Normalize() {
	in.PartyType = listview.Unsentinel(strings.TrimSpace(in.PartyType))
	in.Party = strings.TrimSpace(in.Party)
	in.ModeOfPayment = listview.Unsentinel(strings.TrimSpace(in.ModeOfPayment))
	in.ReferenceNo = strings.TrimSpace(in.ReferenceNo)
	in.Company = listview.Unsentinel(strings.TrimSpace(in.Company))
	in.Status = listview.Unsentinel(strings.TrimSpace(in.Status))
	in.Remarks = strings.TrimSpace(in.Remarks)
}

// Check enforces the rules the validator tags cannot express
func (in *PaymentInput) Check() error {
	if in.PaidAmount == 0 && in.ReceivedAmount == 0 {
		return shared.Errorf(shared.ErrValidation, "Either paid amount or received amount is required")
	}
	if in.ReferenceNo != "" && in.ReferenceDate == "" {
		return shared.Errorf(shared.ErrValidation, "Reference date is required when a reference number is given")
	}
	return nil
}
