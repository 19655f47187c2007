// Package accounting wires the Payment Entry pages of the accounting module.
package accounting

import (
	"context"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/accounting"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/options"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/export"
)

// Module is the ERP module name of the accounting pages.
const Module = "accounting"

// Service holds the accounting resources.
type Service struct {
	Payments *records.Resource[accounting.Payment]
	options  *records.OptionsService
}

// NewService creates the accounting service.
func NewService(deps records.Deps, opts *records.OptionsService) *Service {
	return &Service{
		Payments: records.NewResource(deps, PaymentsDefinition()),
		options:  opts,
	}
}

// Options returns the accounting lookup lists, optionally narrowed.
func (s *Service) Options(ctx context.Context, narrow string) (options.Bundle, error) {
	return s.options.Bundle(ctx, Module, narrow)
}

// PaymentsDefinition declares the payments page.
func PaymentsDefinition() records.Definition[accounting.Payment] {
	return records.Definition[accounting.Payment]{
		Endpoint:   records.Endpoint{Module: Module, Resource: "payments", ListKey: "payments", RecordKey: "payment"},
		Title:      "Payments",
		FilterKeys: accounting.PaymentFilterKeys,
		Summarize: func(items []accounting.Payment, _ time.Time) any {
			return accounting.SummarizePayments(items)
		},
		Columns: []export.Column[accounting.Payment]{
			{Header: "Payment ID", Value: func(p accounting.Payment) any { return p.Name }},
			{Header: "Type", Value: func(p accounting.Payment) any { return string(p.PaymentType) }},
			{Header: "Posting Date", Value: func(p accounting.Payment) any { return p.PostingDate.String() }},
			{Header: "Party", Value: func(p accounting.Payment) any { return p.PartyDisplay() }},
			{Header: "Paid Amount", Value: func(p accounting.Payment) any { return p.PaidAmount.Finite() }},
			{Header: "Received Amount", Value: func(p accounting.Payment) any { return p.ReceivedAmount.Finite() }},
			{Header: "Mode of Payment", Value: func(p accounting.Payment) any { return p.ModeOfPayment }},
			{Header: "Reference No", Value: func(p accounting.Payment) any { return p.ReferenceNo }},
			{Header: "Status", Value: func(p accounting.Payment) any { return p.Status }},
		},
		NewInput: func() records.Input { return &accounting.PaymentInput{} },
		Flow:     accounting.PaymentFlow,
	}
}
