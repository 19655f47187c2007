package assets

import (
	"strings"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
)

// MovementPurpose is why assets changed hands or place
type MovementPurpose string

const (
	MovementIssue    MovementPurpose = "Issue"
	MovementReceipt  MovementPurpose = "Receipt"
	MovementTransfer MovementPurpose = "Transfer"
)

// IsValid checks if the purpose is known
func (p MovementPurpose) IsValid() bool {
	switch p {
	case MovementIssue, MovementReceipt, MovementTransfer:
		return true
	}
	return false
}

// MovementFilterKeys are the server-side filters of the movements page
var MovementFilterKeys = []string{"purpose", "company", "from_date", "to_date"}

// MovementItem is one asset line of a movement
type MovementItem struct {
	Asset          string            `json:"asset"`
	AssetName      string            `json:"asset_name,omitempty"`
	SourceLocation string            `json:"source_location,omitempty"`
	TargetLocation string            `json:"target_location,omitempty"`
	FromEmployee   listview.FlexName `json:"from_employee"`
	ToEmployee     listview.FlexName `json:"to_employee"`
}

// Movement is an asset movement document
type Movement struct {
	Name             string          `json:"name"`
	Purpose          MovementPurpose `json:"purpose"`
	TransactionDate  listview.Date   `json:"transaction_date"`
	Company          string          `json:"company,omitempty"`
	ReferenceDoctype string          `json:"reference_doctype,omitempty"`
	ReferenceName    string          `json:"reference_name,omitempty"`
	Status           string          `json:"status"`
	Assets           []MovementItem  `json:"assets"`
}

func (m Movement) RecordName() string  { return m.Name }
func (m Movement) StatusValue() string { return m.Status }

// SearchFields returns the fields the movements search box looks at
func (m Movement) SearchFields() []string {
	fields := []string{m.Name, string(m.Purpose), m.ReferenceName}
	for _, a := range m.Assets {
		fields = append(fields, a.Asset, a.AssetName, a.SourceLocation, a.TargetLocation)
	}
	return fields
}

// MovementSummary is the card strip above the movements table
type MovementSummary struct {
	Count     int `json:"count"`
	Issues    int `json:"issues"`
	Receipts  int `json:"receipts"`
	Transfers int `json:"transfers"`
	Assets    int `json:"assets"`
}

// SummarizeMovements computes the movement cards
func SummarizeMovements(items []Movement) MovementSummary {
	purpose := func(p MovementPurpose) func(Movement) bool {
		return func(m Movement) bool { return strings.EqualFold(string(m.Purpose), string(p)) }
	}
	assets := 0
	for _, m := range items {
		assets += len(m.Assets)
	}
	return MovementSummary{
		Count:     len(items),
		Issues:    listview.Count(items, purpose(MovementIssue)),
		Receipts:  listview.Count(items, purpose(MovementReceipt)),
		Transfers: listview.Count(items, purpose(MovementTransfer)),
		Assets:    assets,
	}
}

// MovementItemInput is one asset line of the movement form
type MovementItemInput struct {
	Asset          string `json:"asset" validate:"required"`
	SourceLocation string `json:"source_location,omitempty"`
	TargetLocation string `json:"target_location,omitempty"`
	FromEmployee   string `json:"from_employee,omitempty"`
	ToEmployee     string `json:"to_employee,omitempty"`
}

// MovementInput is the payload of the new and edit movement forms
type MovementInput struct {
	Purpose          MovementPurpose     `json:"purpose" validate:"required,oneof=Issue Receipt Transfer"`
	TransactionDate  string              `json:"transaction_date" validate:"required"`
	Company          string              `json:"company" validate:"required"`
	ReferenceDoctype string              `json:"reference_doctype,omitempty"`
	ReferenceName    string              `json:"reference_name,omitempty"`
	Assets           []MovementItemInput `json:"assets" validate:"required,min=1,dive"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *MovementInput) Normalize() {
	in.Company = listview.Unsentinel(strings.TrimSpace(in.Company))
	in.ReferenceDoctype = listview.Unsentinel(strings.TrimSpace(in.ReferenceDoctype))
	in.ReferenceName = strings.TrimSpace(in.ReferenceName)
	for i := range in.Assets {
		a := &in.Assets[i]
		a.Asset = listview.Unsentinel(strings.TrimSpace(a.Asset))
		a.SourceLocation = listview.Unsentinel(strings.TrimSpace(a.SourceLocation))
		a.TargetLocation = listview.Unsentinel(strings.TrimSpace(a.TargetLocation))
		a.FromEmployee = listview.Unsentinel(strings.TrimSpace(a.FromEmployee))
		a.ToEmployee = listview.Unsentinel(strings.TrimSpace(a.ToEmployee))
	}
}

// Check enforces the per-purpose line requirements
func (in *MovementInput) Check() error {
	for i, a := range in.Assets {
		switch in.Purpose {
		case MovementTransfer:
			if a.TargetLocation == "" {
				return shared.Errorf(shared.ErrValidation, "Row %d: target location is required for a transfer", i+1)
			}
		case MovementIssue:
			if a.ToEmployee == "" {
				return shared.Errorf(shared.ErrValidation, "Row %d: employee is required for an issue", i+1)
			}
		case MovementReceipt:
			if a.TargetLocation == "" {
				return shared.Errorf(shared.ErrValidation, "Row %d: target location is required for a receipt", i+1)
			}
		}
	}
	return nil
}
