package assets

import (
	"strings"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared/valueobject"
)

// AdjustmentFilterKeys are the server-side filters of the value adjustments page
var AdjustmentFilterKeys = []string{"asset", "asset_category", "company", "from_date", "to_date"}

// ValueAdjustment revalues an asset
type ValueAdjustment struct {
	Name              string          `json:"name"`
	Asset             string          `json:"asset"`
	AssetName         string          `json:"asset_name,omitempty"`
	AssetCategory     string          `json:"asset_category,omitempty"`
	Company           string          `json:"company,omitempty"`
	Date              listview.Date   `json:"date"`
	CurrentAssetValue listview.Amount `json:"current_asset_value"`
	NewAssetValue     listview.Amount `json:"new_asset_value"`
	DifferenceAmount  listview.Amount `json:"difference_amount"`
	Status            string          `json:"status"`
}

func (v ValueAdjustment) RecordName() string  { return v.Name }
func (v ValueAdjustment) StatusValue() string { return v.Status }

// SearchFields returns the fields the adjustments search box looks at
func (v ValueAdjustment) SearchFields() []string {
	return []string{v.Name, v.Asset, v.AssetName, v.AssetCategory}
}

// Difference is the signed change in value. Older documents carry no
// difference_amount, so it is derived from the two values.
func (v ValueAdjustment) Difference() float64 {
	if d := v.DifferenceAmount.Finite(); d != 0 {
		return d
	}
	return v.NewAssetValue.Finite() - v.CurrentAssetValue.Finite()
}

// AdjustmentSummary is the card strip above the adjustments table
type AdjustmentSummary struct {
	Count           int               `json:"count"`
	TotalDifference valueobject.Money `json:"total_difference"`
	Increases       int               `json:"increases"`
	Decreases       int               `json:"decreases"`
}

// SummarizeAdjustments computes the adjustment cards
func SummarizeAdjustments(items []ValueAdjustment) AdjustmentSummary {
	return AdjustmentSummary{
		Count:           len(items),
		TotalDifference: valueobject.ETBFromDecimal(listview.SumFloat(items, ValueAdjustment.Difference)),
		Increases:       listview.Count(items, func(v ValueAdjustment) bool { return v.Difference() > 0 }),
		Decreases:       listview.Count(items, func(v ValueAdjustment) bool { return v.Difference() < 0 }),
	}
}

// AdjustmentInput is the payload of the new and edit adjustment forms
type AdjustmentInput struct {
	Asset             string  `json:"asset" validate:"required"`
	Company           string  `json:"company,omitempty"`
	Date              string  `json:"date" validate:"required,datetime=2006-01-02"`
	CurrentAssetValue float64 `json:"current_asset_value" validate:"gte=0"`
	NewAssetValue     float64 `json:"new_asset_value" validate:"gte=0"`
	DifferenceAccount string  `json:"difference_account,omitempty"`
	CostCenter        string  `json:"cost_center,omitempty"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *AdjustmentInput) Normalize() {
	in.Asset = listview.Unsentinel(strings.TrimSpace(in.Asset))
	in.Company = listview.Unsentinel(strings.TrimSpace(in.Company))
	in.DifferenceAccount = listview.Unsentinel(strings.TrimSpace(in.DifferenceAccount))
	in.CostCenter = listview.Unsentinel(strings.TrimSpace(in.CostCenter))
}
