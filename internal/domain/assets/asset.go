// Package assets holds the fixed asset register and the documents that act on
// it: maintenance schedules, movements, repairs and value adjustments.
package assets

import (
	"strings"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared/valueobject"
)

// WarrantyHorizonDays is how far ahead the "warranty expiring" card looks
const WarrantyHorizonDays = 30

// Asset statuses
const (
	AssetStatusDraft            = "Draft"
	AssetStatusSubmitted        = "Submitted"
	AssetStatusInMaintenance    = "In Maintenance"
	AssetStatusOutOfOrder       = "Out of Order"
	AssetStatusScrapped         = "Scrapped"
	AssetStatusSold             = "Sold"
	AssetStatusFullyDepreciated = "Fully Depreciated"
)

// AssetFilterKeys are the server-side filters of the assets page
var AssetFilterKeys = []string{"asset_category", "location", "status", "company", "custodian"}

// Asset is a fixed asset register entry
type Asset struct {
	Name                   string            `json:"name"`
	AssetName              string            `json:"asset_name"`
	ItemCode               string            `json:"item_code,omitempty"`
	AssetCategory          string            `json:"asset_category"`
	Location               string            `json:"location"`
	Custodian              listview.FlexName `json:"custodian"`
	Company                string            `json:"company,omitempty"`
	GrossPurchaseAmount    listview.Amount   `json:"gross_purchase_amount"`
	ValueAfterDepreciation listview.Amount   `json:"value_after_depreciation"`
	PurchaseDate           listview.Date     `json:"purchase_date"`
	AvailableForUseDate    listview.Date     `json:"available_for_use_date"`
	WarrantyExpiryDate     listview.Date     `json:"warranty_expiry_date"`
	Status                 string            `json:"status"`
}

func (a Asset) RecordName() string  { return a.Name }
func (a Asset) StatusValue() string { return a.Status }

// SearchFields returns the fields the assets search box looks at
func (a Asset) SearchFields() []string {
	return []string{a.Name, a.AssetName, a.AssetCategory, a.Location, a.Custodian.Display()}
}

// CurrentValue is the book value, falling back to the purchase amount for
// assets that have not been depreciated yet.
func (a Asset) CurrentValue() float64 {
	if v := a.ValueAfterDepreciation.Finite(); v != 0 {
		return v
	}
	return a.GrossPurchaseAmount.Finite()
}

// WarrantyExpiringSoon reports whether the warranty ends within the horizon
func (a Asset) WarrantyExpiringSoon(now time.Time) bool {
	return listview.DueWithin(a.WarrantyExpiryDate, now, WarrantyHorizonDays)
}

// AssetSummary is the card strip above the assets table
type AssetSummary struct {
	TotalPurchaseValue valueobject.Money `json:"total_purchase_value"`
	TotalCurrentValue  valueobject.Money `json:"total_current_value"`
	Count              int               `json:"count"`
	InMaintenance      int               `json:"in_maintenance"`
	WarrantyExpiring   int               `json:"warranty_expiring"`
}

// SummarizeAssets computes the asset cards as of now
func SummarizeAssets(items []Asset, now time.Time) AssetSummary {
	return AssetSummary{
		TotalPurchaseValue: valueobject.ETBFromDecimal(listview.SumFloat(items, func(a Asset) float64 { return a.GrossPurchaseAmount.Float64() })),
		TotalCurrentValue:  valueobject.ETBFromDecimal(listview.SumFloat(items, Asset.CurrentValue)),
		Count:              len(items),
		InMaintenance:      listview.CountStatus(items, Asset.StatusValue, AssetStatusInMaintenance, AssetStatusOutOfOrder),
		WarrantyExpiring:   listview.Count(items, func(a Asset) bool { return a.WarrantyExpiringSoon(now) }),
	}
}

// AssetInput is the payload of the new and edit asset forms
type AssetInput struct {
	AssetName           string  `json:"asset_name" validate:"required,max=140"`
	ItemCode            string  `json:"item_code" validate:"required"`
	AssetCategory       string  `json:"asset_category" validate:"required"`
	Location            string  `json:"location" validate:"required"`
	Custodian           string  `json:"custodian,omitempty"`
	Company             string  `json:"company" validate:"required"`
	GrossPurchaseAmount float64 `json:"gross_purchase_amount" validate:"gte=0"`
	PurchaseDate        string  `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	AvailableForUseDate string  `json:"available_for_use_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WarrantyExpiryDate  string  `json:"warranty_expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsExistingAsset     bool    `json:"is_existing_asset,omitempty"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *AssetInput) Normalize() {
	in.AssetName = strings.TrimSpace(in.AssetName)
	in.ItemCode = listview.Unsentinel(strings.TrimSpace(in.ItemCode))
	in.AssetCategory = listview.Unsentinel(strings.TrimSpace(in.AssetCategory))
	in.Location = listview.Unsentinel(strings.TrimSpace(in.Location))
	in.Custodian = listview.Unsentinel(strings.TrimSpace(in.Custodian))
	in.Company = listview.Unsentinel(strings.TrimSpace(in.Company))
}
