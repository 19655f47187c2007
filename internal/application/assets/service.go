// Package assets wires the asset register pages: assets, maintenance logs,
// movements, repairs and value adjustments.
package assets

import (
	"context"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/assets"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/options"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/export"
)

// Module is the ERP module name of the asset pages.
const Module = "assets"

// Service holds the asset resources.
type Service struct {
	Assets      *records.Resource[assets.Asset]
	Maintenance *records.Resource[assets.Maintenance]
	Movements   *records.Resource[assets.Movement]
	Repairs     *records.Resource[assets.Repair]
	Adjustments *records.Resource[assets.ValueAdjustment]
	options     *records.OptionsService
}

// NewService creates the assets service.
func NewService(deps records.Deps, opts *records.OptionsService) *Service {
	return &Service{
		Assets:      records.NewResource(deps, AssetsDefinition()),
		Maintenance: records.NewResource(deps, MaintenanceDefinition()),
		Movements:   records.NewResource(deps, MovementsDefinition()),
		Repairs:     records.NewResource(deps, RepairsDefinition()),
		Adjustments: records.NewResource(deps, AdjustmentsDefinition()),
		options:     opts,
	}
}

// Options returns the asset lookup lists, optionally narrowed.
func (s *Service) Options(ctx context.Context, narrow string) (options.Bundle, error) {
	return s.options.Bundle(ctx, Module, narrow)
}

func endpoint(resource, listKey, recordKey string) records.Endpoint {
	return records.Endpoint{Module: Module, Resource: resource, ListKey: listKey, RecordKey: recordKey}
}

// AssetsDefinition declares the assets page.
func AssetsDefinition() records.Definition[assets.Asset] {
	return records.Definition[assets.Asset]{
		Endpoint:   endpoint("assets", "assets", "asset"),
		Title:      "Assets",
		FilterKeys: assets.AssetFilterKeys,
		Summarize: func(items []assets.Asset, now time.Time) any {
			return assets.SummarizeAssets(items, now)
		},
		Columns: []export.Column[assets.Asset]{
			{Header: "Asset ID", Value: func(a assets.Asset) any { return a.Name }},
			{Header: "Asset Name", Value: func(a assets.Asset) any { return a.AssetName }},
			{Header: "Category", Value: func(a assets.Asset) any { return a.AssetCategory }},
			{Header: "Location", Value: func(a assets.Asset) any { return a.Location }},
			{Header: "Custodian", Value: func(a assets.Asset) any { return a.Custodian.Display() }},
			{Header: "Purchase Date", Value: func(a assets.Asset) any { return a.PurchaseDate.String() }},
			{Header: "Gross Purchase Amount", Value: func(a assets.Asset) any { return a.GrossPurchaseAmount.Finite() }},
			{Header: "Current Value", Value: func(a assets.Asset) any { return a.CurrentValue() }},
			{Header: "Status", Value: func(a assets.Asset) any { return a.Status }},
		},
		NewInput: func() records.Input { return &assets.AssetInput{} },
	}
}

// MaintenanceDefinition declares the maintenance page.
func MaintenanceDefinition() records.Definition[assets.Maintenance] {
	return records.Definition[assets.Maintenance]{
		Endpoint:   endpoint("maintenance", "maintenance", "maintenance"),
		Title:      "Asset Maintenance",
		FilterKeys: assets.MaintenanceFilterKeys,
		Summarize: func(items []assets.Maintenance, now time.Time) any {
			return assets.SummarizeMaintenance(items, now)
		},
		Columns: []export.Column[assets.Maintenance]{
			{Header: "Log ID", Value: func(m assets.Maintenance) any { return m.Name }},
			{Header: "Asset", Value: func(m assets.Maintenance) any { return m.AssetName }},
			{Header: "Task", Value: func(m assets.Maintenance) any { return m.TaskName }},
			{Header: "Type", Value: func(m assets.Maintenance) any { return m.MaintenanceType }},
			{Header: "Assigned To", Value: func(m assets.Maintenance) any { return m.AssignTo.Display() }},
			{Header: "Next Due", Value: func(m assets.Maintenance) any { return m.NextMaintenanceDate.String() }},
			{Header: "Cost", Value: func(m assets.Maintenance) any { return m.Cost.Finite() }},
			{Header: "Status", Value: func(m assets.Maintenance) any { return m.StatusValue() }},
		},
		NewInput:    func() records.Input { return &assets.MaintenanceInput{} },
		Flow:        assets.MaintenanceFlow,
		StatusField: "maintenance_status",
	}
}

// MovementsDefinition declares the movements page.
func MovementsDefinition() records.Definition[assets.Movement] {
	return records.Definition[assets.Movement]{
		Endpoint:   endpoint("movements", "movements", "movement"),
		Title:      "Asset Movements",
		FilterKeys: assets.MovementFilterKeys,
		Summarize: func(items []assets.Movement, _ time.Time) any {
			return assets.SummarizeMovements(items)
		},
		Columns: []export.Column[assets.Movement]{
			{Header: "Movement ID", Value: func(m assets.Movement) any { return m.Name }},
			{Header: "Purpose", Value: func(m assets.Movement) any { return string(m.Purpose) }},
			{Header: "Transaction Date", Value: func(m assets.Movement) any { return m.TransactionDate.String() }},
			{Header: "Company", Value: func(m assets.Movement) any { return m.Company }},
			{Header: "Assets", Value: func(m assets.Movement) any { return len(m.Assets) }},
			{Header: "Status", Value: func(m assets.Movement) any { return m.Status }},
		},
		NewInput: func() records.Input { return &assets.MovementInput{} },
	}
}

// RepairsDefinition declares the repairs page.
func RepairsDefinition() records.Definition[assets.Repair] {
	return records.Definition[assets.Repair]{
		Endpoint:   endpoint("repairs", "repairs", "repair"),
		Title:      "Asset Repairs",
		FilterKeys: assets.RepairFilterKeys,
		Summarize: func(items []assets.Repair, _ time.Time) any {
			return assets.SummarizeRepairs(items)
		},
		Columns: []export.Column[assets.Repair]{
			{Header: "Repair ID", Value: func(r assets.Repair) any { return r.Name }},
			{Header: "Asset", Value: func(r assets.Repair) any { return r.Asset }},
			{Header: "Failure Date", Value: func(r assets.Repair) any { return r.FailureDate.String() }},
			{Header: "Completion Date", Value: func(r assets.Repair) any { return r.CompletionDate.String() }},
			{Header: "Repair Cost", Value: func(r assets.Repair) any { return r.RepairCost.Finite() }},
			{Header: "Status", Value: func(r assets.Repair) any { return r.RepairStatus }},
		},
		NewInput:    func() records.Input { return &assets.RepairInput{} },
		Flow:        assets.RepairFlow,
		StatusField: "repair_status",
	}
}

// AdjustmentsDefinition declares the value adjustments page.
func AdjustmentsDefinition() records.Definition[assets.ValueAdjustment] {
	return records.Definition[assets.ValueAdjustment]{
		Endpoint:   endpoint("value-adjustments", "adjustments", "adjustment"),
		Title:      "Value Adjustments",
		FilterKeys: assets.AdjustmentFilterKeys,
		Summarize: func(items []assets.ValueAdjustment, _ time.Time) any {
			return assets.SummarizeAdjustments(items)
		},
		Columns: []export.Column[assets.ValueAdjustment]{
			{Header: "Adjustment ID", Value: func(v assets.ValueAdjustment) any { return v.Name }},
			{Header: "Asset", Value: func(v assets.ValueAdjustment) any { return v.Asset }},
			{Header: "Date", Value: func(v assets.ValueAdjustment) any { return v.Date.String() }},
			{Header: "Current Value", Value: func(v assets.ValueAdjustment) any { return v.CurrentAssetValue.Finite() }},
			{Header: "New Value", Value: func(v assets.ValueAdjustment) any { return v.NewAssetValue.Finite() }},
			{Header: "Difference", Value: func(v assets.ValueAdjustment) any { return v.Difference() }},
			{Header: "Status", Value: func(v assets.ValueAdjustment) any { return v.Status }},
		},
		NewInput: func() records.Input { return &assets.AdjustmentInput{} },
	}
}
