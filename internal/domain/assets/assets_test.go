package assets

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
)

var now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func TestSummarizeAssets_WarrantyBoundaryIsInclusive(t *testing.T) {
	items := []Asset{
		{Name: "AST-1", WarrantyExpiryDate: listview.NewDate(now.AddDate(0, 0, WarrantyHorizonDays))},
		{Name: "AST-2", WarrantyExpiryDate: listview.NewDate(now.AddDate(0, 0, WarrantyHorizonDays+1))},
		{Name: "AST-3"},
		{Name: "AST-4", WarrantyExpiryDate: listview.ParseDate("2026-10-01")},
	}

	s := SummarizeAssets(items, now)

	assert.Equal(t, 1, s.WarrantyExpiring)
	assert.True(t, items[0].WarrantyExpiringSoon(now))
	assert.False(t, items[2].WarrantyExpiringSoon(now))
}

func TestSummarizeAssets_Values(t *testing.T) {
	payload := `[
		{"name": "AST-1", "gross_purchase_amount": 120000, "value_after_depreciation": 90000, "status": "Submitted"},
		{"name": "AST-2", "gross_purchase_amount": "30000", "value_after_depreciation": null, "status": "In Maintenance"},
		{"name": "AST-3", "gross_purchase_amount": "bad", "status": "out of order",
		 "custodian": {"name": "HR-EMP-1", "employee_name": "Hana Tesfaye"}}
	]`
	var items []Asset
	require.NoError(t, json.Unmarshal([]byte(payload), &items))

	s := SummarizeAssets(items, now)

	assert.Equal(t, "ETB 150,000.00", s.TotalPurchaseValue.Format())
	assert.Equal(t, "ETB 120,000.00", s.TotalCurrentValue.Format())
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.InMaintenance)
	assert.Equal(t, "Hana Tesfaye", items[2].Custodian.Display())
	assert.Equal(t, listview.FallbackUnknown, items[0].Custodian.Display())
}

func TestSummarizeMaintenance(t *testing.T) {
	items := []Maintenance{
		{Name: "M1", MaintenanceStatus: "Planned", NextMaintenanceDate: listview.ParseDate("2026-10-22"), Cost: 500},
		{Name: "M2", MaintenanceStatus: "In Progress", NextMaintenanceDate: listview.ParseDate("2026-10-10"), Cost: 250},
		{Name: "M3", MaintenanceStatus: "Completed", NextMaintenanceDate: listview.ParseDate("2026-10-10")},
		{Name: "M4", MaintenanceStatus: "Planned"},
		{Name: "M5", Status: "Overdue", NextMaintenanceDate: listview.ParseDate("2026-10-26")},
	}

	s := SummarizeMaintenance(items, now)

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 1, s.InProgress)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 2, s.DueSoon, "M1 and M5 fall within seven days")
	assert.Equal(t, 1, s.Overdue, "completed and undated logs never count")
	assert.Equal(t, "ETB 750.00", s.TotalCost.Format())
}

func TestMaintenance_UnsetDateNeverMatches(t *testing.T) {
	for _, status := range []string{"Planned", "Overdue", "In Progress", ""} {
		m := Maintenance{MaintenanceStatus: status}
		assert.False(t, m.DueSoon(now))
		assert.False(t, m.IsOverdue(now))
	}
}

func TestSummarizeMovements(t *testing.T) {
	items := []Movement{
		{Name: "MV-1", Purpose: MovementIssue, Assets: []MovementItem{{Asset: "AST-1"}}},
		{Name: "MV-2", Purpose: MovementTransfer, Assets: []MovementItem{{Asset: "AST-2"}, {Asset: "AST-3"}}},
		{Name: "MV-3", Purpose: "transfer"},
	}

	s := SummarizeMovements(items)

	assert.Equal(t, MovementSummary{Count: 3, Issues: 1, Receipts: 0, Transfers: 2, Assets: 3}, s)
	assert.Len(t, listview.SearchRecords(items, "ast-3"), 1)
}

func TestMovementInput_Check(t *testing.T) {
	in := MovementInput{Purpose: MovementTransfer, Assets: []MovementItemInput{{Asset: "AST-1", TargetLocation: "none"}}}
	in.Normalize()

	err := in.Check()
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Contains(t, err.Error(), "Row 1")

	in.Assets[0].TargetLocation = "Warehouse B"
	assert.NoError(t, in.Check())
}

func TestSummarizeRepairs(t *testing.T) {
	payload := `[
		{"name": "RPR-1", "repair_status": "Pending", "repair_cost": 1200.5},
		{"name": "RPR-2", "repair_status": "Completed", "repair_cost": "799.5"},
		{"name": "RPR-3", "repair_status": "In Progress", "repair_cost": null}
	]`
	var items []Repair
	require.NoError(t, json.Unmarshal([]byte(payload), &items))

	s := SummarizeRepairs(items)

	assert.Equal(t, "ETB 2,000.00", s.TotalCost.Format())
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.InProgress)
	assert.Equal(t, 1, s.Completed)
}

func TestRepairFlow(t *testing.T) {
	next, ok := RepairFlow.Next(RepairStatusPending)
	require.True(t, ok)
	assert.Equal(t, RepairStatusInProgress, next)
	assert.False(t, RepairFlow.CanTransition(RepairStatusCompleted, RepairStatusPending))
	assert.True(t, MaintenanceFlow.CanTransition(MaintenanceStatusOverdue, MaintenanceStatusInProgress))
}

func TestSummarizeAdjustments(t *testing.T) {
	items := []ValueAdjustment{
		{Name: "AVA-1", CurrentAssetValue: 1000, NewAssetValue: 1500},
		{Name: "AVA-2", DifferenceAmount: -300},
		{Name: "AVA-3", CurrentAssetValue: 800, NewAssetValue: 800},
	}

	s := SummarizeAdjustments(items)

	assert.Equal(t, "ETB 200.00", s.TotalDifference.Format())
	assert.Equal(t, 1, s.Increases)
	assert.Equal(t, 1, s.Decreases)
}
