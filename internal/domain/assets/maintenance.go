package assets

import (
	"strings"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared/valueobject"
)

// MaintenanceHorizonDays is how far ahead the "due soon" card looks
const MaintenanceHorizonDays = 7

// Maintenance statuses
const (
	MaintenanceStatusPlanned    = "Planned"
	MaintenanceStatusInProgress = "In Progress"
	MaintenanceStatusCompleted  = "Completed"
	MaintenanceStatusOverdue    = "Overdue"
	MaintenanceStatusCancelled  = "Cancelled"
)

// MaintenanceFlow is the lifecycle of a maintenance log
var MaintenanceFlow = listview.NewStatusFlow("Asset Maintenance",
	MaintenanceStatusPlanned, MaintenanceStatusInProgress, MaintenanceStatusCompleted,
	MaintenanceStatusOverdue, MaintenanceStatusCancelled).
	Forward(MaintenanceStatusPlanned, MaintenanceStatusInProgress).
	Forward(MaintenanceStatusOverdue, MaintenanceStatusInProgress).
	Forward(MaintenanceStatusInProgress, MaintenanceStatusCompleted).
	Allow(MaintenanceStatusPlanned, MaintenanceStatusOverdue, MaintenanceStatusCompleted, MaintenanceStatusCancelled).
	Allow(MaintenanceStatusOverdue, MaintenanceStatusCompleted, MaintenanceStatusCancelled).
	Allow(MaintenanceStatusInProgress, MaintenanceStatusCancelled)

// MaintenanceFilterKeys are the server-side filters of the maintenance page
var MaintenanceFilterKeys = []string{"asset_name", "maintenance_type", "maintenance_status", "assign_to"}

// Maintenance is an asset maintenance log entry
type Maintenance struct {
	Name                string            `json:"name"`
	AssetMaintenance    string            `json:"asset_maintenance,omitempty"`
	AssetName           string            `json:"asset_name"`
	Task                string            `json:"task,omitempty"`
	TaskName            string            `json:"task_name,omitempty"`
	MaintenanceType     string            `json:"maintenance_type"`
	MaintenanceStatus   string            `json:"maintenance_status"`
	Status              string            `json:"status,omitempty"`
	AssignTo            listview.FlexName `json:"assign_to"`
	NextMaintenanceDate listview.Date     `json:"next_maintenance_date"`
	CompletionDate      listview.Date     `json:"completion_date"`
	Cost                listview.Amount   `json:"cost"`
	Description         string            `json:"description,omitempty"`
}

func (m Maintenance) RecordName() string { return m.Name }

// StatusValue prefers the maintenance status over the document status
func (m Maintenance) StatusValue() string {
	return listview.Or(m.MaintenanceStatus, m.Status)
}

// SearchFields returns the fields the maintenance search box looks at
func (m Maintenance) SearchFields() []string {
	return []string{m.Name, m.AssetName, m.TaskName, m.Task, m.MaintenanceType, m.AssignTo.Display()}
}

func (m Maintenance) closed() bool {
	return listview.StatusIs(m.StatusValue(), MaintenanceStatusCompleted, MaintenanceStatusCancelled)
}

// DueSoon reports whether open maintenance falls due within the horizon
func (m Maintenance) DueSoon(now time.Time) bool {
	return !m.closed() && listview.DueWithin(m.NextMaintenanceDate, now, MaintenanceHorizonDays)
}

// IsOverdue reports whether open maintenance is past its date
func (m Maintenance) IsOverdue(now time.Time) bool {
	return !m.closed() && listview.Overdue(m.NextMaintenanceDate, now)
}

// MaintenanceSummary is the card strip above the maintenance table
type MaintenanceSummary struct {
	Count      int               `json:"count"`
	InProgress int               `json:"in_progress"`
	Completed  int               `json:"completed"`
	DueSoon    int               `json:"due_soon"`
	Overdue    int               `json:"overdue"`
	TotalCost  valueobject.Money `json:"total_cost"`
}

// SummarizeMaintenance computes the maintenance cards as of now
func SummarizeMaintenance(items []Maintenance, now time.Time) MaintenanceSummary {
	return MaintenanceSummary{
		Count:      len(items),
		InProgress: listview.CountStatus(items, Maintenance.StatusValue, MaintenanceStatusInProgress),
		Completed:  listview.CountStatus(items, Maintenance.StatusValue, MaintenanceStatusCompleted),
		DueSoon:    listview.Count(items, func(m Maintenance) bool { return m.DueSoon(now) }),
		Overdue:    listview.Count(items, func(m Maintenance) bool { return m.IsOverdue(now) }),
		TotalCost:  valueobject.ETBFromDecimal(listview.SumFloat(items, func(m Maintenance) float64 { return m.Cost.Float64() })),
	}
}

// MaintenanceInput is the payload of the new and edit maintenance forms
type MaintenanceInput struct {
	AssetMaintenance    string  `json:"asset_maintenance,omitempty"`
	AssetName           string  `json:"asset_name" validate:"required"`
	Task                string  `json:"task,omitempty"`
	TaskName            string  `json:"task_name" validate:"required,max=140"`
	MaintenanceType     string  `json:"maintenance_type" validate:"required,oneof='Preventive Maintenance' Calibration Breakdown"`
	MaintenanceStatus   string  `json:"maintenance_status" validate:"required"`
	AssignTo            string  `json:"assign_to,omitempty"`
	NextMaintenanceDate string  `json:"next_maintenance_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CompletionDate      string  `json:"completion_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Cost                float64 `json:"cost" validate:"gte=0"`
	Description         string  `json:"description,omitempty" validate:"max=2000"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *MaintenanceInput) Normalize() {
	in.AssetMaintenance = listview.Unsentinel(strings.TrimSpace(in.AssetMaintenance))
	in.AssetName = listview.Unsentinel(strings.TrimSpace(in.AssetName))
	in.Task = listview.Unsentinel(strings.TrimSpace(in.Task))
	in.TaskName = strings.TrimSpace(in.TaskName)
	in.MaintenanceType = listview.Unsentinel(strings.TrimSpace(in.MaintenanceType))
	in.MaintenanceStatus = listview.Unsentinel(strings.TrimSpace(in.MaintenanceStatus))
	in.AssignTo = listview.Unsentinel(strings.TrimSpace(in.AssignTo))
	in.Description = strings.TrimSpace(in.Description)
}

// StatusValue returns the requested maintenance status
func (in *MaintenanceInput) StatusValue() string { return in.MaintenanceStatus }
