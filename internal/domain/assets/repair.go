package assets

import (
	"strings"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared/valueobject"
)

// Repair statuses
const (
	RepairStatusPending    = "Pending"
	RepairStatusInProgress = "In Progress"
	RepairStatusCompleted  = "Completed"
	RepairStatusCancelled  = "Cancelled"
)

// RepairFlow is the lifecycle of an asset repair
var RepairFlow = listview.NewStatusFlow("Asset Repair",
	RepairStatusPending, RepairStatusInProgress, RepairStatusCompleted, RepairStatusCancelled).
	Forward(RepairStatusPending, RepairStatusInProgress).
	Forward(RepairStatusInProgress, RepairStatusCompleted).
	Allow(RepairStatusPending, RepairStatusCompleted, RepairStatusCancelled).
	Allow(RepairStatusInProgress, RepairStatusPending, RepairStatusCancelled)

// RepairFilterKeys are the server-side filters of the repairs page
var RepairFilterKeys = []string{"asset", "repair_status", "company"}

// Repair is an asset repair document
type Repair struct {
	Name             string          `json:"name"`
	Asset            string          `json:"asset"`
	AssetName        string          `json:"asset_name,omitempty"`
	Company          string          `json:"company,omitempty"`
	FailureDate      listview.Date   `json:"failure_date"`
	CompletionDate   listview.Date   `json:"completion_date"`
	RepairStatus     string          `json:"repair_status"`
	RepairCost       listview.Amount `json:"repair_cost"`
	Description      string          `json:"description,omitempty"`
	ActionsPerformed string          `json:"actions_performed,omitempty"`
}

func (r Repair) RecordName() string  { return r.Name }
func (r Repair) StatusValue() string { return r.RepairStatus }

// SearchFields returns the fields the repairs search box looks at
func (r Repair) SearchFields() []string {
	return []string{r.Name, r.Asset, r.AssetName, r.Description}
}

// RepairSummary is the card strip above the repairs table
type RepairSummary struct {
	Count      int               `json:"count"`
	TotalCost  valueobject.Money `json:"total_cost"`
	Pending    int               `json:"pending"`
	InProgress int               `json:"in_progress"`
	Completed  int               `json:"completed"`
}

// SummarizeRepairs computes the repair cards
func SummarizeRepairs(items []Repair) RepairSummary {
	return RepairSummary{
		Count:      len(items),
		TotalCost:  valueobject.ETBFromDecimal(listview.SumFloat(items, func(r Repair) float64 { return r.RepairCost.Float64() })),
		Pending:    listview.CountStatus(items, Repair.StatusValue, RepairStatusPending),
		InProgress: listview.CountStatus(items, Repair.StatusValue, RepairStatusInProgress),
		Completed:  listview.CountStatus(items, Repair.StatusValue, RepairStatusCompleted),
	}
}

// RepairInput is the payload of the new and edit repair forms
type RepairInput struct {
	Asset            string  `json:"asset" validate:"required"`
	Company          string  `json:"company,omitempty"`
	FailureDate      string  `json:"failure_date" validate:"required"`
	CompletionDate   string  `json:"completion_date,omitempty"`
	RepairStatus     string  `json:"repair_status" validate:"required"`
	RepairCost       float64 `json:"repair_cost" validate:"gte=0"`
	Description      string  `json:"description,omitempty" validate:"max=2000"`
	ActionsPerformed string  `json:"actions_performed,omitempty" validate:"max=2000"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *RepairInput) Normalize() {
	in.Asset = listview.Unsentinel(strings.TrimSpace(in.Asset))
	in.Company = listview.Unsentinel(strings.TrimSpace(in.Company))
	in.RepairStatus = listview.Unsentinel(strings.TrimSpace(in.RepairStatus))
	in.Description = strings.TrimSpace(in.Description)
	in.ActionsPerformed = strings.TrimSpace(in.ActionsPerformed)
}

// StatusValue returns the requested repair status
func (in *RepairInput) StatusValue() string { return in.RepairStatus }
