package crm

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

var now = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

func TestSummarizeLeads(t *testing.T) {
	items := []Lead{
		{Name: "CRM-LEAD-1", Status: "Lead"},
		{Name: "CRM-LEAD-2", Status: "Open"},
		{Name: "CRM-LEAD-3", Status: "Converted"},
		{Name: "CRM-LEAD-4", Status: "Do Not Contact"},
		{Name: "CRM-LEAD-5", Status: "Something Else"},
	}

	assert.Equal(t, LeadSummary{Count: 5, Open: 2, Converted: 1, Lost: 1}, SummarizeLeads(items))
}

func TestLead_DisplayName(t *testing.T) {
	assert.Equal(t, "Meron Alemu", Lead{FirstName: "Meron", LastName: "Alemu"}.DisplayName())
	assert.Equal(t, "Meron A.", Lead{LeadName: "Meron A.", FirstName: "Meron"}.DisplayName())
	assert.Equal(t, listview.FallbackUnknown, Lead{}.DisplayName())
}

func TestOpportunityFlow_Advance(t *testing.T) {
	status := OpportunityStatusOpen
	var path []string
	for {
		next, ok := OpportunityFlow.Next(status)
		if !ok {
			break
		}
		require.True(t, OpportunityFlow.CanTransition(status, next))
		path = append(path, next)
		status = next
	}

	assert.Equal(t, []string{OpportunityStatusQuoted, OpportunityStatusClosed}, path)
	assert.True(t, errors.Is(OpportunityFlow.Validate(OpportunityStatusClosed, OpportunityStatusQuoted), shared.ErrInvalidTransition))
}

func TestSummarizeOpportunities(t *testing.T) {
	payload := `[
		{"name": "CRM-OPP-1", "status": "Open", "opportunity_amount": 50000, "expected_closing": "2026-11-18"},
		{"name": "CRM-OPP-2", "status": "Quoted", "opportunity_amount": "25000.50", "expected_closing": "2026-12-30"},
		{"name": "CRM-OPP-3", "status": "Lost", "opportunity_amount": 99999, "expected_closing": "2026-10-20"},
		{"name": "CRM-OPP-4", "status": "Open", "opportunity_amount": null, "expected_closing": ""}
	]`
	var items []Opportunity
	require.NoError(t, json.Unmarshal([]byte(payload), &items))

	s := SummarizeOpportunities(items, now)

	assert.Equal(t, "ETB 75,000.50", s.PipelineValue.Format())
	assert.Equal(t, 2, s.Open)
	assert.Equal(t, 1, s.Quoted)
	assert.Equal(t, 1, s.ClosingSoon)
}

func TestSummarizeQuotations(t *testing.T) {
	items := []Quotation{
		{Name: "QTN-1", Status: "Open", GrandTotal: 1000, ValidTill: listview.ParseDate("2026-10-23")},
		{Name: "QTN-2", Status: "Open", GrandTotal: 2000, ValidTill: listview.ParseDate("2026-10-01")},
		{Name: "QTN-3", Status: "Ordered", GrandTotal: 3000, ValidTill: listview.ParseDate("2026-10-01")},
		{Name: "QTN-4", Status: "Expired", GrandTotal: 4000},
	}

	s := SummarizeQuotations(items, now)

	assert.Equal(t, "ETB 10,000.00", s.TotalValue.Format())
	assert.Equal(t, 1, s.Ordered)
	assert.Equal(t, 1, s.ExpiringSoon)
	assert.Equal(t, 2, s.Expired)
}

func TestSummarizeSalesOrders(t *testing.T) {
	items := []SalesOrder{
		{Name: "SO-1", Status: "To Deliver and Bill", GrandTotal: 500, DeliveryDate: listview.ParseDate("2026-10-01")},
		{Name: "SO-2", Status: "To Deliver", GrandTotal: 500, DeliveryDate: listview.ParseDate("2026-10-30")},
		{Name: "SO-3", Status: "Completed", GrandTotal: 500, DeliveryDate: listview.ParseDate("2026-09-01")},
		{Name: "SO-4", Status: "To Bill", GrandTotal: 500, PerDelivered: 100, DeliveryDate: listview.ParseDate("2026-09-01")},
	}

	s := SummarizeSalesOrders(items, now)

	assert.Equal(t, "ETB 2,000.00", s.TotalValue.Format())
	assert.Equal(t, 2, s.ToDeliver)
	assert.Equal(t, 1, s.OverdueDelivery)
	assert.Equal(t, 1, s.Completed)
}

func TestSummarizeActivities(t *testing.T) {
	items := []Activity{
		{Name: "ACT-1", Status: "Open", Priority: "High", Date: listview.ParseDate("2026-10-10")},
		{Name: "ACT-2", Status: "Open", Priority: "Low", Date: listview.ParseDate("2026-10-21")},
		{Name: "ACT-3", Status: "Completed", Priority: "High", Date: listview.ParseDate("2026-10-10")},
		{Name: "ACT-4", Status: "In Progress", Priority: "Medium"},
	}

	s := SummarizeActivities(items, now)

	assert.Equal(t, ActivitySummary{Count: 4, Open: 3, Completed: 1, Overdue: 1, DueSoon: 1, High: 1}, s)
}

func TestActivity_Decorate(t *testing.T) {
	d := listview.Decorate(Activity{Status: "Completed", Priority: "High"})

	assert.Equal(t, listview.ClassGreen, d.StatusClass)
	assert.Equal(t, listview.ClassRed, d.PriorityClass)
	assert.Empty(t, listview.Decorate(Lead{Status: "Open"}).PriorityClass)
}

func TestActivity_FlexAllocatedTo(t *testing.T) {
	var a Activity
	require.NoError(t, json.Unmarshal([]byte(`{"name":"ACT-9","allocated_to":{"name":"u@example.com","full_name":"Yonas"}}`), &a))
	assert.Equal(t, "Yonas", a.AllocatedTo.Display())
	assert.Len(t, listview.SearchRecords([]Activity{a}, "yon"), 1)
}

func TestSummarizeCommunications(t *testing.T) {
	items := []Communication{{SentOrReceived: "Sent"}, {SentOrReceived: "Received"}, {SentOrReceived: "received"}}

	assert.Equal(t, CommunicationSummary{Count: 3, Sent: 1, Received: 2}, SummarizeCommunications(items))
}

func TestNewReference(t *testing.T) {
	ref, err := NewReference(" Lead ", "CRM-LEAD-1")
	require.NoError(t, err)
	assert.Equal(t, Reference{Doctype: "Lead", Name: "CRM-LEAD-1"}, ref)

	_, err = NewReference("Lead", "")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
