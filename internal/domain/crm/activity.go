package crm

import (
	"strings"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
)

// ActivityHorizonDays is how far ahead the "due soon" activity card looks
const ActivityHorizonDays = 7

// Activity statuses
const (
	ActivityStatusOpen       = "Open"
	ActivityStatusInProgress = "In Progress"
	ActivityStatusCompleted  = "Completed"
	ActivityStatusCancelled  = "Cancelled"
)

// ActivityFlow is the lifecycle of a follow-up activity
var ActivityFlow = listview.NewStatusFlow("Activity",
	ActivityStatusOpen, ActivityStatusInProgress, ActivityStatusCompleted, ActivityStatusCancelled).
	Forward(ActivityStatusOpen, ActivityStatusInProgress).
	Forward(ActivityStatusInProgress, ActivityStatusCompleted).
	Allow(ActivityStatusOpen, ActivityStatusCompleted, ActivityStatusCancelled).
	Allow(ActivityStatusInProgress, ActivityStatusOpen, ActivityStatusCancelled).
	Allow(ActivityStatusCompleted, ActivityStatusOpen).
	Allow(ActivityStatusCancelled, ActivityStatusOpen)

// ActivityFilterKeys are the server-side filters of the activities page
var ActivityFilterKeys = []string{"status", "priority", "activity_type", "allocated_to", "reference_doctype", "reference_name"}

// CommunicationFilterKeys are the server-side filters of the communications page
var CommunicationFilterKeys = []string{"communication_medium", "sent_or_received", "status", "reference_doctype", "reference_name"}

// Reference points at the document an activity or communication is attached to
type Reference struct {
	Doctype string `json:"reference_doctype"`
	Name    string `json:"reference_name"`
}

// NewReference validates a by-reference target
func NewReference(doctype, name string) (Reference, error) {
	ref := Reference{Doctype: strings.TrimSpace(doctype), Name: strings.TrimSpace(name)}
	if ref.Doctype == "" || ref.Name == "" {
		return Reference{}, shared.Errorf(shared.ErrInvalidInput, "Both doctype and name are required to attach a record")
	}
	return ref, nil
}

// Activity is a follow-up task (call, meeting, email) on a CRM document
type Activity struct {
	Name             string            `json:"name"`
	Subject          string            `json:"subject"`
	Description      string            `json:"description,omitempty"`
	ActivityType     string            `json:"activity_type,omitempty"`
	Priority         string            `json:"priority"`
	Status           string            `json:"status"`
	Date             listview.Date     `json:"date"`
	AllocatedTo      listview.FlexName `json:"allocated_to"`
	ReferenceDoctype string            `json:"reference_doctype,omitempty"`
	ReferenceName    string            `json:"reference_name,omitempty"`
}

func (a Activity) RecordName() string    { return a.Name }
func (a Activity) StatusValue() string   { return a.Status }
func (a Activity) PriorityValue() string { return a.Priority }

// SearchFields returns the fields the activities search box looks at
func (a Activity) SearchFields() []string {
	return []string{a.Name, a.Subject, a.Description, a.ReferenceName, a.AllocatedTo.Display()}
}

func (a Activity) open() bool {
	return !listview.StatusIs(a.Status, ActivityStatusCompleted, ActivityStatusCancelled)
}

// ActivitySummary is the card strip above the activities table
type ActivitySummary struct {
	Count     int `json:"count"`
	Open      int `json:"open"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	DueSoon   int `json:"due_soon"`
	High      int `json:"high_priority"`
}

// SummarizeActivities computes the activity cards as of now
func SummarizeActivities(items []Activity, now time.Time) ActivitySummary {
	return ActivitySummary{
		Count:     len(items),
		Open:      listview.Count(items, Activity.open),
		Completed: listview.CountStatus(items, Activity.StatusValue, ActivityStatusCompleted),
		Overdue:   listview.Count(items, func(a Activity) bool { return a.open() && listview.Overdue(a.Date, now) }),
		DueSoon:   listview.Count(items, func(a Activity) bool { return a.open() && listview.DueWithin(a.Date, now, ActivityHorizonDays) }),
		High:      listview.Count(items, func(a Activity) bool { return a.open() && listview.StatusIs(a.Priority, "High") }),
	}
}

// ActivityInput is the payload of the new and edit activity forms
type ActivityInput struct {
	Subject      string `json:"subject" validate:"required,max=140"`
	Description  string `json:"description,omitempty" validate:"max=2000"`
	ActivityType string `json:"activity_type" validate:"required,oneof=Call Meeting Email Task"`
	Priority     string `json:"priority" validate:"required,oneof=High Medium Low"`
	Status       string `json:"status,omitempty"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	AllocatedTo  string `json:"allocated_to,omitempty"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *ActivityInput) Normalize() {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = strings.TrimSpace(in.Description)
	in.ActivityType = listview.Unsentinel(strings.TrimSpace(in.ActivityType))
	in.Priority = listview.Unsentinel(strings.TrimSpace(in.Priority))
	in.Status = listview.Unsentinel(strings.TrimSpace(in.Status))
	in.AllocatedTo = listview.Unsentinel(strings.TrimSpace(in.AllocatedTo))
}

// StatusValue returns the requested activity status
func (in *ActivityInput) StatusValue() string { return in.Status }

// Communication is a logged email, call or message on a CRM document
type Communication struct {
	Name                string        `json:"name"`
	Subject             string        `json:"subject"`
	CommunicationMedium string        `json:"communication_medium,omitempty"`
	SentOrReceived      string        `json:"sent_or_received"`
	Sender              string        `json:"sender,omitempty"`
	Recipients          string        `json:"recipients,omitempty"`
	CommunicationDate   listview.Date `json:"communication_date"`
	Status              string        `json:"status"`
	Content             string        `json:"content,omitempty"`
	ReferenceDoctype    string        `json:"reference_doctype,omitempty"`
	ReferenceName       string        `json:"reference_name,omitempty"`
}

func (c Communication) RecordName() string  { return c.Name }
func (c Communication) StatusValue() string { return c.Status }

// SearchFields returns the fields the communications search box looks at
func (c Communication) SearchFields() []string {
	return []string{c.Name, c.Subject, c.Sender, c.Recipients, c.ReferenceName}
}

// CommunicationSummary is the card strip above the communications table
type CommunicationSummary struct {
	Count    int `json:"count"`
	Sent     int `json:"sent"`
	Received int `json:"received"`
}

// SummarizeCommunications computes the communication cards
func SummarizeCommunications(items []Communication) CommunicationSummary {
	direction := func(c Communication) string { return c.SentOrReceived }
	return CommunicationSummary{
		Count:    len(items),
		Sent:     listview.CountStatus(items, direction, "Sent"),
		Received: listview.CountStatus(items, direction, "Received"),
	}
}

// CommunicationInput is the payload of the new communication form
type CommunicationInput struct {
	Subject             string `json:"subject" validate:"required,max=140"`
	CommunicationMedium string `json:"communication_medium" validate:"required,oneof=Email Phone Chat Meeting SMS Other"`
	SentOrReceived      string `json:"sent_or_received" validate:"required,oneof=Sent Received"`
	Sender              string `json:"sender,omitempty" validate:"omitempty,email"`
	Recipients          string `json:"recipients,omitempty"`
	CommunicationDate   string `json:"communication_date,omitempty"`
	Content             string `json:"content,omitempty" validate:"max=10000"`
}

// Normalize strips form sentinels and surrounding whitespace
func (in *CommunicationInput) Normalize() {
	in.Subject = strings.TrimSpace(in.Subject)
	in.CommunicationMedium = listview.Unsentinel(strings.TrimSpace(in.CommunicationMedium))
	in.SentOrReceived = listview.Unsentinel(strings.TrimSpace(in.SentOrReceived))
	in.Sender = strings.TrimSpace(in.Sender)
	in.Recipients = strings.TrimSpace(in.Recipients)
}
