package listview

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type paid struct {
	kind   string
	amount float64
	status string
}

func TestSumFloat_SkipsNonFinite(t *testing.T) {
	items := []paid{
		{kind: "Receive", amount: 100},
		{kind: "Receive", amount: 200},
		{kind: "Receive", amount: math.NaN()},
		{kind: "Receive", amount: math.Inf(1)},
	}

	total := SumFloat(items, func(p paid) float64 { return p.amount })

	assert.Equal(t, "300", total.String())
}

func TestSumWhere(t *testing.T) {
	items := []paid{
		{kind: "Receive", amount: 100.25},
		{kind: "Pay", amount: 40},
		{kind: "Receive", amount: 0.75},
	}

	received := SumWhere(items, func(p paid) bool { return p.kind == "Receive" }, func(p paid) float64 { return p.amount })
	assert.Equal(t, "101", received.String())

	assert.True(t, SumFloat[paid](nil, func(p paid) float64 { return p.amount }).IsZero())
}

func TestCountAndStatusIs(t *testing.T) {
	items := []paid{{status: "Open"}, {status: "open"}, {status: "Closed"}, {status: ""}}

	n := Count(items, func(p paid) bool { return StatusIs(p.status, "Open") })
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, CountStatus(items, func(p paid) string { return p.status }, "OPEN", "closed"))
	assert.Len(t, Select(items, func(p paid) bool { return StatusIs(p.status, "Closed", "Lost") }), 1)
}

func TestDueWithin(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date Date
		want bool
	}{
		{name: "absent", date: Date{}, want: false},
		{name: "today", date: ParseDate("2026-10-19"), want: true},
		{name: "yesterday", date: ParseDate("2026-10-18"), want: false},
		{name: "boundary day", date: ParseDate("2026-11-18"), want: true},
		{name: "exact boundary instant", date: NewDate(now.AddDate(0, 0, 30)), want: true},
		{name: "one second past boundary", date: NewDate(now.AddDate(0, 0, 30).Add(time.Second)), want: false},
		{name: "day after boundary", date: ParseDate("2026-11-19"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueWithin(tt.date, now, 30))
		})
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	assert.True(t, Overdue(ParseDate("2026-10-18"), now))
	assert.False(t, Overdue(ParseDate("2026-10-19"), now))
	assert.False(t, Overdue(ParseDate("2026-12-01"), now))
	assert.False(t, Overdue(Date{}, now))
}

func TestDueWithin_UsesCallerLocation(t *testing.T) {
	addis := time.FixedZone("EAT", 3*60*60)
	now := time.Date(2026, 10, 19, 1, 0, 0, 0, addis)

	assert.True(t, DueWithin(ParseDate("2026-10-19"), now, 0))
	assert.False(t, Overdue(ParseDate("2026-10-19"), now))
}
