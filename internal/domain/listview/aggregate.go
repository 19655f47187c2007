package listview

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SumFloat adds field over items. Non-finite values count as zero.
func SumFloat[T any](items []T, field func(T) float64) decimal.Decimal {
	return SumWhere(items, nil, field)
}

// SumWhere adds field over the items matching pred. A nil pred matches all.
func SumWhere[T any](items []T, pred func(T) bool, field func(T) float64) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if pred != nil && !pred(item) {
			continue
		}
		v := Finite(field(item))
		if v == 0 {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

// Count returns how many items match pred
func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}

// CountStatus returns how many items have one of the given statuses, ignoring case
func CountStatus[T any](items []T, status func(T) string, values ...string) int {
	return Count(items, func(item T) bool { return StatusIs(status(item), values...) })
}

// Select returns the items matching pred
func Select[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// StatusIs reports whether status equals any candidate, ignoring case
func StatusIs(status string, candidates ...string) bool {
	status = strings.TrimSpace(status)
	for _, c := range candidates {
		if strings.EqualFold(status, c) {
			return true
		}
	}
	return false
}

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DueWithin reports whether date falls between today and now+days, both ends
// inclusive. An absent date is never due.
func DueWithin(date Date, now time.Time, days int) bool {
	if date.IsZero() {
		return false
	}
	t := date.In(now.Location())
	if t.Before(StartOfDay(now)) {
		return false
	}
	return !t.After(now.AddDate(0, 0, days))
}

// Overdue reports whether date lies before today. An absent date is never overdue.
func Overdue(date Date, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	return date.In(now.Location()).Before(StartOfDay(now))
}
