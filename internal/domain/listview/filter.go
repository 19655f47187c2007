// Package listview holds the pieces every listing page is built from: filter
// state and its query encoding, the local text search, derived aggregates,
// status colouring and the status transition tables.
package listview

import (
	"net/url"
	"sort"
	"strings"
)

// Widget sentinels. Select widgets cannot represent an empty option, so "all"
// stands for "no filter" and "none" for "no selection".
const (
	SentinelAll  = "all"
	SentinelNone = "none"
)

// Filter is the set of server-side constraints of a listing page.
// Only present constraints are stored; an absent key means "no constraint".
// The zero value is an empty filter.
type Filter struct {
	values map[string]string
}

// NewFilter returns an empty filter
func NewFilter() Filter {
	return Filter{values: map[string]string{}}
}

// FilterFromWidget converts raw widget state into a Filter. Empty values and
// the "all" sentinel are dropped at this boundary.
func FilterFromWidget(state map[string]string) Filter {
	f := NewFilter()
	for k, v := range state {
		if value, ok := widgetValue(v); ok && k != "" {
			f.values[k] = value
		}
	}
	return f
}

// FilterFromQuery builds a Filter from request query parameters, skipping the
// reserved keys (search text, refresh flags and the like).
func FilterFromQuery(q url.Values, reserved ...string) Filter {
	skip := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		skip[r] = struct{}{}
	}
	f := NewFilter()
	for k, vs := range q {
		if _, ok := skip[k]; ok || len(vs) == 0 || k == "" {
			continue
		}
		if value, ok := widgetValue(vs[0]); ok {
			f.values[k] = value
		}
	}
	return f
}

func widgetValue(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, SentinelAll) {
		return "", false
	}
	return v, true
}

// With returns a copy of f with key set to value. Setting an empty or "all"
// value removes the constraint.
func (f Filter) With(key, value string) Filter {
	out := NewFilter()
	for k, v := range f.values {
		out.values[k] = v
	}
	if v, ok := widgetValue(value); ok {
		out.values[key] = v
	} else {
		delete(out.values, key)
	}
	return out
}

// Only returns a copy of f restricted to the given keys
func (f Filter) Only(keys ...string) Filter {
	out := NewFilter()
	for _, k := range keys {
		if v, ok := f.values[k]; ok {
			out.values[k] = v
		}
	}
	return out
}

// Get returns the constraint for key and whether it is present
func (f Filter) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Widget returns the value to show in the select widget for key
func (f Filter) Widget(key string) string {
	if v, ok := f.values[key]; ok {
		return v
	}
	return SentinelAll
}

// Len returns the number of present constraints
func (f Filter) Len() int {
	return len(f.values)
}

// Keys returns the constrained keys in sorted order
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns the constraints as url.Values
func (f Filter) Values() url.Values {
	v := make(url.Values, len(f.values))
	for k, val := range f.values {
		v.Set(k, val)
	}
	return v
}

// Encode returns the URL query string for the filter. Keys are sorted, so two
// filters with the same constraints always encode identically.
func (f Filter) Encode() string {
	return f.Values().Encode()
}

// ComposeQuery turns raw widget state into a query string, omitting keys whose
// value is empty or "all".
func ComposeQuery(state map[string]string) string {
	return FilterFromWidget(state).Encode()
}

// Unsentinel maps a form sentinel ("none" or "all") back to the empty string
func Unsentinel(v string) string {
	t := strings.TrimSpace(v)
	if strings.EqualFold(t, SentinelNone) || strings.EqualFold(t, SentinelAll) {
		return ""
	}
	return v
}
