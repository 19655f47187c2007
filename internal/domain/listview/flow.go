package listview

import (
	"sort"
	"strings"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
)

// StatusFlow is a closed set of statuses with the transitions allowed between
// them. Statuses compare case-insensitively but are always reported in their
// declared spelling.
type StatusFlow struct {
	name     string
	statuses map[string]string
	edges    map[string]map[string]struct{}
	forward  map[string]string
}

// NewStatusFlow declares the statuses of a document type
func NewStatusFlow(name string, statuses ...string) *StatusFlow {
	f := &StatusFlow{
		name:     name,
		statuses: make(map[string]string, len(statuses)),
		edges:    make(map[string]map[string]struct{}),
		forward:  make(map[string]string),
	}
	for _, s := range statuses {
		f.statuses[strings.ToLower(s)] = s
	}
	return f
}

// Allow permits moving from one status to each of the targets
func (f *StatusFlow) Allow(from string, to ...string) *StatusFlow {
	key := strings.ToLower(from)
	if f.edges[key] == nil {
		f.edges[key] = make(map[string]struct{})
	}
	for _, t := range to {
		f.edges[key][strings.ToLower(t)] = struct{}{}
	}
	return f
}

// Forward declares the "advance" step out of from, which is also allowed
func (f *StatusFlow) Forward(from, to string) *StatusFlow {
	f.forward[strings.ToLower(from)] = to
	return f.Allow(from, to)
}

// Name returns the document type the flow belongs to
func (f *StatusFlow) Name() string {
	return f.name
}

// Canonical returns the declared spelling of status
func (f *StatusFlow) Canonical(status string) (string, bool) {
	s, ok := f.statuses[strings.ToLower(strings.TrimSpace(status))]
	return s, ok
}

// Statuses returns the declared statuses, sorted
func (f *StatusFlow) Statuses() []string {
	out := make([]string, 0, len(f.statuses))
	for _, s := range f.statuses {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// CanTransition reports whether a record may move from one status to another.
// Keeping the same status is always allowed. A record whose current status is
// not part of the flow may move to any declared status.
func (f *StatusFlow) CanTransition(from, to string) bool {
	toKey := strings.ToLower(strings.TrimSpace(to))
	fromKey := strings.ToLower(strings.TrimSpace(from))
	if _, ok := f.statuses[toKey]; !ok {
		return false
	}
	if fromKey == toKey {
		return true
	}
	if _, ok := f.statuses[fromKey]; !ok {
		return true
	}
	_, ok := f.edges[fromKey][toKey]
	return ok
}

// Next returns the forward step out of from
func (f *StatusFlow) Next(from string) (string, bool) {
	next, ok := f.forward[strings.ToLower(strings.TrimSpace(from))]
	return next, ok
}

// Validate returns ErrInvalidTransition when the move is not allowed
func (f *StatusFlow) Validate(from, to string) error {
	if f.CanTransition(from, to) {
		return nil
	}
	if _, ok := f.Canonical(to); !ok {
		return shared.Errorf(shared.ErrInvalidTransition, "%s status %q is not recognised", f.name, to)
	}
	return shared.Errorf(shared.ErrInvalidTransition, "%s cannot move from %q to %q", f.name, from, to)
}
