package listview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
)

func testFlow() *StatusFlow {
	return NewStatusFlow("Opportunity", "Open", "Quoted", "Closed", "Lost").
		Forward("Open", "Quoted").
		Forward("Quoted", "Closed").
		Allow("Open", "Lost").
		Allow("Quoted", "Lost", "Open")
}

func TestStatusFlow_CanTransition(t *testing.T) {
	f := testFlow()

	tests := []struct {
		from, to string
		want     bool
	}{
		{"Open", "Quoted", true},
		{"open", "QUOTED", true},
		{"Quoted", "Closed", true},
		{"Open", "Closed", false},
		{"Closed", "Open", false},
		{"Lost", "Lost", true},
		{"Open", "Won", false},
		{"Replied", "Open", true},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, f.CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusFlow_Next(t *testing.T) {
	f := testFlow()

	next, ok := f.Next("Open")
	assert.True(t, ok)
	assert.Equal(t, "Quoted", next)

	next, ok = f.Next("Quoted")
	assert.True(t, ok)
	assert.Equal(t, "Closed", next)

	_, ok = f.Next("Closed")
	assert.False(t, ok)
}

func TestStatusFlow_Validate(t *testing.T) {
	f := testFlow()

	assert.NoError(t, f.Validate("Open", "Quoted"))

	err := f.Validate("Closed", "Open")
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	assert.Contains(t, err.Error(), `"Closed"`)

	err = f.Validate("Open", "Won")
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
}

func TestStatusFlow_Canonical(t *testing.T) {
	f := testFlow()

	s, ok := f.Canonical(" quoted ")
	assert.True(t, ok)
	assert.Equal(t, "Quoted", s)
	assert.Equal(t, []string{"Closed", "Lost", "Open", "Quoted"}, f.Statuses())
}
