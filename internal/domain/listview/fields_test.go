package listview

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		isNaN bool
	}{
		{name: "number", input: `100.5`, want: 100.5},
		{name: "numeric string", input: `"200"`, want: 200},
		{name: "null", input: `null`, want: 0},
		{name: "empty string", input: `""`, want: 0},
		{name: "garbage string", input: `"n/a"`, isNaN: true},
		{name: "boolean", input: `true`, isNaN: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			if tt.isNaN {
				assert.True(t, math.IsNaN(a.Float64()))
				assert.Equal(t, 0.0, a.Finite())
				return
			}
			assert.Equal(t, tt.want, a.Float64())
		})
	}
}

func TestAmount_InRecord(t *testing.T) {
	var rec struct {
		Paid Amount `json:"paid_amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"paid_amount":"abc"}`), &rec))
	assert.True(t, math.IsNaN(rec.Paid.Float64()))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"paid_amount":0}`, string(out))
}

func TestDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		zero  bool
	}{
		{input: `"2026-03-14"`, want: "2026-03-14"},
		{input: `"2026-03-14 09:30:00"`, want: "2026-03-14 09:30:00"},
		{input: `"2026-03-14 09:30:00.123456"`, want: "2026-03-14 09:30:00.123456"},
		{input: `null`, zero: true},
		{input: `""`, zero: true},
		{input: `"not a date"`, zero: true},
		{input: `12`, zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.zero, d.IsZero())
			if !tt.zero {
				assert.Equal(t, tt.want, d.String())
			}
		})
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Date `json:"a"`
		B Date `json:"b"`
	}{A: NewDate(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2026-01-02","b":null}`, string(out))
}

func TestFlexName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantVal string
		display string
	}{
		{name: "plain string", input: `"HR-EMP-0001"`, wantVal: "HR-EMP-0001", display: "HR-EMP-0001"},
		{name: "object with label", input: `{"name":"HR-EMP-0002","employee_name":"Sara Bekele"}`, wantVal: "HR-EMP-0002", display: "Sara Bekele"},
		{name: "object without label", input: `{"name":"HR-EMP-0003"}`, wantVal: "HR-EMP-0003", display: "HR-EMP-0003"},
		{name: "null", input: `null`, display: FallbackUnknown},
		{name: "number", input: `7`, display: FallbackUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexName
			require.NoError(t, json.Unmarshal([]byte(tt.input), &f))
			assert.Equal(t, tt.wantVal, f.Name)
			assert.Equal(t, tt.display, f.Display())
		})
	}
}

func TestFlexName_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(FlexName{Name: "HR-EMP-0002", Label: "Sara Bekele"})
	require.NoError(t, err)
	assert.Equal(t, `"HR-EMP-0002"`, string(out))
}

func TestOrNA(t *testing.T) {
	assert.Equal(t, FallbackNA, OrNA(""))
	assert.Equal(t, FallbackNA, OrNA("  "))
	assert.Equal(t, "Main Store", OrNA("Main Store"))
}
