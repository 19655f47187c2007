package listview

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Display fallbacks
const (
	FallbackUnknown = "Unknown"
	FallbackNA      = "N/A"
)

// Or returns v, or fallback when v is blank
func Or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// OrNA returns v or "N/A"
func OrNA(v string) string {
	return Or(v, FallbackNA)
}

// Amount is a numeric field as the ERP server sends it. The server may send a
// number, a numeric string, null or garbage; decoding never fails. Null and
// empty strings become zero, garbage becomes NaN and is skipped by the sums.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = Amount(math.NaN())
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*a = Amount(math.NaN())
		return nil
	}
	*a = Amount(f)
	return nil
}

// MarshalJSON writes non-finite amounts as 0 since JSON has no NaN
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Finite())
}

// Float64 returns the raw value, NaN included
func (a Amount) Float64() float64 {
	return float64(a)
}

// Finite returns the value, or 0 when it is NaN or infinite
func (a Amount) Finite() float64 {
	return Finite(float64(a))
}

// Finite returns f, or 0 when f is NaN or infinite
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Date layouts the ERP server emits, most specific first
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DateLayout is the wire format for dates without a time part
const DateLayout = "2006-01-02"

// Date is an optional calendar date. Absent, null and unparseable values
// decode to the zero Date rather than failing the whole record.
type Date struct {
	t      time.Time
	layout string
}

// ParseDate parses any of the ERP date layouts. Unknown input yields the zero Date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Date{t: t, layout: layout}
		}
	}
	return Date{}
}

// NewDate wraps t as a date-only value
func NewDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return Date{t: t, layout: DateLayout}
}

// IsZero reports whether the date is absent
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns the parsed wall clock time
func (d Date) Time() time.Time {
	return d.t
}

// In reinterprets the wall clock of d in loc. ERP dates carry no zone and are
// read as local to whoever compares them.
func (d Date) In(loc *time.Location) time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	y, m, day := d.t.Date()
	h, min, s := d.t.Clock()
	return time.Date(y, m, day, h, min, s, d.t.Nanosecond(), loc)
}

// String returns the date in its wire layout, or "" when absent
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	layout := d.layout
	if layout == "" {
		layout = DateLayout
	}
	return d.t.Format(layout)
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// MarshalJSON writes null for an absent date
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// FlexName is a link field the server sends either as a plain record name or
// as an expanded object carrying a display label.
type FlexName struct {
	Name  string
	Label string
}

var flexLabelKeys = []string{"full_name", "employee_name", "customer_name", "label", "title"}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexName) UnmarshalJSON(data []byte) error {
	*f = FlexName{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Name = s
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	if name, ok := obj["name"].(string); ok {
		f.Name = name
	}
	for _, key := range flexLabelKeys {
		if label, ok := obj[key].(string); ok && label != "" {
			f.Label = label
			break
		}
	}
	return nil
}

// MarshalJSON writes the record name, which is what the server expects back
func (f FlexName) MarshalJSON() ([]byte, error) {
	if f.Name == "" {
		return []byte("null"), nil
	}
	return json.Marshal(f.Name)
}

// Display returns the label, the name, or "Unknown"
func (f FlexName) Display() string {
	if f.Label != "" {
		return f.Label
	}
	return Or(f.Name, FallbackUnknown)
}

// String implements fmt.Stringer
func (f FlexName) String() string {
	return f.Name
}
