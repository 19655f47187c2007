// Package options models the lookup lists (companies, employees, categories,
// locations, territories and so on) that populate select widgets and resolve
// record names back to human labels.
package options

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
)

// Option is a single {name, label} pair
type Option struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// labelKeys are the label fields the ERP server uses, most specific first
var labelKeys = []string{
	"label",
	"title",
	"full_name",
	"employee_name",
	"customer_name",
	"supplier_name",
	"company_name",
	"category_name",
	"asset_category_name",
	"location_name",
	"territory_name",
	"account_name",
	"lead_name",
	"item_name",
	"mode_of_payment",
	"user_name",
	"department_name",
}

// UnmarshalJSON accepts a bare string or an object with a name and any of the
// known label fields.
func (o *Option) UnmarshalJSON(data []byte) error {
	*o = Option{}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Name, o.Label = s, s
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if name, ok := obj["name"].(string); ok {
		o.Name = name
	}
	for _, key := range labelKeys {
		if label, ok := obj[key].(string); ok && label != "" {
			o.Label = label
			break
		}
	}
	if o.Label == "" {
		o.Label = o.Name
	}
	return nil
}

// Display returns the label, or the name when there is none
func (o Option) Display() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Name
}

// Resolve returns the label of name in list. A name missing from the list
// resolves to itself and an empty name to "N/A".
func Resolve(list []Option, name string) string {
	if strings.TrimSpace(name) == "" {
		return listview.FallbackNA
	}
	for _, o := range list {
		if o.Name == name {
			return o.Display()
		}
	}
	return name
}

// Bundle is a set of named option lists, as returned by an options endpoint
type Bundle map[string][]Option

// UnmarshalJSON skips entries that are not lists of options instead of
// failing the whole bundle.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Bundle, len(raw))
	for key, msg := range raw {
		var list []Option
		if err := json.Unmarshal(msg, &list); err != nil {
			continue
		}
		out[key] = list
	}
	*b = out
	return nil
}

// List returns the named list, or nil
func (b Bundle) List(key string) []Option {
	return b[key]
}

// Resolve looks name up in the named list
func (b Bundle) Resolve(key, name string) string {
	return Resolve(b[key], name)
}

// Keys returns the list names in sorted order
func (b Bundle) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether name is one of the options in the named list
func (b Bundle) Has(key, name string) bool {
	for _, o := range b[key] {
		if o.Name == name {
			return true
		}
	}
	return false
}
