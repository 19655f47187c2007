package listview

import (
	"strings"

	"golang.org/x/text/cases"
)

// Searchable is implemented by records that expose the fields the local text
// filter looks at.
type Searchable interface {
	SearchFields() []string
}

// Search returns the records where at least one field contains query as a
// case-insensitive substring. An empty or blank query returns items itself.
func Search[T any](items []T, query string, fields func(T) []string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	folder := cases.Fold()
	needle := folder.String(query)

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields(item) {
			if field == "" {
				continue
			}
			if strings.Contains(folder.String(field), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// SearchRecords is Search for types implementing Searchable
func SearchRecords[T Searchable](items []T, query string) []T {
	return Search(items, query, func(item T) []string { return item.SearchFields() })
}
