package listview

import (
	"strings"

	"golang.org/x/text/cases"
)

// Badge classes
const (
	ClassGreen  = "bg-green-100 text-green-800"
	ClassBlue   = "bg-blue-100 text-blue-800"
	ClassYellow = "bg-yellow-100 text-yellow-800"
	ClassRed    = "bg-red-100 text-red-800"
	ClassPurple = "bg-purple-100 text-purple-800"
	ClassGray   = "bg-gray-100 text-gray-800"
)

// Palette maps a status-like value to a badge class. Lookups ignore case and
// unknown or empty values get the fallback class.
type Palette struct {
	classes  map[string]string
	fallback string
}

// NewPalette builds a palette from value -> class entries
func NewPalette(fallback string, entries map[string]string) Palette {
	p := Palette{classes: make(map[string]string, len(entries)), fallback: fallback}
	for value, class := range entries {
		p.classes[paletteKey(value)] = class
	}
	return p
}

// Class returns the badge class for value
func (p Palette) Class(value string) string {
	if c, ok := p.classes[paletteKey(value)]; ok {
		return c
	}
	return p.fallback
}

// A Caser is stateful, so each key gets its own.
func paletteKey(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}

// StatusPalette colours document and workflow statuses across all modules
var StatusPalette = NewPalette(ClassGray, map[string]string{
	"Completed": ClassGreen,
	"Submitted": ClassGreen,
	"Converted": ClassGreen,
	"Closed":    ClassGreen,
	"Paid":      ClassGreen,
	"Received":  ClassGreen,
	"Ordered":   ClassGreen,

	"In Progress":         ClassBlue,
	"Quoted":              ClassBlue,
	"Quotation":           ClassBlue,
	"Replied":             ClassBlue,
	"To Deliver":          ClassBlue,
	"To Deliver and Bill": ClassBlue,
	"To Bill":             ClassBlue,
	"Partially Ordered":   ClassBlue,
	"In Maintenance":      ClassBlue,

	"Open":    ClassYellow,
	"Pending": ClassYellow,
	"Planned": ClassYellow,
	"Draft":   ClassYellow,
	"Lead":    ClassYellow,
	"On Hold": ClassYellow,

	"Interested":  ClassPurple,
	"Opportunity": ClassPurple,

	"Cancelled":      ClassRed,
	"Lost":           ClassRed,
	"Overdue":        ClassRed,
	"Expired":        ClassRed,
	"Scrapped":       ClassRed,
	"Out of Order":   ClassRed,
	"Do Not Contact": ClassRed,
	"Lost Quotation": ClassRed,
})

// PriorityPalette colours activity priorities
var PriorityPalette = NewPalette(ClassGray, map[string]string{
	"High":   ClassRed,
	"Medium": ClassYellow,
	"Low":    ClassGreen,
})
