package listview

// Record is a collection row as listing pages see it
type Record interface {
	Searchable
	RecordName() string
	StatusValue() string
}

// Prioritized is implemented by records that carry a priority
type Prioritized interface {
	PriorityValue() string
}

// Decoration is the presentation data attached to each listed row
type Decoration struct {
	StatusClass   string `json:"status_class"`
	PriorityClass string `json:"priority_class,omitempty"`
}

// Decorate maps the record's status, and priority if it has one, to badge classes
func Decorate(r Record) Decoration {
	d := Decoration{StatusClass: StatusPalette.Class(r.StatusValue())}
	if p, ok := r.(Prioritized); ok {
		d.PriorityClass = PriorityPalette.Class(p.PriorityValue())
	}
	return d
}
