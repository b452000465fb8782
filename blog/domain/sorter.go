package domain

import "strings"

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

var sortableFields = map[string]bool{
	"id":           true,
	"title":        true,
	"created_at":   true,
	"updated_at":   true,
	"published_at": true,
}

// Sorter describes the requested ordering of a post listing.
// Field is always one of the sortable columns, so stores may use it verbatim.
type Sorter struct {
	Field string
	Order string
}

// DefaultSorter lists the newest posts first.
func DefaultSorter() Sorter {
	return Sorter{Field: "created_at", Order: SortDesc}
}

// NewSorter builds a Sorter from raw request values, falling back to the
// default field and order for anything unknown.
func NewSorter(field, order string) Sorter {
	s := DefaultSorter()

	field = strings.ToLower(strings.TrimSpace(field))
	if sortableFields[field] {
		s.Field = field
	}

	switch strings.ToLower(strings.TrimSpace(order)) {
	case SortAsc:
		s.Order = SortAsc
	case SortDesc:
		s.Order = SortDesc
	}

	return s
}

// IsSortableField reports whether field may be used as a sort column.
func IsSortableField(field string) bool {
	return sortableFields[field]
}

func (s Sorter) IsAscending() bool {
	return s.Order == SortAsc
}

// Toggle returns the opposite order for field, or its default order when
// the listing is currently sorted by something else.
func (s Sorter) Toggle(field string) Sorter {
	if s.Field != field {
		return NewSorter(field, SortDesc)
	}
	if s.IsAscending() {
		return NewSorter(field, SortDesc)
	}
	return NewSorter(field, SortAsc)
}
