package auditlog

import (
	"strings"

	"github.com/publink/publink-logs/internal/db/repositories"
)

// SortDirection is the ordering direction of a SortSpec
type SortDirection int

const (
	Descending SortDirection = iota
	Ascending
)

// String returns "asc" or "desc"
func (d SortDirection) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// SortSpec is a validated ordering instruction. Field is always a key of sortFields.
type SortSpec struct {
	Field     string
	Direction SortDirection
}

// String renders s in the "Field:dir" form ParseSort accepts
func (s SortSpec) String() string {
	return s.Field + ":" + s.Direction.String()
}

// column returns the store column s orders by
func (s SortSpec) column() repositories.AuditLogSortColumn {
	return sortFields[strings.ToLower(s.Field)].column
}

type sortField struct {
	name   string
	column repositories.AuditLogSortColumn
}

// sortFields is the whitelist of sortable fields keyed by lower-case name.
// To make another field sortable, add an entry here and a matching column in the repository.
var sortFields = map[string]sortField{
	"createddate": {name: "CreatedDate", column: repositories.AuditLogSortCreatedDate},
}

const defaultSortField = "createddate"

// DefaultSort is used whenever the requested sort is empty
var DefaultSort = SortSpec{Field: sortFields[defaultSortField].name, Direction: Descending}

// ParseSort turns "field:direction" into a SortSpec. Matching is case-insensitive.
// Unknown fields fall back to CreatedDate and every direction other than "asc" means
// descending; the function never fails.
func ParseSort(raw string) SortSpec {
	if strings.TrimSpace(raw) == "" {
		return DefaultSort
	}

	parts := make([]string, 0, 2)
	for _, part := range strings.Split(raw, ":") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, strings.ToLower(part))
		}
	}

	field := sortFields[defaultSortField]
	if len(parts) > 0 {
		if f, found := sortFields[parts[0]]; found {
			field = f
		}
	}

	direction := Descending
	if len(parts) > 1 && parts[1] == "asc" {
		direction = Ascending
	}

	return SortSpec{Field: field.name, Direction: direction}
}
