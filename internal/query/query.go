// Package query builds bounded product searches from request parameters.
//
// Filter and sort keys are checked against a closed set of Column values;
// anything outside the allow-list is dropped, not rejected.
package query

import (
	"strconv"
	"strings"
)

// Column identifies a product field eligible for filtering or sorting.
type Column int

const (
	ColumnUserID Column = iota + 1
	ColumnArea
	ColumnRegions
	ColumnName
	ColumnIngredients
	ColumnDateAdded
)

func (c Column) String() string {
	switch c {
	case ColumnUserID:
		return "user_id"
	case ColumnArea:
		return "area"
	case ColumnRegions:
		return "regions"
	case ColumnName:
		return "name"
	case ColumnIngredients:
		return "ingredients"
	case ColumnDateAdded:
		return "date_added"
	}
	return "column(" + strconv.Itoa(int(c)) + ")"
}

// Filter keys as they arrive from the caller. "region" maps onto the stored
// "regions" column.
var filterColumns = map[string]Column{
	"user_id": ColumnUserID,
	"area":    ColumnArea,
	"region":  ColumnRegions,
}

// Sort keys in the order directives are applied.
var sortColumns = []struct {
	key string
	col Column
}{
	{"name", ColumnName},
	{"ingredients", ColumnIngredients},
	{"area", ColumnArea},
	{"date_added", ColumnDateAdded},
}

// Direction is a sort direction.
type Direction int

const (
	Desc Direction = iota
	Asc
)

// ParseDirection maps "asc" to Asc; every other value sorts descending.
func ParseDirection(s string) Direction {
	if s == "asc" {
		return Asc
	}
	return Desc
}

func (d Direction) String() string {
	if d == Asc {
		return "asc"
	}
	return "desc"
}

// Filter restricts results to rows whose column matches Value.
type Filter struct {
	Column Column
	Value  string
}

// Sort orders results by a column.
type Sort struct {
	Column    Column
	Direction Direction
}

// Spec is a validated search request.
type Spec struct {
	Term    string
	Filters []Filter
	Sorts   []Sort
}

// Empty reports whether the spec selects every product in storage order.
func (s Spec) Empty() bool {
	return s.Term == "" && len(s.Filters) == 0 && len(s.Sorts) == 0
}

// closeEscape doubles a trailing unpaired backslash so the value is a complete
// LIKE pattern; Postgres rejects patterns ending in the escape character.
func closeEscape(v string) string {
	n := len(v) - len(strings.TrimRight(v, `\`))
	if n%2 == 1 {
		return v + `\`
	}
	return v
}

// Parse builds a Spec from raw request values. Unknown filter and sort keys and
// empty filter values are ignored. Filters come out in a fixed column order and
// there is at most one sort per column.
func Parse(term string, filters, sorts map[string]string) Spec {
	spec := Spec{Term: strings.TrimSpace(term)}

	for _, key := range []string{"user_id", "area", "region"} {
		v, ok := filters[key]
		if !ok || v == "" {
			continue
		}
		spec.Filters = append(spec.Filters, Filter{Column: filterColumns[key], Value: closeEscape(v)})
	}

	for _, sc := range sortColumns {
		dir, ok := sorts[sc.key]
		if !ok {
			continue
		}
		spec.Sorts = append(spec.Sorts, Sort{Column: sc.col, Direction: ParseDirection(dir)})
	}
	return spec
}

// IsFilterColumn reports whether c may appear in a Filter.
func IsFilterColumn(c Column) bool {
	return c == ColumnUserID || c == ColumnArea || c == ColumnRegions
}

// IsSortColumn reports whether c may appear in a Sort.
func IsSortColumn(c Column) bool {
	for _, sc := range sortColumns {
		if sc.col == c {
			return true
		}
	}
	return false
}
