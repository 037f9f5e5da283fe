package repo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/query"
)

// columnExpr returns the SQL for a column. Only allow-listed columns produce
// SQL text; user input only ever reaches the statement as a bind parameter.
func columnExpr(c query.Column) (string, error) {
	switch c {
	case query.ColumnUserID:
		return "user_id", nil
	case query.ColumnArea:
		return "COALESCE(area, '')", nil
	case query.ColumnRegions:
		return "COALESCE(regions, '')", nil
	case query.ColumnName:
		return "name", nil
	case query.ColumnIngredients:
		return "COALESCE(ingredients, '')", nil
	case query.ColumnDateAdded:
		return "date_added", nil
	}
	return "", fmt.Errorf("%w: %s", common.ErrInvalidColumn, c)
}

// BuildSearch renders spec as a single SELECT over products.
//
// Text sorts use the C collation so ordering is bytewise, matching the
// in-memory store. id ASC is always the last key.
func BuildSearch(spec query.Spec) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if spec.Term != "" {
		p := bind("%" + spec.Term + "%")
		where = append(where, "(name ILIKE "+p+" OR COALESCE(ingredients, '') ILIKE "+p+")")
	}

	for _, f := range spec.Filters {
		expr, err := columnExpr(f.Column)
		if err != nil {
			return "", nil, err
		}
		if f.Column == query.ColumnUserID {
			id, err := strconv.Atoi(f.Value)
			if err != nil {
				where = append(where, "FALSE")
				continue
			}
			where = append(where, expr+" = "+bind(id))
			continue
		}
		where = append(where, expr+" ILIKE "+bind(f.Value))
	}

	order := make([]string, 0, len(spec.Sorts)+1)
	for _, s := range spec.Sorts {
		expr, err := columnExpr(s.Column)
		if err != nil {
			return "", nil, err
		}
		if s.Column != query.ColumnDateAdded && s.Column != query.ColumnUserID {
			expr += ` COLLATE "C"`
		}
		order = append(order, expr+" "+strings.ToUpper(s.Direction.String()))
	}
	order = append(order, "id ASC")

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(productColumns)
	b.WriteString(" FROM products")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(order, ", "))
	return b.String(), args, nil
}
