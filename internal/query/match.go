package query

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"unicode"

	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/models"
)

// column accessors and comparators used when a spec is evaluated in memory.
var textFields = map[Column]func(p models.Product) string{
	ColumnArea:        func(p models.Product) string { return p.Area },
	ColumnRegions:     func(p models.Product) string { return p.Regions },
	ColumnName:        func(p models.Product) string { return p.Name },
	ColumnIngredients: func(p models.Product) string { return p.Ingredients },
}

var comparators = map[Column]func(a, b models.Product) int{
	ColumnName:        func(a, b models.Product) int { return cmp.Compare(a.Name, b.Name) },
	ColumnIngredients: func(a, b models.Product) int { return cmp.Compare(a.Ingredients, b.Ingredients) },
	ColumnArea:        func(a, b models.Product) int { return cmp.Compare(a.Area, b.Area) },
	ColumnDateAdded:   func(a, b models.Product) int { return a.DateAdded.Compare(b.DateAdded) },
}

// Apply evaluates spec against products, which must be in storage order.
// It mirrors the SQL the Postgres store generates.
func Apply(products []models.Product, spec Spec) ([]models.Product, error) {
	matchers := make([]func(models.Product) bool, 0, len(spec.Filters)+1)

	if spec.Term != "" {
		pattern := "%" + spec.Term + "%"
		matchers = append(matchers, func(p models.Product) bool {
			return ILike(p.Name, pattern) || ILike(p.Ingredients, pattern)
		})
	}

	for _, f := range spec.Filters {
		m, err := filterMatcher(f)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}

	var cmps []func(a, b models.Product) int
	for _, s := range spec.Sorts {
		c, ok := comparators[s.Column]
		if !ok {
			return nil, fmt.Errorf("sort on %s: %w", s.Column, common.ErrInvalidColumn)
		}
		if s.Direction == Desc {
			asc := c
			c = func(a, b models.Product) int { return asc(b, a) }
		}
		cmps = append(cmps, c)
	}

	out := make([]models.Product, 0, len(products))
outer:
	for _, p := range products {
		for _, m := range matchers {
			if !m(p) {
				continue outer
			}
		}
		out = append(out, p)
	}

	if len(cmps) > 0 {
		slices.SortStableFunc(out, func(a, b models.Product) int {
			for _, c := range cmps {
				if r := c(a, b); r != 0 {
					return r
				}
			}
			return cmp.Compare(a.ID, b.ID)
		})
	}
	return out, nil
}

func filterMatcher(f Filter) (func(models.Product) bool, error) {
	if !IsFilterColumn(f.Column) {
		return nil, fmt.Errorf("filter on %s: %w", f.Column, common.ErrInvalidColumn)
	}
	if f.Column == ColumnUserID {
		id, err := strconv.Atoi(f.Value)
		if err != nil {
			return func(models.Product) bool { return false }, nil
		}
		return func(p models.Product) bool { return p.UserID == id }, nil
	}
	field := textFields[f.Column]
	return func(p models.Product) bool { return ILike(field(p), f.Value) }, nil
}

// patternToken is one element of a compiled ILIKE pattern: a wildcard
// ('%' or '_') or a literal rune.
type patternToken struct {
	wild rune
	lit  rune
}

// compilePattern applies the default LIKE escape: a backslash makes the next
// rune literal. A trailing lone backslash is a literal backslash.
func compilePattern(pattern string) []patternToken {
	rs := []rune(pattern)
	toks := make([]patternToken, 0, len(rs))
	for i := 0; i < len(rs); i++ {
		switch c := rs[i]; c {
		case '\\':
			if i+1 < len(rs) {
				i++
				toks = append(toks, patternToken{lit: rs[i]})
			} else {
				toks = append(toks, patternToken{lit: c})
			}
		case '%', '_':
			toks = append(toks, patternToken{wild: c})
		default:
			toks = append(toks, patternToken{lit: c})
		}
	}
	return toks
}

// ILike reports whether s matches the SQL ILIKE pattern, where % matches any
// run of characters, _ matches exactly one and a backslash escapes the next
// rune. Matching ignores case.
func ILike(s, pattern string) bool {
	str := []rune(s)
	pat := compilePattern(pattern)

	// prev[j] holds whether pat[:i] matches str[:j] for the previous i.
	prev := make([]bool, len(str)+1)
	cur := make([]bool, len(str)+1)
	prev[0] = true
	for i := 1; i <= len(pat); i++ {
		pt := pat[i-1]
		cur[0] = prev[0] && pt.wild == '%'
		for j := 1; j <= len(str); j++ {
			switch pt.wild {
			case '%':
				cur[j] = prev[j] || cur[j-1]
			case '_':
				cur[j] = prev[j-1]
			default:
				cur[j] = prev[j-1] && foldEqual(pt.lit, str[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(str)]
}

func foldEqual(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}
