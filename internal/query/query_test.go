package query

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/models"
)

func TestParse_AllowList(t *testing.T) {
	spec := Parse("  soup ",
		map[string]string{"area": "Area1", "region": "Region1", "user_id": "3", "price": "10", "regions": "x"},
		map[string]string{"date_added": "desc", "name": "asc", "price": "asc"},
	)

	if spec.Term != "soup" {
		t.Errorf("term: got %q", spec.Term)
	}
	wantFilters := []Filter{
		{Column: ColumnUserID, Value: "3"},
		{Column: ColumnArea, Value: "Area1"},
		{Column: ColumnRegions, Value: "Region1"},
	}
	if !reflect.DeepEqual(spec.Filters, wantFilters) {
		t.Errorf("filters: got %+v want %+v", spec.Filters, wantFilters)
	}
	wantSorts := []Sort{
		{Column: ColumnName, Direction: Asc},
		{Column: ColumnDateAdded, Direction: Desc},
	}
	if !reflect.DeepEqual(spec.Sorts, wantSorts) {
		t.Errorf("sorts: got %+v want %+v", spec.Sorts, wantSorts)
	}
}

func TestParse_EmptyValuesIgnored(t *testing.T) {
	spec := Parse("", map[string]string{"area": ""}, nil)
	if !spec.Empty() {
		t.Fatalf("expected empty spec, got %+v", spec)
	}
}

func TestParseDirection(t *testing.T) {
	cases := map[string]Direction{"asc": Asc, "desc": Desc, "ASC": Desc, "": Desc, "up": Desc}
	for in, want := range cases {
		if got := ParseDirection(in); got != want {
			t.Errorf("ParseDirection(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestILike(t *testing.T) {
	cases := []struct {
		s, pattern string
		want       bool
	}{
		{"Area1", "area1", true},
		{"Area1", "Area", false},
		{"Area1", "Area%", true},
		{"Tomato Soup", "%SOUP%", true},
		{"Tomato Soup", "%soup", true},
		{"Tomato Soup", "%salad%", false},
		{"abc", "a_c", true},
		{"ac", "a_c", false},
		{"", "%", true},
		{"", "", true},
		{"x", "", false},
		{"Ärger", "ärger", true},
		{"50%", `50\%`, true},
		{"500", `50\%`, false},
		{"a_b", `a\_b`, true},
		{"axb", `a\_b`, false},
		{`a\b`, `a\\b`, true},
		{"ab", `a\b`, true},
		{`a\`, `a\`, true},
	}
	for _, c := range cases {
		if got := ILike(c.s, c.pattern); got != c.want {
			t.Errorf("ILike(%q, %q) = %v, want %v", c.s, c.pattern, got, c.want)
		}
	}
}

func TestParse_ClosesTrailingEscape(t *testing.T) {
	cases := map[string]string{
		`North`:    `North`,
		`North\`:   `North\\`,
		`North\\`:  `North\\`,
		`North\\\`: `North\\\\`,
	}
	for in, want := range cases {
		spec := Parse("", map[string]string{"area": in}, nil)
		if got := spec.Filters[0].Value; got != want {
			t.Errorf("Parse area %q: got %q, want %q", in, got, want)
		}
	}
}

func sampleProducts() []models.Product {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Product{
		{ID: 1, Name: "Test Product", Area: "Area1", Regions: "Region1", Ingredients: "Ingredient", DateAdded: t0, UserID: 1},
		{ID: 2, Name: "Another Product", Area: "Area2", Regions: "Region2", Ingredients: "Salt", DateAdded: t0.Add(time.Hour), UserID: 2},
		{ID: 3, Name: "Borscht", Area: "area1", Regions: "Region2", Ingredients: "Beetroot", DateAdded: t0.Add(2 * time.Hour), UserID: 1},
	}
}

func ids(ps []models.Product) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
		want []int
	}{
		{"empty spec keeps storage order", Spec{}, []int{1, 2, 3}},
		{"term matches name", Parse("product", nil, nil), []int{1, 2}},
		{"term matches ingredients", Parse("BEET", nil, nil), []int{3}},
		{"area is case-insensitive equality", Parse("", map[string]string{"area": "AREA1"}, nil), []int{1, 3}},
		{"area and region", Parse("", map[string]string{"area": "Area1", "region": "Region1"}, nil), []int{1}},
		{"user_id exact", Parse("", map[string]string{"user_id": "2"}, nil), []int{2}},
		{"user_id not a number", Parse("", map[string]string{"user_id": "abc"}, nil), []int{}},
		{"name asc", Parse("", nil, map[string]string{"name": "asc"}), []int{2, 3, 1}},
		{"date_added desc", Parse("", nil, map[string]string{"date_added": "desc"}), []int{3, 2, 1}},
		{"area asc ties by id", Parse("", nil, map[string]string{"area": "asc"}), []int{1, 2, 3}},
		{"no match", Parse("zzz", nil, nil), []int{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Apply(sampleProducts(), c.spec)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !reflect.DeepEqual(ids(got), c.want) {
				t.Errorf("got %v want %v", ids(got), c.want)
			}
		})
	}
}

func TestApply_InvalidColumn(t *testing.T) {
	_, err := Apply(sampleProducts(), Spec{Filters: []Filter{{Column: ColumnName, Value: "x"}}})
	if !errors.Is(err, common.ErrInvalidColumn) {
		t.Errorf("filter: expected ErrInvalidColumn, got %v", err)
	}
	_, err = Apply(sampleProducts(), Spec{Sorts: []Sort{{Column: ColumnUserID}}})
	if !errors.Is(err, common.ErrInvalidColumn) {
		t.Errorf("sort: expected ErrInvalidColumn, got %v", err)
	}
}
