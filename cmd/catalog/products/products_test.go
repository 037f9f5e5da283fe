package products

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/product-catalog/internal/app"
	"github.com/crucial707/product-catalog/internal/config"
	"github.com/crucial707/product-catalog/internal/memstore"
	"github.com/crucial707/product-catalog/internal/models"
)

func seededApp(t *testing.T) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	u, err := store.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, f := range []models.ProductFields{
		{Name: "Tomato Soup", Area: "North", Regions: "Coast", Ingredients: "Tomato", DateAdded: when, UserID: u.ID},
		{Name: "Bread", Area: "South", Regions: "Plains", Ingredients: "Flour", DateAdded: when, UserID: u.ID},
		{Name: "Apple Pie", Area: "North", Regions: "Hills", Ingredients: "Apple", DateAdded: when, UserID: u.ID},
	} {
		_, err := store.CreateProduct(ctx, f)
		require.NoError(t, err)
	}

	cfg := config.Defaults()
	cfg.Store = "memory"
	a := app.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), store, nil)
	old := openApp
	openApp = func() (*app.App, error) { return a, nil }
	t.Cleanup(func() { openApp = old })
}

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestSearch_FilterAndSort(t *testing.T) {
	seededApp(t)

	out := run(t, searchProductsCmd(), "--area", "north", "--order-by", "name")
	assert.Contains(t, out, "Apple Pie")
	assert.Contains(t, out, "Tomato Soup")
	assert.NotContains(t, out, "Bread")
	assert.Less(t, strings.Index(out, "Apple Pie"), strings.Index(out, "Tomato Soup"))
}

func TestSearch_TermAndDescending(t *testing.T) {
	seededApp(t)

	out := run(t, searchProductsCmd(), "-q", "o", "--order-by", "name", "--direction", "desc")
	assert.Less(t, strings.Index(out, "Tomato Soup"), strings.Index(out, "Bread"))
}

func TestSearch_NoMatches(t *testing.T) {
	seededApp(t)

	out := run(t, searchProductsCmd(), "--user-id", "abc")
	assert.Equal(t, "no products\n", out)
}

func TestList_Paginates(t *testing.T) {
	seededApp(t)

	out := run(t, listProductsCmd(), "--offset", "1", "--limit", "1")
	assert.Contains(t, out, "Bread")
	assert.NotContains(t, out, "Tomato Soup")
	assert.NotContains(t, out, "Apple Pie")
}
