package products

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/product-catalog/cmd/catalog/output"
	"github.com/crucial707/product-catalog/cmd/catalog/root"
	"github.com/crucial707/product-catalog/internal/models"
)

// openApp is replaced in tests.
var openApp = root.OpenApp

func init() {
	root.RootCmd.AddCommand(productsCmd())
}

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and search the catalog",
	}
	cmd.AddCommand(listProductsCmd(), searchProductsCmd())
	return cmd
}

// ==========================
// LIST
// ==========================
func listProductsCmd() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products in storage order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			products, err := a.Service.List(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}
			renderProducts(cmd, products)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Number of products to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of products (default 100)")
	return cmd
}

// ==========================
// SEARCH
// ==========================
func searchProductsCmd() *cobra.Command {
	var term, userID, area, region, orderBy, direction string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search products by text, owner, area and region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := map[string]string{}
			if userID != "" {
				filters["user_id"] = userID
			}
			if area != "" {
				filters["area"] = area
			}
			if region != "" {
				filters["region"] = region
			}
			var sorts map[string]string
			if orderBy != "" {
				sorts = map[string]string{orderBy: direction}
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			products, err := a.Service.Search(cmd.Context(), term, filters, sorts)
			if err != nil {
				return err
			}
			renderProducts(cmd, products)
			return nil
		},
	}

	cmd.Flags().StringVarP(&term, "query", "q", "", "Text matched against name and ingredients")
	cmd.Flags().StringVar(&userID, "user-id", "", "Owner id")
	cmd.Flags().StringVar(&area, "area", "", "Area pattern")
	cmd.Flags().StringVar(&region, "region", "", "Region pattern")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "Sort key: name, ingredients, area or date_added")
	cmd.Flags().StringVar(&direction, "direction", "asc", "Sort direction: asc or desc")
	return cmd
}

func renderProducts(cmd *cobra.Command, products []models.Product) {
	if len(products) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no products")
		return
	}
	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, []interface{}{
			p.ID, p.Name, p.Area, p.Regions, p.Ingredients,
			p.DateAdded.UTC().Format("2006-01-02 15:04"), p.UserID,
		})
	}
	output.RenderTable(cmd.OutOrStdout(),
		[]string{"ID", "Name", "Area", "Regions", "Ingredients", "Added", "Owner"}, rows)
}
