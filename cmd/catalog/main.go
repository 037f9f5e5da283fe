package main

import (
	"os"

	_ "github.com/crucial707/product-catalog/cmd/catalog/migrate"
	_ "github.com/crucial707/product-catalog/cmd/catalog/products"
	"github.com/crucial707/product-catalog/cmd/catalog/root"
	_ "github.com/crucial707/product-catalog/cmd/catalog/serve"
	_ "github.com/crucial707/product-catalog/cmd/catalog/users"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
