// Package catalog holds the product catalog's business operations: account
// signup and login, product search, and owner-only product mutation.
package catalog

import (
	"context"

	"github.com/crucial707/product-catalog/internal/models"
	"github.com/crucial707/product-catalog/internal/query"
)

// Store is the persistence gateway the catalog runs on.
//
// Lookups of absent rows return common.ErrNotFound; CreateUser returns
// common.ErrConflict when the username is taken.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateProduct(ctx context.Context, f models.ProductFields) (*models.Product, error)
	GetProductByID(ctx context.Context, id int) (*models.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]models.Product, error)
	SearchProducts(ctx context.Context, spec query.Spec) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id int, f models.ProductFields) (*models.Product, error)

	// WithTx runs fn against a Store bound to a single transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
