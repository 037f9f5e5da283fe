package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/crucial707/product-catalog/internal/catalog"
	"github.com/crucial707/product-catalog/internal/db"
	"github.com/crucial707/product-catalog/internal/models"
	"github.com/crucial707/product-catalog/internal/query"
)

// Store is the Postgres catalog.Store.
type Store struct {
	*queries
	db *sqlx.DB
}

var _ catalog.Store = (*Store)(nil)

// NewStore wraps an open lib/pq connection pool.
func NewStore(conn *sql.DB) *Store {
	x := sqlx.NewDb(conn, "postgres")
	return &Store{queries: newQueries(x), db: x}
}

// WithTx runs fn inside one database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Store) error) error {
	return db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &txStore{queries: newQueries(tx)})
	})
}

type txStore struct {
	*queries
}

// WithTx on a transaction-bound store reuses the open transaction.
func (t *txStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Store) error) error {
	return fn(ctx, t)
}

// queries adapts the repos to the catalog.Store method set.
type queries struct {
	users    *UserRepo
	products *ProductRepo
}

func newQueries(q db.DBTX) *queries {
	return &queries{users: NewUserRepo(q), products: NewProductRepo(q)}
}

func (q *queries) Users() *UserRepo { return q.users }

func (q *queries) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	return q.users.Create(ctx, username, passwordHash)
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return q.users.GetByUsername(ctx, username)
}

func (q *queries) CreateProduct(ctx context.Context, f models.ProductFields) (*models.Product, error) {
	return q.products.Create(ctx, f)
}

func (q *queries) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	return q.products.GetByID(ctx, id)
}

func (q *queries) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, error) {
	return q.products.ListPaginated(ctx, limit, max(offset, 0))
}

func (q *queries) SearchProducts(ctx context.Context, spec query.Spec) ([]models.Product, error) {
	return q.products.Search(ctx, spec)
}

func (q *queries) UpdateProduct(ctx context.Context, id int, f models.ProductFields) (*models.Product, error) {
	return q.products.UpdateByID(ctx, id, f)
}
