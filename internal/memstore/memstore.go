// Package memstore is an in-process catalog.Store. It evaluates searches with
// query.Apply, so results match the Postgres store for the same data.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/crucial707/product-catalog/internal/catalog"
	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/models"
	"github.com/crucial707/product-catalog/internal/query"
)

// Store keeps users and products in memory. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	d  *data
}

var _ catalog.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{d: &data{}}
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.createUser(username, passwordHash)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.d.userByUsername(username)
}

func (s *Store) CreateProduct(ctx context.Context, f models.ProductFields) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.createProduct(f)
}

func (s *Store) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.d.productByID(id)
}

func (s *Store) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.d.list(offset, limit), nil
}

func (s *Store) SearchProducts(ctx context.Context, spec query.Spec) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.Apply(s.d.products, spec)
}

func (s *Store) UpdateProduct(ctx context.Context, id int, f models.ProductFields) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.updateProduct(id, f)
}

// WithTx holds the write lock for the whole of fn and restores the previous
// state if fn fails or panics.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Store) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	defer func() {
		if p := recover(); p != nil {
			s.d = snapshot
			panic(p)
		}
		if err != nil {
			s.d = snapshot
		}
	}()

	return fn(ctx, &txStore{d: s.d})
}

// txStore is the view handed to WithTx callbacks. The enclosing Store's lock is held.
type txStore struct {
	d *data
}

func (t *txStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	return t.d.createUser(username, passwordHash)
}

func (t *txStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return t.d.userByUsername(username)
}

func (t *txStore) CreateProduct(ctx context.Context, f models.ProductFields) (*models.Product, error) {
	return t.d.createProduct(f)
}

func (t *txStore) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	return t.d.productByID(id)
}

func (t *txStore) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, error) {
	return t.d.list(offset, limit), nil
}

func (t *txStore) SearchProducts(ctx context.Context, spec query.Spec) ([]models.Product, error) {
	return query.Apply(t.d.products, spec)
}

func (t *txStore) UpdateProduct(ctx context.Context, id int, f models.ProductFields) (*models.Product, error) {
	return t.d.updateProduct(id, f)
}

func (t *txStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Store) error) error {
	return fn(ctx, t)
}

type data struct {
	users         []models.User
	products      []models.Product
	lastUserID    int
	lastProductID int
}

func (d *data) clone() *data {
	c := *d
	c.users = slices.Clone(d.users)
	c.products = slices.Clone(d.products)
	return &c
}

func (d *data) createUser(username, passwordHash string) (*models.User, error) {
	for _, u := range d.users {
		if u.Username == username {
			return nil, common.ErrConflict
		}
	}
	d.lastUserID++
	u := models.User{ID: d.lastUserID, Username: username, PasswordHash: passwordHash}
	d.users = append(d.users, u)
	return &u, nil
}

func (d *data) userByUsername(username string) (*models.User, error) {
	for _, u := range d.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (d *data) userExists(id int) bool {
	return slices.ContainsFunc(d.users, func(u models.User) bool { return u.ID == id })
}

func (d *data) createProduct(f models.ProductFields) (*models.Product, error) {
	if !d.userExists(f.UserID) {
		return nil, common.ErrNotFound
	}
	d.lastProductID++
	p := models.Product{ID: d.lastProductID}
	p.Apply(f)
	d.products = append(d.products, p)
	return &p, nil
}

func (d *data) productByID(id int) (*models.Product, error) {
	i := slices.IndexFunc(d.products, func(p models.Product) bool { return p.ID == id })
	if i < 0 {
		return nil, common.ErrNotFound
	}
	p := d.products[i]
	return &p, nil
}

func (d *data) updateProduct(id int, f models.ProductFields) (*models.Product, error) {
	i := slices.IndexFunc(d.products, func(p models.Product) bool { return p.ID == id })
	if i < 0 {
		return nil, common.ErrNotFound
	}
	if !d.userExists(f.UserID) {
		return nil, common.ErrNotFound
	}
	d.products[i].Apply(f)
	p := d.products[i]
	return &p, nil
}

func (d *data) list(offset, limit int) []models.Product {
	offset = max(offset, 0)
	if offset >= len(d.products) {
		return []models.Product{}
	}
	end := len(d.products)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return slices.Clone(d.products[offset:end])
}
