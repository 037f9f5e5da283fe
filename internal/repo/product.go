package repo

import (
	"context"

	"github.com/crucial707/product-catalog/internal/db"
	"github.com/crucial707/product-catalog/internal/models"
	"github.com/crucial707/product-catalog/internal/query"
)

// Nullable text columns come back as empty strings.
const productColumns = `id, name,
		COALESCE(description, '') AS description,
		COALESCE(area, '') AS area,
		COALESCE(regions, '') AS regions,
		COALESCE(ingredients, '') AS ingredients,
		date_added, user_id`

// ========================
// REPOSITORY STRUCT
// ========================

type ProductRepo struct {
	DB db.DBTX
}

func NewProductRepo(q db.DBTX) *ProductRepo {
	return &ProductRepo{DB: q}
}

// ========================
// CREATE PRODUCT
// ========================

func (r *ProductRepo) Create(ctx context.Context, f models.ProductFields) (*models.Product, error) {
	p := &models.Product{}
	err := r.DB.GetContext(ctx, p,
		`INSERT INTO products (name, description, area, regions, ingredients, date_added, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+productColumns,
		f.Name, f.Description, f.Area, f.Regions, f.Ingredients, f.DateAdded, f.UserID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// ========================
// GET PRODUCT BY ID
// ========================

func (r *ProductRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	p := &models.Product{}
	err := r.DB.GetContext(ctx, p,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// ========================
// UPDATE PRODUCT BY ID
// ========================

// UpdateByID overwrites every writable column.
func (r *ProductRepo) UpdateByID(ctx context.Context, id int, f models.ProductFields) (*models.Product, error) {
	p := &models.Product{}
	err := r.DB.GetContext(ctx, p,
		`UPDATE products
		 SET name = $1, description = $2, area = $3, regions = $4,
		     ingredients = $5, date_added = $6, user_id = $7
		 WHERE id = $8
		 RETURNING `+productColumns,
		f.Name, f.Description, f.Area, f.Regions, f.Ingredients, f.DateAdded, f.UserID, id,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// ========================
// LIST PRODUCTS WITH PAGINATION
// ========================

// ListPaginated returns products by id. A non-positive limit means no limit.
func (r *ProductRepo) ListPaginated(ctx context.Context, limit, offset int) ([]models.Product, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	products := []models.Product{}
	err := r.DB.SelectContext(ctx, &products,
		`SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2`,
		lim, offset,
	)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ========================
// SEARCH PRODUCTS
// ========================

func (r *ProductRepo) Search(ctx context.Context, spec query.Spec) ([]models.Product, error) {
	sqlText, args, err := BuildSearch(spec)
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := r.DB.SelectContext(ctx, &products, sqlText, args...); err != nil {
		return nil, err
	}
	return products, nil
}
