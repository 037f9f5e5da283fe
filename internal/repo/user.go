package repo

import (
	"context"

	"github.com/crucial707/product-catalog/internal/db"
	"github.com/crucial707/product-catalog/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB db.DBTX
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(q db.DBTX) *UserRepo {
	return &UserRepo{DB: q}
}

// ==========================
// Create User
// ==========================

// Create inserts a user. A taken username yields common.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (username, hashed_password)
		VALUES ($1, $2)
		RETURNING id, username, hashed_password
	`

	user := &models.User{}
	if err := r.DB.GetContext(ctx, user, query, username, passwordHash); err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// ==========================
// Get By Username
// ==========================

// GetByUsername matches the username exactly, case included.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, hashed_password
		FROM users
		WHERE username = $1
	`

	user := &models.User{}
	if err := r.DB.GetContext(ctx, user, query, username); err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// ==========================
// List Users
// ==========================
func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.DB.SelectContext(ctx, &users, `SELECT id, username, hashed_password FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return users, nil
}
