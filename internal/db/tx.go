package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX is the part of sqlx shared by *sqlx.DB and *sqlx.Tx that repositories use.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// WithTx begins a transaction, runs fn with it, and commits on success or
// rolls back on error or panic. Panics are rethrown.
func WithTx(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
