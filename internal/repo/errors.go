package repo

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/crucial707/product-catalog/internal/common"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapError translates driver errors into the common sentinels and passes
// everything else through.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return common.ErrConflict
		case pqForeignKeyViolation:
			return common.ErrNotFound
		}
	}
	return err
}
