package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/models"
	"github.com/crucial707/product-catalog/internal/session"
)

// CreateProduct stores a new product owned by the session's user. The owner in
// f is ignored; a zero DateAdded becomes now.
func (s *Service) CreateProduct(ctx context.Context, sess session.Session, f models.ProductFields) (*models.Product, error) {
	id, ok := sess.Identity()
	if !ok {
		return nil, common.ErrUnauthorized
	}
	if strings.TrimSpace(f.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", common.ErrInvalid)
	}

	f.UserID = id.UserID
	if f.DateAdded.IsZero() {
		f.DateAdded = s.now()
	}

	var created *models.Product
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		var err error
		created, err = tx.CreateProduct(ctx, f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.InfoContext(ctx, "product created", "product_id", created.ID, "user_id", id.UserID)
	return created, nil
}

// UpdateProduct replaces every field of the product with patch. Only the
// owner may update, and the owner in patch must stay the same. The ownership
// gate runs before patch validation, so non-owners get common.ErrForbidden
// whatever they send.
//
// Replacement is total: a field left empty in patch is stored empty. Callers
// must send the complete current field set.
func (s *Service) UpdateProduct(ctx context.Context, productID int, sess session.Session, patch models.ProductFields) (*models.Product, error) {
	id, ok := sess.Identity()
	if !ok {
		return nil, common.ErrUnauthorized
	}

	var updated *models.Product
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		current, err := tx.GetProductByID(ctx, productID)
		if err != nil {
			return err
		}
		if current.UserID != id.UserID {
			return common.ErrForbidden
		}
		if strings.TrimSpace(patch.Name) == "" {
			return fmt.Errorf("name is required: %w", common.ErrInvalid)
		}
		if patch.UserID == 0 || patch.DateAdded.IsZero() {
			return fmt.Errorf("user_id and date_added are required: %w", common.ErrInvalid)
		}
		if patch.UserID != current.UserID {
			return fmt.Errorf("ownership cannot be transferred: %w", common.ErrForbidden)
		}
		updated, err = tx.UpdateProduct(ctx, productID, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "product updated", "product_id", productID, "user_id", id.UserID)
	return updated, nil
}
