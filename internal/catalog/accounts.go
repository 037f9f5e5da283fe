package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/product-catalog/internal/auth"
	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/models"
)

// MaxUsernameLength matches the users.username column.
const MaxUsernameLength = 50

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// Signup creates an account. A taken username yields common.ErrConflict and
// never a second row. Passwords over auth.MaxPasswordBytes bytes are
// common.ErrInvalid.
func (s *Service) Signup(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" || utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, common.ErrInvalid
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, fmt.Errorf("password exceeds %d bytes: %w", auth.MaxPasswordBytes, common.ErrInvalid)
	}

	hash, err := s.hasher.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("hash password: %w", common.ErrInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *models.User
	err = s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		_, err := tx.GetUserByUsername(ctx, username)
		switch {
		case err == nil:
			return common.ErrConflict
		case !errors.Is(err, common.ErrNotFound):
			return fmt.Errorf("check username: %w", err)
		}
		created, err = tx.CreateUser(ctx, username, hash)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user signed up", "user_id", created.ID, "username", created.Username)
	u := created.Public()
	return &u, nil
}

// Login checks credentials and issues a session token. Unknown users and wrong
// passwords both yield common.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !s.hasher.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrUnauthorized
	}

	token, expires, err := s.tokens.Issue(user.Username, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{Token: token, ExpiresAt: expires, User: user.Public()}, nil
}
