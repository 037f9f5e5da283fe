package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/crucial707/product-catalog/internal/auth"
	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/models"
)

// TokenVerifier checks a raw session token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserLookup finds users by username. Absent users yield common.ErrNotFound.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Outcome labels how a credential was resolved, for logging and metrics.
type Outcome string

const (
	OutcomeAuthenticated Outcome = "authenticated"
	OutcomeMissing       Outcome = "missing"
	OutcomeInvalid       Outcome = "invalid"
	OutcomeUnknownUser   Outcome = "unknown_user"
	OutcomeLookupError   Outcome = "lookup_error"
)

// Resolver resolves "Bearer <token>" credentials.
type Resolver struct {
	tokens TokenVerifier
	users  UserLookup
	log    *slog.Logger
}

// NewResolver returns a Resolver. A nil logger uses slog.Default.
func NewResolver(tokens TokenVerifier, users UserLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{tokens: tokens, users: users, log: logger}
}

// Resolve returns the session for credential, which must have the form
// "Bearer <token>". It never fails.
func (r *Resolver) Resolve(ctx context.Context, credential string) Session {
	s, _ := r.ResolveOutcome(ctx, credential)
	return s
}

// ResolveOutcome is Resolve that also reports why the session is what it is.
func (r *Resolver) ResolveOutcome(ctx context.Context, credential string) (Session, Outcome) {
	token, ok := ParseBearer(credential)
	if !ok {
		return Anonymous(), OutcomeMissing
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		r.log.DebugContext(ctx, "session token rejected", "reason", err)
		return Anonymous(), OutcomeInvalid
	}

	user, err := r.users.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			r.log.DebugContext(ctx, "session subject has no account", "username", claims.Subject)
			return Anonymous(), OutcomeUnknownUser
		}
		r.log.WarnContext(ctx, "session user lookup failed", "username", claims.Subject, "error", err)
		return Anonymous(), OutcomeLookupError
	}

	return Authenticated(Identity{UserID: user.ID, Username: user.Username}), OutcomeAuthenticated
}

// ParseBearer extracts the token from "Bearer <token>". The scheme is matched
// case-insensitively; anything else is rejected.
func ParseBearer(credential string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(credential), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
