package catalog

import (
	"log/slog"
	"time"
)

const (
	// DefaultTokenTTL is the lifetime of a login session.
	DefaultTokenTTL = 30 * time.Minute
	// DefaultListLimit bounds the unfiltered listing when the caller gives no limit.
	DefaultListLimit = 100
	// MaxListLimit caps any caller-supplied listing limit.
	MaxListLimit = 1000
)

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	HashPassword(plaintext string) (string, error)
	CheckPassword(plaintext, digest string) bool
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, time.Time, error)
}

// Options configures a Service. Zero values take the defaults above.
type Options struct {
	TokenTTL time.Duration
	Clock    func() time.Time
	Logger   *slog.Logger
}

// Service implements catalog operations on top of a Store.
type Service struct {
	store    Store
	hasher   PasswordHasher
	tokens   TokenIssuer
	tokenTTL time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewService wires a Service. Every dependency is explicit; there is no package state.
func NewService(store Store, hasher PasswordHasher, tokens TokenIssuer, opts Options) *Service {
	s := &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: opts.TokenTTL,
		now:      opts.Clock,
		log:      opts.Logger,
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = DefaultTokenTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}
