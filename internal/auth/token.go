package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is the single kind callers outside this package should test for.
	ErrInvalidToken = errors.New("invalid token")

	ErrMalformed        = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrExpired          = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims is the payload of a session token. Subject holds the username.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret. A nil clock means time.Now.
func NewTokenService(secret []byte, clock func() time.Time) *TokenService {
	if clock == nil {
		clock = time.Now
	}
	return &TokenService{secret: secret, now: clock}
}

// Issue signs a token for subject that expires ttl from now.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// Errors are ErrMalformed, ErrInvalidSignature or ErrExpired.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, ErrInvalidSignature
	default:
		return nil, ErrMalformed
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}
