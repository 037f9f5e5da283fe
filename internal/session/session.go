// Package session turns bearer credentials into an authenticated Identity or
// an explicit Anonymous session. Resolution never fails: a missing, malformed,
// expired or orphaned token is simply Anonymous.
package session

import "context"

// Identity is the authenticated user behind a session.
type Identity struct {
	UserID   int
	Username string
}

// Session is either an Identity or Anonymous. The zero value is Anonymous.
type Session struct {
	identity *Identity
}

// Anonymous returns the session of a caller without valid credentials.
func Anonymous() Session {
	return Session{}
}

// Authenticated returns a session for id.
func Authenticated(id Identity) Session {
	return Session{identity: &id}
}

// Identity returns the session's identity and true, or false when Anonymous.
func (s Session) Identity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// IsAnonymous reports whether the session carries no identity.
func (s Session) IsAnonymous() bool {
	return s.identity == nil
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}
