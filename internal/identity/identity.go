// Package identity turns inbound request credentials (session cookies or
// bearer token secrets) into a resolved user plus an authority scope.
package identity

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/models"
	"github.com/b1naryth1ef/heracles/internal/security"
)

// Scope is the authority level of a resolved identity for one request.
type Scope int

const (
	// ScopeFull allows the whole API surface.
	ScopeFull Scope = iota
	// ScopeValidateOnly allows only realm validation.
	ScopeValidateOnly
)

// ErrUnauthenticated is returned whenever a credential is missing, invalid,
// or no longer live. Callers render it as a bare 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is a resolved principal together with its scope.
type Identity struct {
	User  models.User
	Scope Scope

	// SessionID is set when the identity came from a session cookie, so
	// that logout can revoke the exact session.
	SessionID string
}

// Resolver resolves request credentials against the session and token
// collections.
type Resolver struct {
	conn    *gorm.DB
	session config.SessionConfig
}

// NewResolver constructs a Resolver.
func NewResolver(conn *gorm.DB, session config.SessionConfig) *Resolver {
	return &Resolver{conn: conn, session: session}
}

// ResolveBearer resolves a bearer token secret. An optional "Bearer "
// prefix is accepted. Tokens without the API flag resolve with
// ScopeValidateOnly.
func (r *Resolver) ResolveBearer(ctx context.Context, raw string) (*Identity, error) {
	secret := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if secret == "" {
		return nil, ErrUnauthenticated
	}

	var token models.Token
	if err := r.conn.WithContext(ctx).Where("secret = ?", secret).First(&token).Error; err != nil {
		return nil, ErrUnauthenticated
	}

	var user models.User
	if err := r.conn.WithContext(ctx).First(&user, token.UserID).Error; err != nil {
		return nil, ErrUnauthenticated
	}

	scope := ScopeValidateOnly
	if token.CanAccessAPI() {
		scope = ScopeFull
	}
	return &Identity{User: user, Scope: scope}, nil
}

// ResolveCookie resolves a signed session cookie value. Sessions always
// carry full scope; inactive sessions fail.
func (r *Resolver) ResolveCookie(ctx context.Context, cookieValue string) (*Identity, error) {
	sessionID, err := security.ParseSessionToken(r.session.Secret, cookieValue)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	var session models.Session
	if err := r.conn.WithContext(ctx).
		Where("session_id = ? AND active = ?", sessionID, true).
		First(&session).Error; err != nil {
		return nil, ErrUnauthenticated
	}

	var user models.User
	if err := r.conn.WithContext(ctx).First(&user, session.UserID).Error; err != nil {
		return nil, ErrUnauthenticated
	}

	return &Identity{User: user, Scope: ScopeFull, SessionID: session.SessionID}, nil
}
