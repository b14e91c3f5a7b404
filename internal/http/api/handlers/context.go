package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/b1naryth1ef/heracles/internal/identity"
)

// IdentityContextKey is the gin context key under which the auth
// middleware stores the resolved identity.
const IdentityContextKey = "heracles.identity"

// AuthCookieName is the cookie carrying the signed session token.
const AuthCookieName = "heracles-auth"

// CurrentIdentity returns the identity resolved by the auth middleware.
func CurrentIdentity(c *gin.Context) *identity.Identity {
	value, ok := c.Get(IdentityContextKey)
	if !ok {
		return nil
	}
	ident, _ := value.(*identity.Identity)
	return ident
}
