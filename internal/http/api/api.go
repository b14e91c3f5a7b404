// Package api wires the heracles HTTP surface: route registration and the
// authentication/scope middleware chain.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/http/api/handlers"
	"github.com/b1naryth1ef/heracles/internal/identity"
)

// NewRouter builds the gin engine with all heracles routes registered.
func NewRouter(conn *gorm.DB, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, conn, cfg)
	return r
}

// RegisterRoutes registers routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, conn *gorm.DB, cfg config.Config) {
	resolver := identity.NewResolver(conn, cfg.Session)

	authHandler := handlers.NewAuthHandler(conn, cfg)
	r.POST("/login", authHandler.Login)

	oauthHandler := handlers.NewOAuthHandler(conn, cfg)
	r.GET("/login/:provider", oauthHandler.Begin)
	r.GET("/login/:provider/callback", oauthHandler.Callback)

	r.POST("/logout", authMiddleware(resolver), authHandler.Logout)

	apiGroup := r.Group("/api")
	apiGroup.Use(authMiddleware(resolver))

	// Realm validation is the one operation reachable with a
	// validate-only token; everything else requires full scope.
	apiGroup.GET("/validate", authHandler.Validate)

	full := apiGroup.Group("")
	full.Use(requireFullScope())

	identityHandler := handlers.NewIdentityHandler(conn, cfg)
	full.GET("/identity", identityHandler.Get)
	full.PATCH("/identity", identityHandler.Patch)

	tokenHandler := handlers.NewTokenHandler(conn)
	full.GET("/tokens", tokenHandler.List)
	full.POST("/tokens", tokenHandler.Create)
	full.PATCH("/tokens/:id", tokenHandler.Patch)
	full.DELETE("/tokens/:id", tokenHandler.Delete)

	admin := full.Group("")
	admin.Use(requireAdmin())

	userHandler := handlers.NewUserHandler(conn, cfg)
	admin.POST("/users", userHandler.Create)
	admin.GET("/users", userHandler.List)

	realmHandler := handlers.NewRealmHandler(conn)
	admin.GET("/realms", realmHandler.List)
	admin.POST("/realms", realmHandler.Create)
	admin.POST("/realms/:id/grants", realmHandler.CreateGrant)
}

// authMiddleware resolves the request credential into an identity. A
// bearer Authorization header wins over the session cookie; requests with
// neither, or with a dead credential, end here with a bare 401.
func authMiddleware(resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			ident *identity.Identity
			err   error
		)

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			ident, err = resolver.ResolveBearer(c.Request.Context(), authHeader)
		} else if cookieValue, errCookie := c.Cookie(handlers.AuthCookieName); errCookie == nil {
			ident, err = resolver.ResolveCookie(c.Request.Context(), cookieValue)
		} else {
			err = identity.ErrUnauthenticated
		}

		if err != nil || ident == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(handlers.IdentityContextKey, ident)
		c.Next()
	}
}

// requireFullScope rejects validate-only identities. The denial is the
// same bare 401 as a failed resolution so the gate leaks nothing.
func requireFullScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := handlers.CurrentIdentity(c)
		if ident == nil || ident.Scope != identity.ScopeFull {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

// requireAdmin rejects non-admin identities.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := handlers.CurrentIdentity(c)
		if ident == nil || !ident.User.IsAdmin {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
