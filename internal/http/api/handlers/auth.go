package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/identity"
	"github.com/b1naryth1ef/heracles/internal/models"
)

// RealmHeader names the request header carrying the realm to validate.
const RealmHeader = "X-Heracles-Realm"

// UserHeader names the response header carrying the validated identity.
const UserHeader = "X-Heracles-User"

// badPasswordBody is the literal login failure body. Clients match on it,
// so it never varies, regardless of why the login failed.
const badPasswordBody = "Bad password\n"

// AuthHandler serves login, logout, and realm validation.
type AuthHandler struct {
	db  *gorm.DB
	cfg config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// loginRequest is accepted as JSON or form data.
type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login verifies a username/password pair and issues a session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBind(&body); errBind != nil {
		c.String(http.StatusBadRequest, badPasswordBody)
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Where("username = ?", body.Username).
		First(&user).Error
	if errFind != nil {
		c.String(http.StatusBadRequest, badPasswordBody)
		return
	}

	// Accounts without a password hash cannot log in with a password at
	// all (OAuth-provisioned users).
	if !user.HasPassword() || user.CheckPassword(body.Password) != nil {
		c.String(http.StatusBadRequest, badPasswordBody)
		return
	}

	cookieValue, errIssue := identity.IssueSession(c.Request.Context(), h.db, h.cfg.Session, user.ID)
	if errIssue != nil {
		log.WithError(errIssue).Error("failed to issue session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create session failed"})
		return
	}

	c.SetCookie(AuthCookieName, cookieValue, int(h.cfg.Session.Expiry.Seconds()), "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// Logout deactivates the caller's session and clears the cookie. Token
// callers have no session to revoke; they just get the cookie cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	ident := CurrentIdentity(c)
	if ident.SessionID != "" {
		if errRevoke := identity.RevokeSession(c.Request.Context(), h.db, ident.SessionID); errRevoke != nil {
			log.WithError(errRevoke).Error("failed to revoke session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
			return
		}
	}

	c.SetCookie(AuthCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// Validate checks whether the caller holds a grant on the realm named by
// the X-Heracles-Realm header. Unknown realms and missing grants collapse
// to the same denial so realm existence never leaks.
func (h *AuthHandler) Validate(c *gin.Context) {
	ident := CurrentIdentity(c)

	realmName := strings.TrimSpace(c.GetHeader(RealmHeader))
	if realmName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid realm"})
		return
	}

	var grant models.RealmGrant
	errFind := h.db.WithContext(c.Request.Context()).
		Joins("JOIN realms ON realms.id = realm_grants.realm_id").
		Where("realms.name = ? AND realm_grants.user_id = ?", realmName, ident.User.ID).
		First(&grant).Error
	if errFind != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	if grant.Alias != nil {
		c.Header(UserHeader, *grant.Alias)
	} else {
		c.Header(UserHeader, ident.User.Username)
	}
	c.Status(http.StatusNoContent)
}
