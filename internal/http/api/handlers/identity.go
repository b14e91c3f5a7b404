package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/models"
	"github.com/b1naryth1ef/heracles/internal/security"
)

// IdentityHandler serves the current user's identity.
type IdentityHandler struct {
	db  *gorm.DB
	cfg config.Config
}

// NewIdentityHandler constructs an IdentityHandler.
func NewIdentityHandler(db *gorm.DB, cfg config.Config) *IdentityHandler {
	return &IdentityHandler{db: db, cfg: cfg}
}

// Get returns the resolved identity of the caller.
func (h *IdentityHandler) Get(c *gin.Context) {
	ident := CurrentIdentity(c)
	c.JSON(http.StatusOK, ident.User)
}

// patchIdentityRequest carries the self-service password change.
type patchIdentityRequest struct {
	Password string `json:"password" form:"password"`
}

// Patch updates the caller's own password. An empty password disables
// password login for the account. Existing sessions and tokens stay valid.
func (h *IdentityHandler) Patch(c *gin.Context) {
	var body patchIdentityRequest
	if errBind := c.ShouldBind(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ident := CurrentIdentity(c)

	var hash string
	if body.Password != "" {
		var errHash error
		hash, errHash = security.HashPassword(body.Password, h.cfg.BcryptCost)
		if errHash != nil {
			log.WithError(errHash).Error("failed to hash password")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
			return
		}
	}

	errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", ident.User.ID).
		Update("password", hash).Error
	if errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update password failed"})
		return
	}

	c.Status(http.StatusNoContent)
}
