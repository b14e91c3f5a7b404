package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/models"
	"github.com/b1naryth1ef/heracles/internal/security"
)

// TokenHandler manages long-lived bearer tokens.
type TokenHandler struct {
	db *gorm.DB
}

// NewTokenHandler constructs a TokenHandler.
func NewTokenHandler(db *gorm.DB) *TokenHandler {
	return &TokenHandler{db: db}
}

// List returns the caller's tokens, secrets included.
func (h *TokenHandler) List(c *gin.Context) {
	ident := CurrentIdentity(c)

	var rows []models.Token
	errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", ident.User.ID).
		Order("id ASC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tokens failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": rows})
}

// createTokenRequest defines the request body for token creation.
type createTokenRequest struct {
	Name         string  `json:"name" form:"name"`
	UserID       *uint64 `json:"user_id" form:"user_id"`
	CanAccessAPI *bool   `json:"can_access_api" form:"can_access_api"`
}

// Create issues a new token for the caller, or for another user when the
// caller is an admin. Tokens default to full API access; passing
// can_access_api=false produces a validate-only token.
func (h *TokenHandler) Create(c *gin.Context) {
	var body createTokenRequest
	if errBind := c.ShouldBind(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	ident := CurrentIdentity(c)
	owner := ident.User

	if body.UserID != nil && *body.UserID != ident.User.ID {
		if !ident.User.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot create tokens for another user"})
			return
		}
		if errFind := h.db.WithContext(c.Request.Context()).First(&owner, *body.UserID).Error; errFind != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown user"})
			return
		}
	}

	flags := models.Bits(0).Set(models.TokenFlagAPI)
	if body.CanAccessAPI != nil && !*body.CanAccessAPI {
		flags = flags.Clear(models.TokenFlagAPI)
	}

	secret, errGenerate := security.GenerateTokenSecret()
	if errGenerate != nil {
		log.WithError(errGenerate).Error("failed to generate token secret")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate token failed"})
		return
	}

	token := models.Token{
		UserID: owner.ID,
		Name:   name,
		Secret: secret,
		Flags:  flags,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&token).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create token failed"})
		return
	}

	c.JSON(http.StatusOK, token)
}

// patchTokenRequest defines the request body for token updates. Only the
// name can change; secrets are never rotated.
type patchTokenRequest struct {
	Name *string `json:"name" form:"name"`
}

// Patch renames a token. Only the owner or an admin may do so.
func (h *TokenHandler) Patch(c *gin.Context) {
	token, ok := h.loadToken(c)
	if !ok {
		return
	}

	var body patchTokenRequest
	if errBind := c.ShouldBind(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if body.Name != nil {
		token.Name = *body.Name
		errSave := h.db.WithContext(c.Request.Context()).
			Model(&models.Token{}).
			Where("id = ?", token.ID).
			Update("name", token.Name).Error
		if errSave != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update token failed"})
			return
		}
	}

	c.JSON(http.StatusOK, token)
}

// Delete removes a token. Only the owner or an admin may do so; deleting
// an already-deleted token is a 404.
func (h *TokenHandler) Delete(c *gin.Context) {
	token, ok := h.loadToken(c)
	if !ok {
		return
	}

	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Token{}, token.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete token failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// loadToken fetches the token in the path and enforces the owner-or-admin
// rule, writing the error response itself when the check fails.
func (h *TokenHandler) loadToken(c *gin.Context) (*models.Token, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token id"})
		return nil, false
	}

	var token models.Token
	if errFind := h.db.WithContext(c.Request.Context()).First(&token, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "find token failed"})
		return nil, false
	}

	ident := CurrentIdentity(c)
	if token.UserID != ident.User.ID && !ident.User.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}

	return &token, true
}
