package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/models"
)

// RealmHandler manages realms and realm grants. All routes are admin-only.
type RealmHandler struct {
	db *gorm.DB
}

// NewRealmHandler constructs a RealmHandler.
func NewRealmHandler(db *gorm.DB) *RealmHandler {
	return &RealmHandler{db: db}
}

// List returns all realms.
func (h *RealmHandler) List(c *gin.Context) {
	var rows []models.Realm
	if errFind := h.db.WithContext(c.Request.Context()).Order("id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list realms failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"realms": rows})
}

// createRealmRequest defines the request body for realm creation.
type createRealmRequest struct {
	Name string `json:"name" form:"name"`
}

// Create creates a new realm. Name uniqueness is enforced by the database.
func (h *RealmHandler) Create(c *gin.Context) {
	var body createRealmRequest
	if errBind := c.ShouldBind(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	realm := models.Realm{Name: name}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&realm).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "realm already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create realm failed"})
		return
	}

	c.JSON(http.StatusOK, realm)
}

// createGrantRequest defines the request body for grant creation.
type createGrantRequest struct {
	UserID uint64  `json:"user_id" form:"user_id"`
	Alias  *string `json:"alias" form:"alias"`
}

// CreateGrant grants a user access to the realm in the path. The composite
// unique index on (user, realm) makes concurrent duplicates impossible.
func (h *RealmHandler) CreateGrant(c *gin.Context) {
	realmID, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid realm id"})
		return
	}

	var body createGrantRequest
	if errBind := c.ShouldBind(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var realm models.Realm
	if errFind := h.db.WithContext(c.Request.Context()).First(&realm, realmID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "find realm failed"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, body.UserID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "find user failed"})
		return
	}

	grant := models.RealmGrant{
		UserID:  user.ID,
		RealmID: realm.ID,
		Alias:   body.Alias,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&grant).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "grant already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create grant failed"})
		return
	}

	c.JSON(http.StatusOK, grant)
}
