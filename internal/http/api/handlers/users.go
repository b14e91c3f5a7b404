package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/config"
	dbutil "github.com/b1naryth1ef/heracles/internal/db"
	"github.com/b1naryth1ef/heracles/internal/models"
	"github.com/b1naryth1ef/heracles/internal/security"
)

// UserHandler manages user accounts. All routes are admin-only.
type UserHandler struct {
	db  *gorm.DB
	cfg config.Config
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB, cfg config.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// createUserRequest defines the request body for user creation.
type createUserRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	IsAdmin  bool   `json:"is_admin" form:"is_admin"`
}

// Create creates a new user account. Username uniqueness is enforced by
// the database, so concurrent duplicate creates leave one survivor.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBind(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	hash, errHash := security.HashPassword(body.Password, h.cfg.BcryptCost)
	if errHash != nil {
		log.WithError(errHash).Error("failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	user := models.User{
		Username: username,
		Password: hash,
		IsAdmin:  body.IsAdmin,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// List returns all users, optionally filtered by username substring.
func (h *UserHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if usernameQ := strings.TrimSpace(c.Query("username")); usernameQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+usernameQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "username"), pattern)
	}

	var rows []models.User
	if errFind := q.Order("id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": rows})
}
