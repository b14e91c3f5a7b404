package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/models"
	"github.com/b1naryth1ef/heracles/internal/security"
)

// Default credentials seeded into an empty database. The admin user is
// created first, so it always receives id 1.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

// Bootstrap seeds the default admin user when the users table is empty.
// Running it against an initialized database is a no-op.
func Bootstrap(conn *gorm.DB, cfg config.Config) error {
	var count int64
	if err := conn.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, errHash := security.HashPassword(DefaultAdminPassword, cfg.BcryptCost)
	if errHash != nil {
		return errHash
	}

	admin := models.User{
		Username: DefaultAdminUsername,
		Password: hash,
		IsAdmin:  true,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("create admin user: %w", errCreate)
	}

	log.WithField("username", DefaultAdminUsername).Info("bootstrapped database with default admin user")
	return nil
}
