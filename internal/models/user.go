package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents a principal that can authenticate against heracles.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Username string `gorm:"type:text;not null;uniqueIndex" json:"username"` // Unique login name, case-sensitive.
	Password string `gorm:"type:text;not null" json:"-"`                    // bcrypt hash; empty disables password login.
	IsAdmin  bool   `gorm:"not null;default:false" json:"is_admin"`

	GithubID  *int64 `gorm:"uniqueIndex" json:"-"` // Linked GitHub account, when present.
	DiscordID *int64 `gorm:"uniqueIndex" json:"-"` // Linked Discord account, when present.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}

// HasPassword reports whether password login is enabled for the user.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// CheckPassword verifies a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}
