package models

import "time"

// RealmGrant is an authorization edge from a user to a realm. At most one
// grant exists per (user, realm) pair; the unique index makes concurrent
// duplicate creation impossible.
type RealmGrant struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"-"`

	UserID  uint64 `gorm:"not null;uniqueIndex:idx_realm_grants_user_realm" json:"user_id"`
	RealmID uint64 `gorm:"not null;uniqueIndex:idx_realm_grants_user_realm" json:"realm_id"`

	Alias *string `gorm:"type:text" json:"alias"` // Caller-facing identity override, surfaced on validation.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
}
