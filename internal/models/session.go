package models

import "time"

// Session is a short-lived login credential created by a successful
// password login and destroyed by logout.
type Session struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	SessionID string `gorm:"type:text;not null;uniqueIndex"` // Opaque identifier carried inside the auth cookie.
	UserID    uint64 `gorm:"not null;index"`
	Active    bool   `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}
