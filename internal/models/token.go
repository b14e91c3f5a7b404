package models

import "time"

// Token flag bits.
const (
	// TokenFlagAPI marks a token that may access the full heracles API.
	// Tokens without it can only hit the realm validation endpoint.
	TokenFlagAPI Bits = 1 << iota
)

// Token is a long-lived bearer credential owned by a user. The secret is
// generated once at creation and never rotated.
type Token struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint64 `gorm:"not null;index" json:"-"`

	Name   string `gorm:"type:text;not null" json:"name"`
	Secret string `gorm:"type:text;not null;uniqueIndex" json:"token"`
	Flags  Bits   `gorm:"not null;default:0" json:"flags"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}

// CanAccessAPI reports whether the token grants full API access.
func (t *Token) CanAccessAPI() bool {
	return t.Flags.Has(TokenFlagAPI)
}
