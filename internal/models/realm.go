package models

import "time"

// Realm is a named resource boundary for which access is independently
// granted. Realms are immutable once created.
type Realm struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:text;not null;uniqueIndex" json:"name"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
}
