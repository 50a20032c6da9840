package models

import "time"

// Device is one managed endpoint in the blocking set. MAC is stored in
// canonical form (uppercase, colon-separated) and must be unique among
// enabled devices.
type Device struct {
	ID        uint   `gorm:"primaryKey"`
	UUID      string `gorm:"uniqueIndex;size:191;not null"`
	Name      string `gorm:"size:255;not null"`
	MAC       string `gorm:"size:17;index;not null"`
	Enabled   bool   `gorm:"not null;default:true"`
	Notes     string `gorm:"size:1024"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
