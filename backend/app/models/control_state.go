package models

import "time"

// ControlState is the single persisted record of whether blocking is active.
// It reflects the last successfully applied enforcement state, never a
// merely requested one.
type ControlState struct {
	ID               uint `gorm:"primaryKey"`
	Active           bool `gorm:"not null;default:false"`
	LastChangeTime   time.Time
	LastChangeReason string `gorm:"size:512"`
	UpdatedAt        time.Time
}
