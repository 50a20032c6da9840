package models

import "time"

// AuditEntry records one registry mutation or control-state transition.
type AuditEntry struct {
	ID        uint   `gorm:"primaryKey"`
	Actor     string `gorm:"size:128;not null"`
	Action    string `gorm:"size:64;index;not null"`
	Resource  string `gorm:"size:191"`
	Detail    string `gorm:"size:1024"`
	PrevState bool
	NewState  bool
	CreatedAt time.Time `gorm:"index"`
}
