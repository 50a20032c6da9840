package repo

import (
	"homeguard/backend/app/models"

	"gorm.io/gorm"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Append(e *models.AuditEntry) error { return r.db.Create(e).Error }

func (r *AuditRepository) Recent(limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.AuditEntry
	err := r.db.Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
