package services

import (
	"homeguard/backend/app/models"
	"homeguard/backend/app/repo"
)

type AuditService struct{ audit *repo.AuditRepository }

func NewAuditService(audit *repo.AuditRepository) *AuditService { return &AuditService{audit: audit} }

func (s *AuditService) Recent(limit int) ([]models.AuditEntry, error) {
	return s.audit.Recent(limit)
}
