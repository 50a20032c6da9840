package repo

import (
	"errors"

	"homeguard/backend/app/models"

	"gorm.io/gorm"
)

type ControlStateRepository struct{ db *gorm.DB }

func NewControlStateRepository(db *gorm.DB) *ControlStateRepository {
	return &ControlStateRepository{db: db}
}

// Load returns the single control-state row, creating the inactive default
// on first use.
func (r *ControlStateRepository) Load() (*models.ControlState, error) {
	var st models.ControlState
	err := r.db.First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		st = models.ControlState{Active: false}
		if err := r.db.Create(&st).Error; err != nil {
			return nil, err
		}
		return &st, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *ControlStateRepository) Save(st *models.ControlState) error {
	return r.db.Save(st).Error
}
