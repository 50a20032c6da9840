package repo

import (
	"homeguard/backend/app/models"

	"gorm.io/gorm"
)

type DeviceRepository struct{ db *gorm.DB }

func NewDeviceRepository(db *gorm.DB) *DeviceRepository { return &DeviceRepository{db: db} }

func (r *DeviceRepository) Create(d *models.Device) error { return r.db.Create(d).Error }

func (r *DeviceRepository) Save(d *models.Device) error { return r.db.Save(d).Error }

func (r *DeviceRepository) FindByUUID(uuid string) (*models.Device, error) {
	var d models.Device
	if err := r.db.Where("uuid = ?", uuid).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeviceRepository) DeleteByUUID(uuid string) error {
	return r.db.Where("uuid = ?", uuid).Delete(&models.Device{}).Error
}

// ListAll returns devices in insertion order.
func (r *DeviceRepository) ListAll() ([]models.Device, error) {
	var devices []models.Device
	err := r.db.Order("id ASC").Find(&devices).Error
	return devices, err
}

func (r *DeviceRepository) ListEnabled() ([]models.Device, error) {
	var devices []models.Device
	err := r.db.Where("enabled = ?", true).Order("id ASC").Find(&devices).Error
	return devices, err
}

// CountEnabledByMAC counts enabled devices holding mac, excluding the device
// identified by excludeUUID (empty string excludes nothing).
func (r *DeviceRepository) CountEnabledByMAC(mac, excludeUUID string) (int64, error) {
	var count int64
	q := r.db.Model(&models.Device{}).Where("mac = ? AND enabled = ?", mac, true)
	if excludeUUID != "" {
		q = q.Where("uuid <> ?", excludeUUID)
	}
	return count, q.Count(&count).Error
}

func (r *DeviceRepository) Count() (int64, error) {
	var count int64
	return count, r.db.Model(&models.Device{}).Count(&count).Error
}
