package services

import (
	"errors"
	"fmt"

	"homeguard/backend/app/dto"
	"homeguard/backend/app/models"
	"homeguard/backend/app/repo"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistryService owns the device table. Every mutation validates, persists
// and appends one audit entry before returning.
type RegistryService struct {
	devices *repo.DeviceRepository
	audit   *repo.AuditRepository
}

func NewRegistryService(devices *repo.DeviceRepository, audit *repo.AuditRepository) *RegistryService {
	return &RegistryService{devices: devices, audit: audit}
}

func (s *RegistryService) Add(actor string, req dto.DeviceCreateRequest) (*models.Device, error) {
	name, err := CleanDeviceName(req.Name)
	if err != nil {
		return nil, err
	}
	mac, err := NormalizeMAC(req.MAC)
	if err != nil {
		return nil, err
	}
	count, err := s.devices.CountEnabledByMAC(mac, "")
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: MAC %s already used by an enabled device", ErrValidation, mac)
	}

	d := &models.Device{
		UUID:    uuid.NewString(),
		Name:    name,
		MAC:     mac,
		Enabled: true,
		Notes:   req.Notes,
	}
	if err := s.devices.Create(d); err != nil {
		return nil, err
	}
	if err := s.audit.Append(&models.AuditEntry{
		Actor:    actor,
		Action:   "device.add",
		Resource: d.UUID,
		Detail:   fmt.Sprintf("%s (%s)", d.Name, d.MAC),
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *RegistryService) Update(actor, id string, req dto.DeviceUpdateRequest) (*models.Device, error) {
	d, err := s.devices.FindByUUID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: device %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := CleanDeviceName(*req.Name)
		if err != nil {
			return nil, err
		}
		d.Name = name
	}
	if req.MAC != nil {
		mac, err := NormalizeMAC(*req.MAC)
		if err != nil {
			return nil, err
		}
		d.MAC = mac
	}
	if req.Enabled != nil {
		d.Enabled = *req.Enabled
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}

	// Uniqueness among enabled devices is re-checked whenever the device
	// ends up enabled, whether the MAC or the flag changed.
	if d.Enabled {
		count, err := s.devices.CountEnabledByMAC(d.MAC, d.UUID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: MAC %s already used by an enabled device", ErrValidation, d.MAC)
		}
	}

	if err := s.devices.Save(d); err != nil {
		return nil, err
	}
	if err := s.audit.Append(&models.AuditEntry{
		Actor:    actor,
		Action:   "device.update",
		Resource: d.UUID,
		Detail:   fmt.Sprintf("%s (%s) enabled=%v", d.Name, d.MAC, d.Enabled),
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *RegistryService) Delete(actor, id string) error {
	d, err := s.devices.FindByUUID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: device %s", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if err := s.devices.DeleteByUUID(id); err != nil {
		return err
	}
	return s.audit.Append(&models.AuditEntry{
		Actor:    actor,
		Action:   "device.delete",
		Resource: d.UUID,
		Detail:   fmt.Sprintf("%s (%s)", d.Name, d.MAC),
	})
}

func (s *RegistryService) Get(id string) (*models.Device, error) {
	d, err := s.devices.FindByUUID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: device %s", ErrNotFound, id)
	}
	return d, err
}

func (s *RegistryService) List() ([]models.Device, error) { return s.devices.ListAll() }

func (s *RegistryService) Count() (int64, error) { return s.devices.Count() }

// EnabledMACs feeds target computation; always read fresh, never cached.
func (s *RegistryService) EnabledMACs() ([]string, error) {
	devices, err := s.devices.ListEnabled()
	if err != nil {
		return nil, err
	}
	macs := make([]string, 0, len(devices))
	for _, d := range devices {
		macs = append(macs, d.MAC)
	}
	return macs, nil
}
