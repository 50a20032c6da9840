package services

import (
	"errors"
	"path/filepath"
	"testing"

	"homeguard/backend/app/dto"
	"homeguard/backend/app/models"
	"homeguard/backend/app/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Device{}, &models.ControlState{}, &models.AuditEntry{}))
	return gdb
}

func newTestRegistry(t *testing.T) (*RegistryService, *repo.AuditRepository, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	auditRepo := repo.NewAuditRepository(gdb)
	return NewRegistryService(repo.NewDeviceRepository(gdb), auditRepo), auditRepo, gdb
}

func TestRegistryAddAndList(t *testing.T) {
	reg, audit, _ := newTestRegistry(t)

	d, err := reg.Add("tester", dto.DeviceCreateRequest{Name: "Kid Tablet", MAC: "aa-bb-cc-dd-ee-ff", Notes: "upstairs"})
	require.NoError(t, err)
	assert.NotEmpty(t, d.UUID)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", d.MAC)
	assert.True(t, d.Enabled)

	devices, err := reg.List()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", devices[0].MAC)

	entries, err := audit.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "device.add", entries[0].Action)
	assert.Equal(t, "tester", entries[0].Actor)
}

func TestRegistryListInsertionOrder(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	for i, mac := range []string{"AA:00:00:00:00:01", "AA:00:00:00:00:02", "AA:00:00:00:00:03"} {
		_, err := reg.Add("tester", dto.DeviceCreateRequest{Name: "dev", MAC: mac, Notes: ""})
		require.NoError(t, err, i)
	}
	devices, err := reg.List()
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, "AA:00:00:00:00:01", devices[0].MAC)
	assert.Equal(t, "AA:00:00:00:00:03", devices[2].MAC)
}

func TestRegistryRejectsDuplicateEnabledMAC(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.Add("tester", dto.DeviceCreateRequest{Name: "first", MAC: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)

	_, err = reg.Add("tester", dto.DeviceCreateRequest{Name: "second", MAC: "aa:bb:cc:dd:ee:ff"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRegistryAllowsDuplicateOfDisabledMAC(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	first, err := reg.Add("tester", dto.DeviceCreateRequest{Name: "first", MAC: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)

	disabled := false
	_, err = reg.Update("tester", first.UUID, dto.DeviceUpdateRequest{Enabled: &disabled})
	require.NoError(t, err)

	_, err = reg.Add("tester", dto.DeviceCreateRequest{Name: "second", MAC: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)
}

func TestRegistryUpdate(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	d, err := reg.Add("tester", dto.DeviceCreateRequest{Name: "first", MAC: "AA:BB:CC:DD:EE:FF", Notes: "upstairs"})
	require.NoError(t, err)

	name := "renamed"
	mac := "11-22-33-44-55-66"
	updated, err := reg.Update("tester", d.UUID, dto.DeviceUpdateRequest{Name: &name, MAC: &mac})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "11:22:33:44:55:66", updated.MAC)
	assert.Equal(t, "upstairs", updated.Notes, "unsupplied fields stay untouched")
}

func TestRegistryUpdateUnknownID(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	name := "x"
	_, err := reg.Update("tester", "no-such-uuid", dto.DeviceUpdateRequest{Name: &name})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegistryReenableChecksUniqueness(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	first, err := reg.Add("tester", dto.DeviceCreateRequest{Name: "first", MAC: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)
	disabled := false
	_, err = reg.Update("tester", first.UUID, dto.DeviceUpdateRequest{Enabled: &disabled})
	require.NoError(t, err)
	_, err = reg.Add("tester", dto.DeviceCreateRequest{Name: "second", MAC: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)

	enabled := true
	_, err = reg.Update("tester", first.UUID, dto.DeviceUpdateRequest{Enabled: &enabled})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRegistryDelete(t *testing.T) {
	reg, audit, _ := newTestRegistry(t)

	d, err := reg.Add("tester", dto.DeviceCreateRequest{Name: "first", MAC: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)

	require.NoError(t, reg.Delete("tester", d.UUID))

	devices, err := reg.List()
	require.NoError(t, err)
	assert.Empty(t, devices)

	err = reg.Delete("tester", d.UUID)
	assert.True(t, errors.Is(err, ErrNotFound))

	entries, err := audit.Recent(10)
	require.NoError(t, err)
	assert.Equal(t, "device.delete", entries[0].Action)
}

func TestRegistryEnabledMACs(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.Add("tester", dto.DeviceCreateRequest{Name: "a", MAC: "AA:00:00:00:00:01"})
	require.NoError(t, err)
	b, err := reg.Add("tester", dto.DeviceCreateRequest{Name: "b", MAC: "AA:00:00:00:00:02"})
	require.NoError(t, err)

	disabled := false
	_, err = reg.Update("tester", b.UUID, dto.DeviceUpdateRequest{Enabled: &disabled})
	require.NoError(t, err)

	macs, err := reg.EnabledMACs()
	require.NoError(t, err)
	assert.Equal(t, []string{"AA:00:00:00:00:01"}, macs)
}
