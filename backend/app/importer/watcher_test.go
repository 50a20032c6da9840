package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"homeguard/backend/app/enforce"
	"homeguard/backend/app/models"
	"homeguard/backend/app/repo"
	"homeguard/backend/app/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type noopEnforcer struct{}

func (noopEnforcer) Apply(ctx context.Context, target enforce.Target) error { return nil }
func (noopEnforcer) ReadRemoteState(ctx context.Context) (enforce.Observed, error) {
	return enforce.Observed{}, nil
}

func newTestWatcher(t *testing.T, content string) (*Watcher, *services.RegistryService) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "imp.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.Device{}, &models.ControlState{}, &models.AuditEntry{}))

	auditRepo := repo.NewAuditRepository(gdb)
	registry := services.NewRegistryService(repo.NewDeviceRepository(gdb), auditRepo)
	toggle := services.NewToggleService(registry, repo.NewControlStateRepository(gdb), auditRepo, noopEnforcer{}, zerolog.Nop())

	path := filepath.Join(t.TempDir(), "mac_addresses.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return New(path, registry, toggle, zerolog.Nop()), registry
}

func TestImportOnce(t *testing.T) {
	w, registry := newTestWatcher(t, "1|Kid Tablet\taa:bb:cc:dd:ee:ff\t\n2|Switch\t11-22-33-44-55-66\t\n")

	added, err := w.ImportOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	devices, err := registry.List()
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "Kid Tablet", devices[0].Name)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", devices[0].MAC)
	assert.Equal(t, "11:22:33:44:55:66", devices[1].MAC)
}

func TestImportSkipsMalformedLines(t *testing.T) {
	w, registry := newTestWatcher(t, "just a name without mac\n1|Kid Tablet\tnot-a-mac\t\n2|Good\taa:bb:cc:dd:ee:ff\t\n")

	added, err := w.ImportOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	devices, err := registry.List()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "Good", devices[0].Name)
}

func TestImportIsIdempotent(t *testing.T) {
	w, registry := newTestWatcher(t, "1|Kid Tablet\taa:bb:cc:dd:ee:ff\t\n")

	added, err := w.ImportOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = w.ImportOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	devices, err := registry.List()
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestParseLine(t *testing.T) {
	name, mac, ok := parseLine("7|Kid Tablet\tAA:BB:CC:DD:EE:FF\t")
	require.True(t, ok)
	assert.Equal(t, "Kid Tablet", name)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", mac)

	// Legacy lines without the numeric id still import.
	name, mac, ok = parseLine("Tablet\tAA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.Equal(t, "Tablet", name)

	_, _, ok = parseLine("no tab here")
	assert.False(t, ok)
}
