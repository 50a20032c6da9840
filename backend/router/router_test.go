package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"homeguard/backend/app/controllers"
	"homeguard/backend/app/dto"
	"homeguard/backend/app/enforce"
	jwtutil "homeguard/backend/app/jwt"
	"homeguard/backend/app/middleware"
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

type memEnforcer struct {
	mu     sync.Mutex
	remote enforce.Observed
}

func (m *memEnforcer) Apply(ctx context.Context, target enforce.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remote = enforce.Observed{MACs: target.MACs, RuleEnabled: target.Active}
	return nil
}

func (m *memEnforcer) ReadRemoteState(ctx context.Context) (enforce.Observed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remote, nil
}

type testAPI struct {
	srv      *httptest.Server
	token    string
	enforcer *memEnforcer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Device{}, &models.ControlState{}, &models.AuditEntry{}))

	userRepo := repo.NewUserRepository(gdb)
	auditRepo := repo.NewAuditRepository(gdb)
	stateRepo := repo.NewControlStateRepository(gdb)

	userSvc := services.NewUserService(userRepo)
	require.NoError(t, userSvc.EnsureAdmin("admin", "admin123"))

	registry := services.NewRegistryService(repo.NewDeviceRepository(gdb), auditRepo)
	fe := &memEnforcer{}
	toggle := services.NewToggleService(registry, stateRepo, auditRepo, fe, zerolog.Nop())
	auditSvc := services.NewAuditService(auditRepo)

	signer := &jwtutil.Signer{Secret: []byte("test-secret"), Issuer: "homeguard-test", ExpMin: 60}
	mw := &middleware.Auth{Signer: signer}
	h := NewRouter(
		controllers.NewStatusController(toggle, registry),
		controllers.NewAuthController(userSvc, signer),
		controllers.NewDeviceController(registry, toggle),
		controllers.NewAuditController(auditSvc),
		mw,
	)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	api := &testAPI{srv: srv, enforcer: fe}
	api.login(t, "admin", "admin123")
	return api
}

func (a *testAPI) login(t *testing.T, user, pass string) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": user, "password": pass})
	resp, err := http.Post(a.srv.URL+"/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	a.token = out.AccessToken
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestLoginRequired(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	resp := api.do(t, http.MethodPost, "/api/toggle", map[string]any{"active": true})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/mac/devices", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStatusIsPublic(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	resp := api.do(t, http.MethodGet, "/api/status", nil)
	st := decode[dto.StatusResponse](t, resp)
	assert.False(t, st.ControlsActive)
	assert.Zero(t, st.DeviceCount)
}

func TestBedtimeScenario(t *testing.T) {
	api := newTestAPI(t)

	// Register the tablet.
	resp := api.do(t, http.MethodPost, "/api/mac/devices", dto.DeviceCreateRequest{Name: "Kid Tablet", MAC: "AA:BB:CC:DD:EE:FF"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.DeviceResponse](t, resp)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", created.MAC)

	// Bedtime: block it.
	resp = api.do(t, http.MethodPost, "/api/toggle", map[string]any{"active": true, "reason": "bedtime"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tr := decode[dto.ToggleResponse](t, resp)
	assert.True(t, tr.Success)
	assert.True(t, tr.ControlsActive)

	resp = api.do(t, http.MethodGet, "/api/status", nil)
	st := decode[dto.StatusResponse](t, resp)
	assert.True(t, st.ControlsActive)
	assert.Equal(t, "bedtime", st.LastChangeReason)
	assert.Equal(t, 1, st.DeviceCount)

	obs, err := api.enforcer.ReadRemoteState(context.Background())
	require.NoError(t, err)
	assert.True(t, obs.RuleEnabled)
	assert.Equal(t, []string{"AA:BB:CC:DD:EE:FF"}, obs.MACs)

	// Chores done: unblock, membership stays.
	resp = api.do(t, http.MethodPost, "/api/toggle", map[string]any{"active": false, "reason": "chores done"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	obs, err = api.enforcer.ReadRemoteState(context.Background())
	require.NoError(t, err)
	assert.False(t, obs.RuleEnabled)
	assert.Equal(t, []string{"AA:BB:CC:DD:EE:FF"}, obs.MACs)
}

func TestDeviceValidationOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/api/mac/devices", dto.DeviceCreateRequest{Name: "bad", MAC: "nonsense"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPut, "/api/mac/devices/no-such-id", dto.DeviceUpdateRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, "/api/mac/devices/no-such-id", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeviceEditTriggersResync(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/api/mac/devices", dto.DeviceCreateRequest{Name: "a", MAC: "AA:00:00:00:00:01"})
	a := decode[dto.DeviceResponse](t, resp)
	resp = api.do(t, http.MethodPost, "/api/mac/devices", dto.DeviceCreateRequest{Name: "b", MAC: "AA:00:00:00:00:02"})
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/api/toggle", map[string]any{"active": true, "reason": "bedtime"})
	resp.Body.Close()

	// Deleting a device while controls are active shrinks the alias but
	// leaves the rule enabled.
	resp = api.do(t, http.MethodDelete, "/api/mac/devices/"+a.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	obs, err := api.enforcer.ReadRemoteState(context.Background())
	require.NoError(t, err)
	assert.True(t, obs.RuleEnabled)
	assert.Equal(t, []string{"AA:00:00:00:00:02"}, obs.MACs)
}

func TestAuditEndpointIsAdminOnly(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/api/mac/devices", dto.DeviceCreateRequest{Name: "a", MAC: "AA:00:00:00:00:01"})
	resp.Body.Close()

	resp = api.do(t, http.MethodGet, "/api/audit?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]dto.AuditEntryResponse](t, resp)
	require.NotEmpty(t, entries)
	assert.Equal(t, "admin", entries[len(entries)-1].Actor)

	api.token = ""
	resp = api.do(t, http.MethodGet, "/api/audit", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
