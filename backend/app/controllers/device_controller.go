package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"homeguard/backend/app/dto"
	"homeguard/backend/app/middleware"
	"homeguard/backend/app/models"
	"homeguard/backend/app/services"
	"homeguard/backend/global"
)

type DeviceController struct {
	Registry *services.RegistryService
	Toggle   *services.ToggleService
}

func NewDeviceController(registry *services.RegistryService, toggle *services.ToggleService) *DeviceController {
	return &DeviceController{Registry: registry, Toggle: toggle}
}

// Collection handles /api/mac/devices (list, create).
func (c *DeviceController) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c.list(w, r)
	case http.MethodPost:
		c.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Item handles /api/mac/devices/{uuid} (update, delete).
func (c *DeviceController) Item(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/mac/devices/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		d, err := c.Registry.Get(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deviceToDTO(d))
	case http.MethodPut:
		c.update(w, r, id)
	case http.MethodDelete:
		c.delete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (c *DeviceController) list(w http.ResponseWriter, r *http.Request) {
	devices, err := c.Registry.List()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]dto.DeviceResponse, 0, len(devices))
	for i := range devices {
		out = append(out, deviceToDTO(&devices[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *DeviceController) create(w http.ResponseWriter, r *http.Request) {
	var req dto.DeviceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON body"})
		return
	}
	d, err := c.Registry.Add(middleware.Actor(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	c.resync(r)
	writeJSON(w, http.StatusCreated, deviceToDTO(d))
}

func (c *DeviceController) update(w http.ResponseWriter, r *http.Request, id string) {
	var req dto.DeviceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON body"})
		return
	}
	d, err := c.Registry.Update(middleware.Actor(r.Context()), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	c.resync(r)
	writeJSON(w, http.StatusOK, deviceToDTO(d))
}

func (c *DeviceController) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := c.Registry.Delete(middleware.Actor(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	c.resync(r)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// resync pushes the edited registry to the firewall. The registry change is
// already durable; a failed push leaves remote state stale until the next
// sync, so it is logged rather than failing the edit.
func (c *DeviceController) resync(r *http.Request) {
	if _, err := c.Toggle.Sync(r.Context(), middleware.Actor(r.Context())); err != nil {
		global.Logger.Warn().Err(err).Msg("post-edit sync failed")
	}
}

func deviceToDTO(d *models.Device) dto.DeviceResponse {
	return dto.DeviceResponse{
		ID:        d.UUID,
		Name:      d.Name,
		MAC:       d.MAC,
		Enabled:   d.Enabled,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
