package controllers

import (
	"encoding/json"
	"net/http"

	"homeguard/backend/app/dto"
	"homeguard/backend/app/middleware"
	"homeguard/backend/app/services"
	"homeguard/backend/global"
)

type StatusController struct {
	Toggle   *services.ToggleService
	Registry *services.RegistryService
}

func NewStatusController(toggle *services.ToggleService, registry *services.RegistryService) *StatusController {
	return &StatusController{Toggle: toggle, Registry: registry}
}

func (c *StatusController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *StatusController) Status(w http.ResponseWriter, r *http.Request) {
	st, err := c.Toggle.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	count, err := c.Registry.Count()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.StatusResponse{
		ControlsActive:   st.Active,
		LastChangeTime:   st.LastChangeTime,
		LastChangeReason: st.LastChangeReason,
		DeviceCount:      int(count),
	})
}

func (c *StatusController) PostToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req dto.ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "active flag is required"})
		return
	}
	st, err := c.Toggle.Toggle(r.Context(), *req.Active, req.Reason, middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	msg := "parental controls deactivated"
	if st.Active {
		msg = "parental controls activated"
	}
	writeJSON(w, http.StatusOK, dto.ToggleResponse{Success: true, ControlsActive: st.Active, Message: msg})
}

// PostSync force re-applies persisted state against the live registry.
func (c *StatusController) PostSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	st, err := c.Toggle.Sync(r.Context(), middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	global.Logger.Info().Bool("active", st.Active).Msg("manual sync completed")
	writeJSON(w, http.StatusOK, dto.ToggleResponse{Success: true, ControlsActive: st.Active, Message: "device sync completed"})
}
