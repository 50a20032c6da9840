package controllers

import (
	"net/http"
	"strconv"

	"homeguard/backend/app/dto"
	"homeguard/backend/app/services"
)

type AuditController struct{ Audit *services.AuditService }

func NewAuditController(audit *services.AuditService) *AuditController {
	return &AuditController{Audit: audit}
}

func (c *AuditController) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := c.Audit.Recent(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditEntryResponse{
			ID:        e.ID,
			Actor:     e.Actor,
			Action:    e.Action,
			Resource:  e.Resource,
			Detail:    e.Detail,
			PrevState: e.PrevState,
			NewState:  e.NewState,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
