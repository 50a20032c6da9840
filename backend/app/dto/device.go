package dto

import "time"

type DeviceCreateRequest struct {
	Name  string `json:"name"`
	MAC   string `json:"mac"`
	Notes string `json:"notes"`
}

// DeviceUpdateRequest carries only the fields the caller wants changed.
type DeviceUpdateRequest struct {
	Name    *string `json:"name"`
	MAC     *string `json:"mac"`
	Enabled *bool   `json:"enabled"`
	Notes   *string `json:"notes"`
}

type DeviceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MAC       string    `json:"mac"`
	Enabled   bool      `json:"enabled"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
