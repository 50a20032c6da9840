package dto

import "time"

type StatusResponse struct {
	ControlsActive   bool      `json:"controlsActive"`
	LastChangeTime   time.Time `json:"lastChangeTime"`
	LastChangeReason string    `json:"lastChangeReason"`
	DeviceCount      int       `json:"deviceCount"`
}

type ToggleRequest struct {
	Active *bool  `json:"active"`
	Reason string `json:"reason"`
}

type ToggleResponse struct {
	Success        bool   `json:"success"`
	ControlsActive bool   `json:"controlsActive"`
	Message        string `json:"message"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
