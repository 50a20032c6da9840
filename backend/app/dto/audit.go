package dto

import "time"

type AuditEntryResponse struct {
	ID        uint      `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Detail    string    `json:"detail"`
	PrevState bool      `json:"prev_state"`
	NewState  bool      `json:"new_state"`
	CreatedAt time.Time `json:"created_at"`
}
