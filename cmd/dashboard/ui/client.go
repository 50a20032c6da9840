package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is a thin wrapper over the homeguard HTTP API.
type Client struct {
	BaseURL string
	Token   string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type Status struct {
	ControlsActive   bool      `json:"controlsActive"`
	LastChangeTime   time.Time `json:"lastChangeTime"`
	LastChangeReason string    `json:"lastChangeReason"`
	DeviceCount      int       `json:"deviceCount"`
}

type Device struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	MAC     string `json:"mac"`
	Enabled bool   `json:"enabled"`
	Notes   string `json:"notes"`
}

type ToggleResult struct {
	Success        bool   `json:"success"`
	ControlsActive bool   `json:"controlsActive"`
	Message        string `json:"message"`
	Error          string `json:"error"`
}

func (c *Client) Login(username, password string) error {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := c.http.Post(c.BaseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed (%d)", resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	c.Token = out.AccessToken
	return nil
}

func (c *Client) Status() (*Status, error) {
	var st Status
	if err := c.get("/api/status", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Devices() ([]Device, error) {
	var devices []Device
	if err := c.get("/api/mac/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

func (c *Client) Toggle(active bool, reason string) (*ToggleResult, error) {
	body, _ := json.Marshal(map[string]any{"active": active, "reason": reason})
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/toggle", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out ToggleResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.Success && out.Error != "" {
		return nil, fmt.Errorf("%s", out.Error)
	}
	return &out, nil
}

func (c *Client) get(path string, v any) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s failed (%d)", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
