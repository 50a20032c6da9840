package services

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hexOnly   = regexp.MustCompile(`[^0-9A-F]`)
	nameClean = regexp.MustCompile(`[^a-zA-Z0-9_\-\s.]`)
)

// NormalizeMAC accepts the common MAC spellings (colon, dash, dot separated
// or bare hex) and returns the canonical AA:BB:CC:DD:EE:FF form.
func NormalizeMAC(mac string) (string, error) {
	clean := hexOnly.ReplaceAllString(strings.ToUpper(mac), "")
	if len(clean) != 12 {
		return "", fmt.Errorf("%w: malformed MAC address %q", ErrValidation, mac)
	}
	parts := make([]string, 0, 6)
	for i := 0; i < 12; i += 2 {
		parts = append(parts, clean[i:i+2])
	}
	return strings.Join(parts, ":"), nil
}

// CleanDeviceName strips characters the router chokes on and bounds the
// length. Empty results are rejected.
func CleanDeviceName(name string) (string, error) {
	clean := strings.TrimSpace(nameClean.ReplaceAllString(name, ""))
	if clean == "" {
		return "", fmt.Errorf("%w: device name is empty", ErrValidation)
	}
	if len(clean) > 50 {
		clean = clean[:50]
	}
	return clean, nil
}
