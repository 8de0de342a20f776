//go:build !linux && !mock

package main

import (
	"fmt"
	"log/slog"

	"github.com/shazow/wifiqr/wifi"
)

// GetBackend returns an error for operating systems without NetworkManager.
func GetBackend(logger *slog.Logger) (wifi.Backend, error) {
	return nil, fmt.Errorf("unsupported operating system: %w", wifi.ErrNotSupported)
}
