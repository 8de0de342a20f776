//go:build linux && !mock

package main

import (
	"log/slog"

	"github.com/shazow/wifiqr/wifi"
	"github.com/shazow/wifiqr/wifi/networkmanager"
)

// GetBackend connects to NetworkManager. Failing to connect is fatal for the
// run, so there is no fallback.
func GetBackend(logger *slog.Logger) (wifi.Backend, error) {
	b, err := networkmanager.New(logger)
	if err != nil {
		return nil, err
	}
	return b, nil
}
