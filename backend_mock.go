//go:build mock

package main

import (
	"log/slog"

	"github.com/shazow/wifiqr/wifi"
	mockBackend "github.com/shazow/wifiqr/wifi/mock"
)

func GetBackend(logger *slog.Logger) (wifi.Backend, error) {
	logger.Warn("using mock backend, nothing will be stored")
	return mockBackend.New()
}
