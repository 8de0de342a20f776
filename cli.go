package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	wifilog "github.com/shazow/wifiqr/internal/log"
	"github.com/shazow/wifiqr/internal/provision"
	"github.com/shazow/wifiqr/internal/report"
	"github.com/shazow/wifiqr/internal/scan"
	"github.com/shazow/wifiqr/wifi"
)

// runScan waits for a batch of payloads from scanner and provisions them.
// Without a backend the payloads are only parsed.
func runScan(ctx context.Context, w io.Writer, scanner *scan.Scanner, backend wifi.Backend, opts provision.Options, logger *slog.Logger) error {
	payloads, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	logger.Info("scanned payloads", "count", len(payloads))

	if backend == nil {
		opts.DryRun = true
	}
	results := provision.New(backend, opts, logger).Run(ctx, payloads)
	if err := report.Write(w, results); err != nil {
		return err
	}

	// Repeat the run's problems under the summary, for reports read apart
	// from stderr.
	if h, ok := logger.Handler().(*wifilog.RecordHandler); ok {
		return report.WriteLogs(w, h.Logs(), slog.LevelWarn)
	}
	return nil
}

// profileView is the printable form of a profile's settings.
type profileView struct {
	Connection map[string]interface{} `json:"connection" yaml:"connection"`
	Wireless   map[string]interface{} `json:"802-11-wireless" yaml:"802-11-wireless"`
	Security   map[string]interface{} `json:"802-11-wireless-security" yaml:"802-11-wireless-security"`
	IPv4       map[string]interface{} `json:"ipv4" yaml:"ipv4"`
	IPv6       map[string]interface{} `json:"ipv6" yaml:"ipv6"`
}

func newProfileView(p wifi.Profile, showSecret bool) profileView {
	s := p.Settings()
	// SSIDs are bytes on the wire, but text is friendlier to read.
	s[wifi.SectionWireless]["ssid"] = p.ID()
	if !showSecret {
		s[wifi.SectionSecurity]["psk"] = "<hidden>"
	}
	return profileView{
		Connection: s[wifi.SectionConnection],
		Wireless:   s[wifi.SectionWireless],
		Security:   s[wifi.SectionSecurity],
		IPv4:       s[wifi.SectionIPv4],
		IPv6:       s[wifi.SectionIPv6],
	}
}

// runParse prints the settings a payload would be submitted as.
func runParse(w io.Writer, payload string, format string, showSecret bool) error {
	profile, err := wifi.ParsePayload(payload)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	view := newProfileView(profile, showSecret)

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid format: %s", format)
	}
}

// runQR prints a QR code that provisions ssid with passphrase.
func runQR(w io.Writer, ssid, passphrase string) error {
	payload, code, err := GenerateWifiQRCode(ssid, passphrase)
	if err != nil {
		return fmt.Errorf("failed to generate qr code: %w", err)
	}
	fmt.Fprint(w, code)
	fmt.Fprintln(w, payload)
	return nil
}
