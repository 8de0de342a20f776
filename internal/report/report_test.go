package report

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/shazow/wifiqr/internal/provision"
	"github.com/shazow/wifiqr/wifi"
)

func TestWrite(t *testing.T) {
	results := []provision.Result{
		{Index: 1, SSID: "first", State: provision.StateActivated, Active: "/org/freedesktop/NetworkManager/ActiveConnection/3"},
		{Index: 2, Err: &wifi.MissingFieldError{Field: "SSID"}},
		{
			Index:      3,
			SSID:       "third",
			State:      provision.StateAdded,
			Connection: "/org/freedesktop/NetworkManager/Settings/4",
			Err:        &wifi.ServiceError{Op: "activate connection", Kind: wifi.ErrRejected},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, results); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}

	checks := []struct {
		line int
		want []string
	}{
		{0, []string{"1", "first", "activated", "ActiveConnection/3"}},
		{1, []string{"2", "missing field: SSID"}},
		{2, []string{"3", "third", "activate connection: rejected by service", "left stored as /org/freedesktop/NetworkManager/Settings/4"}},
		{3, []string{"1/3 scan results processed"}},
	}
	for _, c := range checks {
		for _, want := range c.want {
			if !strings.Contains(lines[c.line], want) {
				t.Errorf("line %d = %q, missing %q", c.line, lines[c.line], want)
			}
		}
	}
}

func TestWrite_Deleted(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []provision.Result{{
		Index:      1,
		SSID:       "net",
		Connection: "/org/freedesktop/NetworkManager/Settings/4",
		Deleted:    true,
		Err:        errors.New("activation failed"),
	}})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "left stored") {
		t.Errorf("deleted connection reported as stored: %s", buf.String())
	}
}

func TestSummaryColor(t *testing.T) {
	theme := Theme{
		SummaryLow:  lipgloss.AdaptiveColor{Light: "#000000", Dark: "#000000"},
		SummaryHigh: lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#ffffff"},
	}
	if got := summaryColor(theme, 0, 4); got != lipgloss.Color("#000000") {
		t.Errorf("no successes = %s", got)
	}
	if got := summaryColor(theme, 4, 4); got != lipgloss.Color("#ffffff") {
		t.Errorf("all successes = %s", got)
	}
	if got := summaryColor(theme, 0, 0); got != lipgloss.Color("#ffffff") {
		t.Errorf("empty batch = %s", got)
	}
}

func TestWriteLogs(t *testing.T) {
	var records []slog.Record
	for _, r := range []struct {
		level slog.Level
		msg   string
	}{
		{slog.LevelDebug, "added connection"},
		{slog.LevelInfo, "scan result processed"},
		{slog.LevelWarn, "failed to delete connection"},
		{slog.LevelError, "skipping scan result"},
	} {
		rec := slog.NewRecord(time.Now(), r.level, r.msg, 0)
		rec.AddAttrs(slog.Int("index", 2))
		records = append(records, rec)
	}

	var buf bytes.Buffer
	if err := WriteLogs(&buf, records, slog.LevelWarn); err != nil {
		t.Fatalf("WriteLogs failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[0], "failed to delete connection index=2") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "ERROR") || !strings.Contains(lines[1], "skipping scan result") {
		t.Errorf("line 1 = %q", lines[1])
	}
}
