// Package report renders batch results for the terminal.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/shazow/wifiqr/internal/provision"
)

// Write renders one line per result followed by a summary line.
func Write(w io.Writer, results []provision.Result) error {
	theme := CurrentTheme
	ok := lipgloss.NewStyle().Foreground(theme.Success)
	bad := lipgloss.NewStyle().Foreground(theme.Error)
	subtle := lipgloss.NewStyle().Foreground(theme.Subtle)
	normal := lipgloss.NewStyle().Foreground(theme.Normal)

	succeeded := 0
	for _, r := range results {
		var line string
		if r.OK() {
			succeeded++
			line = fmt.Sprintf("%s %s %s", ok.Render("✓"), normal.Render(r.SSID), subtle.Render(r.State.String()))
			if r.Active != "" {
				line += " " + subtle.Render(string(r.Active))
			}
		} else {
			line = fmt.Sprintf("%s %s", bad.Render("✗"), bad.Render(r.Err.Error()))
			if r.SSID != "" {
				line = fmt.Sprintf("%s %s %s", bad.Render("✗"), normal.Render(r.SSID), bad.Render(r.Err.Error()))
			}
			if r.Connection != "" && !r.Deleted {
				line += " " + subtle.Render("(left stored as "+string(r.Connection)+")")
			}
		}
		if _, err := fmt.Fprintf(w, "%3d %s\n", r.Index, line); err != nil {
			return err
		}
	}

	summary := lipgloss.NewStyle().Foreground(summaryColor(theme, succeeded, len(results)))
	_, err := fmt.Fprintln(w, summary.Render(fmt.Sprintf("%d/%d scan results processed", succeeded, len(results))))
	return err
}

// summaryColor blends between the theme's summary colors by success ratio.
func summaryColor(theme Theme, succeeded, total int) lipgloss.Color {
	low, high := theme.SummaryLow.Light, theme.SummaryHigh.Light
	if lipgloss.HasDarkBackground() {
		low, high = theme.SummaryLow.Dark, theme.SummaryHigh.Dark
	}
	start, err := colorful.Hex(low)
	if err != nil {
		return lipgloss.Color(high)
	}
	end, err := colorful.Hex(high)
	if err != nil {
		return lipgloss.Color(low)
	}
	p := 1.0
	if total > 0 {
		p = float64(succeeded) / float64(total)
	}
	return lipgloss.Color(start.BlendRgb(end, p).Hex())
}

// WriteLogs renders the records at or above level, oldest first.
func WriteLogs(w io.Writer, records []slog.Record, level slog.Level) error {
	theme := CurrentTheme
	subtle := lipgloss.NewStyle().Foreground(theme.Subtle)
	bad := lipgloss.NewStyle().Foreground(theme.Error)

	for _, r := range records {
		if r.Level < level {
			continue
		}
		var b strings.Builder
		b.WriteString(r.Message)
		r.Attrs(func(a slog.Attr) bool {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
			return true
		})
		style := subtle
		if r.Level >= slog.LevelError {
			style = bad
		}
		if _, err := fmt.Fprintf(w, "%5s %s\n", r.Level, style.Render(b.String())); err != nil {
			return err
		}
	}
	return nil
}
