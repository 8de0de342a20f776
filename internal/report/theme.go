package report

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

// Theme contains the colors used by the report.
type Theme struct {
	Success lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Subtle  lipgloss.TerminalColor
	Normal  lipgloss.TerminalColor

	// The summary line is colored along a gradient from SummaryLow (nothing
	// provisioned) to SummaryHigh (everything provisioned).
	SummaryLow  lipgloss.AdaptiveColor
	SummaryHigh lipgloss.AdaptiveColor
}

// CurrentTheme is the active theme.
var CurrentTheme = NewDefaultTheme()

// NewDefaultTheme creates a new default theme.
func NewDefaultTheme() Theme {
	return Theme{
		Success: lipgloss.AdaptiveColor{Light: "#388E3C", Dark: "#81C784"}, // Green
		Error:   lipgloss.AdaptiveColor{Light: "#D32F2F", Dark: "#E57373"}, // Red
		Subtle:  lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#616161"}, // Gray
		Normal:  lipgloss.AdaptiveColor{Light: "#212121", Dark: "#FFFFFF"}, // Black/White

		SummaryLow:  lipgloss.AdaptiveColor{Light: "#D05F00", Dark: "#BC3C00"},
		SummaryHigh: lipgloss.AdaptiveColor{Light: "#00B300", Dark: "#00FF00"},
	}
}

// themeColor is a color in a theme file: either a single hex string, or a
// [light, dark] pair.
type themeColor struct {
	color *lipgloss.AdaptiveColor
}

func (c *themeColor) UnmarshalTOML(v interface{}) error {
	switch v := v.(type) {
	case string:
		c.color = &lipgloss.AdaptiveColor{Light: v, Dark: v}
	case []interface{}:
		if len(v) != 2 {
			return fmt.Errorf("expected [light, dark], got %d values", len(v))
		}
		light, ok1 := v[0].(string)
		dark, ok2 := v[1].(string)
		if !ok1 || !ok2 {
			return fmt.Errorf("expected [light, dark] strings, got %v", v)
		}
		c.color = &lipgloss.AdaptiveColor{Light: light, Dark: dark}
	default:
		return fmt.Errorf("unsupported color value %v", v)
	}
	return nil
}

// themeFile represents the structure of the theme TOML file. Missing values
// keep their default.
type themeFile struct {
	Success     themeColor `toml:"Success"`
	Error       themeColor `toml:"Error"`
	Subtle      themeColor `toml:"Subtle"`
	Normal      themeColor `toml:"Normal"`
	SummaryLow  themeColor `toml:"SummaryLow"`
	SummaryHigh themeColor `toml:"SummaryHigh"`
}

// LoadTheme reads a theme from r and makes it the current theme. A nil reader
// does nothing.
func LoadTheme(r io.Reader) error {
	if r == nil {
		return nil
	}

	var tf themeFile
	if _, err := toml.NewDecoder(r).Decode(&tf); err != nil {
		return fmt.Errorf("failed to parse theme: %w", err)
	}

	// Start with the default theme and override it with the loaded values.
	theme := NewDefaultTheme()
	if tf.Success.color != nil {
		theme.Success = *tf.Success.color
	}
	if tf.Error.color != nil {
		theme.Error = *tf.Error.color
	}
	if tf.Subtle.color != nil {
		theme.Subtle = *tf.Subtle.color
	}
	if tf.Normal.color != nil {
		theme.Normal = *tf.Normal.color
	}
	if tf.SummaryLow.color != nil {
		theme.SummaryLow = *tf.SummaryLow.color
	}
	if tf.SummaryHigh.color != nil {
		theme.SummaryHigh = *tf.SummaryHigh.color
	}

	CurrentTheme = theme
	return nil
}
