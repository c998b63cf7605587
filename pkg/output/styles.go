package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Style names used by the renderer.
const (
	StyleHeader  = "Header"
	StyleStep    = "Step"
	StyleNoop    = "Noop"
	StyleCreate  = "Create"
	StyleUpdate  = "Update"
	StyleRemove  = "Remove"
	StyleSuccess = "Success"
	StyleError   = "Error"
	StyleMuted   = "Muted"
)

// newStyles builds the style registry bound to w's colour profile.
func newStyles(w io.Writer) map[string]lipgloss.Style {
	r := lipgloss.NewRenderer(w)
	color := func(light, dark string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}
	return map[string]lipgloss.Style{
		StyleHeader:  r.NewStyle().Bold(true).Underline(true),
		StyleStep:    r.NewStyle().Bold(true),
		StyleNoop:    r.NewStyle().Foreground(color("#6C6C6C", "#8A8A8A")),
		StyleCreate:  r.NewStyle().Foreground(color("#00875F", "#5FD787")),
		StyleUpdate:  r.NewStyle().Foreground(color("#AF8700", "#FFD75F")),
		StyleRemove:  r.NewStyle().Foreground(color("#AF0000", "#FF5F5F")),
		StyleSuccess: r.NewStyle().Foreground(color("#00875F", "#5FD787")).Bold(true),
		StyleError:   r.NewStyle().Foreground(color("#AF0000", "#FF5F5F")).Bold(true),
		StyleMuted:   r.NewStyle().Faint(true),
	}
}
