package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/kinematics"
)

// Styles are derived from a Theme.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Good     lipgloss.Style
	Warn     lipgloss.Style
	Bad      lipgloss.Style
	Panel    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:    lipgloss.NewStyle().Foreground(t.Muted),
		Value:    lipgloss.NewStyle().Foreground(t.Text),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
		Good:     lipgloss.NewStyle().Bold(true).Foreground(t.Good),
		Warn:     lipgloss.NewStyle().Bold(true).Foreground(t.Warn),
		Bad:      lipgloss.NewStyle().Bold(true).Foreground(t.Bad),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
	}
}

// LimitBar renders where v sits inside r as a fixed-width gauge.
func LimitBar(v float64, r *kinematics.Range, width int) string {
	if r == nil || r.Max <= r.Min {
		return strings.Repeat("·", width)
	}
	pos := int((v - r.Min) / (r.Max - r.Min) * float64(width-1))
	pos = max(0, min(width-1, pos))
	return strings.Repeat("─", pos) + "●" + strings.Repeat("─", width-1-pos)
}

// FormatPose prints translation and roll/pitch/yaw on one line.
func FormatPose(p geom.Pose) string {
	r, pi, y := p.RPY()
	return fmt.Sprintf("xyz [% .4f % .4f % .4f]  rpy [% .4f % .4f % .4f]",
		p.Translation.X, p.Translation.Y, p.Translation.Z, r, pi, y)
}
