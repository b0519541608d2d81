package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var (
	// helpOverlayStyle frames the expanded key reference.
	helpOverlayStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")). // Pink, matches the selection accent
		Padding(1, 3).
		MarginTop(1)
)

// HelpModel renders the workspace key reference as a bordered overlay.
// It always shows the full binding table; the short form lives in the
// workspace header instead.
type HelpModel struct {
	help   help.Model
	keymap KeyMap
}

// NewHelpModel creates the overlay for the given bindings.
func NewHelpModel(keymap KeyMap) HelpModel {
	h := help.New()
	h.ShowAll = true
	return HelpModel{help: h, keymap: keymap}
}

// View renders the overlay sized to the terminal width.
func (m HelpModel) View(width int) string {
	m.help.Width = width - 10
	return helpOverlayStyle.Render(m.help.View(m.keymap))
}
