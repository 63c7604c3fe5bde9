package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#3273DC")
	muted  = lipgloss.Color("#444444")

	// PaneStyle frames the post list and details panes.
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted)

	FocusedPaneStyle = PaneStyle.
				BorderForeground(accent)
)

// pane renders content in a bordered box of the given outer size.
func pane(content string, w, h int, focused bool) string {
	style := PaneStyle
	if focused {
		style = FocusedPaneStyle
	}
	fw, fh := style.GetFrameSize()
	return style.
		Width(max(w-fw, 0)).
		Height(max(h-fh, 0)).
		MaxHeight(h).
		Render(content)
}
