package statusbar

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/postpeek/internal/api"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	activeTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#3273DC")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#555555")).
				Foreground(lipgloss.Color("#CCCCCC")).
				Padding(0, 1)

	statusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF3860")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)

// Model is the status bar at the bottom of the screen.
type Model struct {
	width        int
	users        []api.User
	activeUserID int
	hint         string
	statusText   string
	isError      bool
}

// New creates a new status bar.
func New() Model {
	return Model{}
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetUsers sets the user tabs.
func (m *Model) SetUsers(users []api.User) {
	m.users = users
}

// SetActiveUser highlights the tab of the given user.
func (m *Model) SetActiveUser(id int) {
	m.activeUserID = id
}

// SetHint sets the key hint shown when there is no status.
func (m *Model) SetHint(hint string) {
	m.hint = hint
}

// SetStatus sets a status message. An empty text clears it.
func (m *Model) SetStatus(text string, isError bool) {
	m.statusText = text
	m.isError = isError
}

// Status returns the current status message.
func (m Model) Status() (string, bool) {
	return m.statusText, m.isError
}

// Update is a no-op for the status bar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	var tabsStr string
	for _, u := range m.users {
		if u.ID == m.activeUserID {
			tabsStr += activeTabStyle.Render(u.Name)
		} else {
			tabsStr += inactiveTabStyle.Render(u.Name)
		}
	}

	var right string
	switch {
	case m.statusText != "" && m.isError:
		right = errorStyle.Render(m.statusText)
	case m.statusText != "":
		right = statusTextStyle.Render(m.statusText)
	case m.hint != "":
		right = statusTextStyle.Render(m.hint)
	}

	// Too many users to fit: show only the active one.
	if lipgloss.Width(tabsStr)+lipgloss.Width(right) > m.width {
		tabsStr = ""
		for _, u := range m.users {
			if u.ID == m.activeUserID {
				tabsStr = activeTabStyle.Render(u.Name)
			}
		}
	}

	gap := m.width - lipgloss.Width(tabsStr) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	mid := barStyle.Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, tabsStr, mid, right)
}
