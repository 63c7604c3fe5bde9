package commentform

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/postpeek/internal/api"
	"github.com/fragmede/postpeek/internal/ui/messages"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3273DC")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3860"))
)

type field int

const (
	fieldName field = iota
	fieldEmail
	fieldBody
	fieldCount
)

// draft field names, as reported by api.FieldError.
var fieldKeys = [fieldCount]string{"Name", "Email", "Body"}

// Model is the comment composer. It validates and emits a
// messages.SubmitCommentMsg; the network call belongs to the parent.
type Model struct {
	nameInput  textinput.Model
	emailInput textinput.Model
	bodyInput  textarea.Model
	focused    field
	errs       map[string]string
	submitting bool
	width      int
}

// New creates an empty comment form with the name field focused.
func New() Model {
	ni := textinput.New()
	ni.Placeholder = "Name Surname"
	ni.CharLimit = 120
	ni.Width = 40
	ni.Focus()

	ei := textinput.New()
	ei.Placeholder = "email@test.com"
	ei.CharLimit = 254
	ei.Width = 40

	ta := textarea.New()
	ta.Placeholder = "Type comment here"
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(4)

	return Model{
		nameInput:  ni,
		emailInput: ei,
		bodyInput:  ta,
		focused:    fieldName,
		errs:       map[string]string{},
	}
}

// SetSize sets the available width.
func (m *Model) SetSize(w int) {
	m.width = w
	fw := w - 4
	if fw > 80 {
		fw = 80
	}
	if fw < 20 {
		fw = 20
	}
	m.nameInput.Width = fw
	m.emailInput.Width = fw
	m.bodyInput.SetWidth(fw)
}

// Draft returns the current field values.
func (m Model) Draft() api.CommentDraft {
	return api.CommentDraft{
		Name:  m.nameInput.Value(),
		Email: m.emailInput.Value(),
		Body:  m.bodyInput.Value(),
	}
}

// Submitting reports whether a submit is awaiting its outcome.
func (m Model) Submitting() bool {
	return m.submitting
}

// FieldError returns the validation message for a draft field, if any.
func (m Model) FieldError(name string) string {
	return m.errs[name]
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.focused = (m.focused + 1) % fieldCount
			return m, m.updateFocus()
		case "shift+tab":
			m.focused = (m.focused + fieldCount - 1) % fieldCount
			return m, m.updateFocus()
		case "ctrl+l":
			m.clear()
			m.focused = fieldName
			return m, m.updateFocus()
		case "ctrl+s":
			return m.submit()
		}
		delete(m.errs, fieldKeys[m.focused])

	case messages.CommentAddedMsg:
		m.submitting = false
		if msg.Err == nil {
			m.bodyInput.Reset()
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focused {
	case fieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case fieldEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case fieldBody:
		m.bodyInput, cmd = m.bodyInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	draft := m.Draft().Normalize()
	m.errs = map[string]string{}
	if ferrs := draft.Validate(); len(ferrs) > 0 {
		for _, fe := range ferrs {
			m.errs[fe.Field] = fe.Message
		}
		return m, nil
	}

	m.submitting = true
	return m, func() tea.Msg {
		return messages.SubmitCommentMsg{Draft: draft}
	}
}

func (m *Model) clear() {
	m.nameInput.Reset()
	m.emailInput.Reset()
	m.bodyInput.Reset()
	m.errs = map[string]string{}
}

func (m *Model) updateFocus() tea.Cmd {
	m.nameInput.Blur()
	m.emailInput.Blur()
	m.bodyInput.Blur()
	switch m.focused {
	case fieldName:
		return m.nameInput.Focus()
	case fieldEmail:
		return m.emailInput.Focus()
	case fieldBody:
		return m.bodyInput.Focus()
	}
	return nil
}

// View renders the form.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Write a comment"))
	sb.WriteString("\n\n")

	m.writeField(&sb, "Author Name", m.nameInput.View(), fieldName)
	m.writeField(&sb, "Author Email", m.emailInput.View(), fieldEmail)
	m.writeField(&sb, "Comment Text", m.bodyInput.View(), fieldBody)

	if m.submitting {
		sb.WriteString("Submitting...")
	} else {
		sb.WriteString(hintStyle.Render("Tab to switch fields | Ctrl+S to add | Ctrl+L to clear | Esc to close"))
	}
	return sb.String()
}

func (m Model) writeField(sb *strings.Builder, label, input string, f field) {
	sb.WriteString(labelStyle.Render(label))
	sb.WriteString("\n")
	sb.WriteString(input)
	sb.WriteString("\n")
	if e := m.errs[fieldKeys[f]]; e != "" {
		sb.WriteString(errorStyle.Render(e))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}
