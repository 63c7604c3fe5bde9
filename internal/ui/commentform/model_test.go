package commentform

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/postpeek/internal/api"
	"github.com/fragmede/postpeek/internal/ui/messages"
)

var (
	ctrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	ctrlL = tea.KeyMsg{Type: tea.KeyCtrlL}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func typeText(m Model, s string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func filled() Model {
	m := New()
	m.nameInput.SetValue("Ann")
	m.emailInput.SetValue("ann@example.com")
	m.bodyInput.SetValue("Nice post")
	return m
}

func TestTypingGoesToFocusedField(t *testing.T) {
	m := New()
	m = typeText(m, "Ann")
	m, _ = m.Update(tab)
	m = typeText(m, "ann@example.com")

	d := m.Draft()
	assert.Equal(t, "Ann", d.Name)
	assert.Equal(t, "ann@example.com", d.Email)
	assert.Empty(t, d.Body)
}

func TestSubmitEmitsDraft(t *testing.T) {
	m := filled()
	m.nameInput.SetValue("  Ann  ")

	m, cmd := m.Update(ctrlS)
	require.NotNil(t, cmd)
	assert.True(t, m.Submitting())

	msg, ok := cmd().(messages.SubmitCommentMsg)
	require.True(t, ok)
	assert.Equal(t, api.CommentDraft{Name: "Ann", Email: "ann@example.com", Body: "Nice post"}, msg.Draft)
}

func TestSubmitWhileSubmittingIsIgnored(t *testing.T) {
	m, _ := filled().Update(ctrlS)
	m, cmd := m.Update(ctrlS)
	assert.Nil(t, cmd)
	assert.True(t, m.Submitting())
}

func TestSubmitInvalidShowsFieldErrors(t *testing.T) {
	m := New()
	m.emailInput.SetValue("not-an-email")

	m, cmd := m.Update(ctrlS)
	assert.Nil(t, cmd)
	assert.False(t, m.Submitting())
	assert.Equal(t, "Name is required", m.FieldError("Name"))
	assert.Equal(t, "Email is invalid", m.FieldError("Email"))
	assert.Equal(t, "Body is required", m.FieldError("Body"))
	assert.Contains(t, m.View(), "Name is required")

	// Typing into the focused field clears its error only.
	m = typeText(m, "A")
	assert.Empty(t, m.FieldError("Name"))
	assert.NotEmpty(t, m.FieldError("Email"))
}

func TestAddedOutcome(t *testing.T) {
	t.Run("success clears body and keeps author", func(t *testing.T) {
		m, _ := filled().Update(ctrlS)
		m, _ = m.Update(messages.CommentAddedMsg{PostID: 1, Comment: api.Comment{ID: 9}})

		assert.False(t, m.Submitting())
		d := m.Draft()
		assert.Equal(t, "Ann", d.Name)
		assert.Equal(t, "ann@example.com", d.Email)
		assert.Empty(t, d.Body)
	})

	t.Run("failure keeps everything", func(t *testing.T) {
		m, _ := filled().Update(ctrlS)
		m, _ = m.Update(messages.CommentAddedMsg{PostID: 1, Err: errors.New("boom")})

		assert.False(t, m.Submitting())
		assert.Equal(t, "Nice post", m.Draft().Body)
	})
}

func TestClear(t *testing.T) {
	m, _ := filled().Update(tab)
	m, _ = m.Update(ctrlL)

	assert.Equal(t, api.CommentDraft{}, m.Draft())
	assert.Equal(t, fieldName, m.focused)
}

func TestFocusCycles(t *testing.T) {
	m := New()
	for i := 0; i < int(fieldCount); i++ {
		m, _ = m.Update(tab)
	}
	assert.Equal(t, fieldName, m.focused)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldBody, m.focused)
}
