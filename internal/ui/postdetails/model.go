package postdetails

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/fragmede/postpeek/internal/api"
	"github.com/fragmede/postpeek/internal/render"
	"github.com/fragmede/postpeek/internal/ui/commentform"
	"github.com/fragmede/postpeek/internal/ui/messages"
)

var (
	postTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	postBodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	authorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3273DC")).Bold(true).Underline(true)
	deleteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	selectedBar    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3273DC"))
	bar            = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	errorNoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#FF3860")).Bold(true).Padding(0, 1)
	writeBtnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3273DC")).Padding(0, 1)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

const (
	loadingText    = "Loading comments..."
	errorText      = "Something went wrong"
	noCommentsText = "No comments yet"
	commentsTitle  = "Comments:"
	writeText      = "Write a comment"
)

// CommentService is the remote API the view drives.
type CommentService interface {
	GetComments(ctx context.Context, postID int) ([]api.Comment, error)
	AddComment(ctx context.Context, postID int, draft api.CommentDraft) (api.Comment, error)
	DeleteComment(ctx context.Context, commentID int) error
}

// Model shows one post and its comment thread.
//
// The four pieces of state (comments, loading, failed, formOpen) follow the
// rules below; the rendered output is derived from them.
//   - Post change: failed and formOpen reset; a fetch starts if there is a post.
//   - Fetch, add and delete failures set failed and never touch comments.
//   - Only the latest fetch may land; earlier answers are dropped by Seq.
type Model struct {
	svc         CommentService
	post        *api.Post
	comments    []api.Comment
	loading     bool
	failed      bool
	formOpen    bool
	form        commentform.Model
	seq         uint64
	cancelFetch context.CancelFunc
	selectedIdx int
	offsets     []int
	spinner     spinner.Model
	viewport    viewport.Model
	width       int
	height      int
}

// New creates an empty details view with no post.
func New(svc CommentService) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		svc:      svc,
		form:     commentform.New(),
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}
	m.refresh()
	return m
}

// Post returns the current post, or nil.
func (m Model) Post() *api.Post { return m.post }

// Comments returns the current comment list.
func (m Model) Comments() []api.Comment { return m.comments }

// Loading reports whether a comment fetch is in flight.
func (m Model) Loading() bool { return m.loading }

// Failed reports whether the most recent fetch, add or delete failed.
func (m Model) Failed() bool { return m.failed }

// FormOpen reports whether the comment form is displayed.
func (m Model) FormOpen() bool { return m.formOpen }

// Form returns the comment form.
func (m Model) Form() commentform.Model { return m.form }

// CapturesInput reports whether key presses belong to a text input.
func (m Model) CapturesInput() bool { return m.formOpen }

// SetSize updates the pane dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - 1
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.form.SetSize(w)
	m.refresh()
}

// SetPost switches the view to another post, or to none when post is nil.
// The error is cleared, the form closed and a fetch started.
func (m *Model) SetPost(post *api.Post) tea.Cmd {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
	m.seq++
	m.post = post
	m.failed = false
	m.formOpen = false
	m.selectedIdx = 0
	m.viewport.GotoTop()

	if post == nil {
		m.loading = false
		m.refresh()
		return nil
	}

	m.loading = true
	m.refresh()
	return tea.Batch(m.fetchComments(post.ID), m.spinner.Tick)
}

func (m *Model) fetchComments(postID int) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFetch = cancel
	seq := m.seq
	svc := m.svc
	return func() tea.Msg {
		comments, err := svc.GetComments(ctx, postID)
		return messages.CommentsLoadedMsg{PostID: postID, Seq: seq, Comments: comments, Err: err}
	}
}

// OpenForm shows the comment form.
func (m *Model) OpenForm() tea.Cmd {
	if m.formOpen {
		return nil
	}
	m.formOpen = true
	m.form = commentform.New()
	m.form.SetSize(m.width)
	m.refresh()
	return textinput.Blink
}

// DeleteComment removes a comment on the server, then locally.
func (m *Model) DeleteComment(commentID int) tea.Cmd {
	if m.post == nil {
		return nil
	}
	m.failed = false
	m.refresh()

	postID := m.post.ID
	svc := m.svc
	return func() tea.Msg {
		err := svc.DeleteComment(context.Background(), commentID)
		return messages.CommentDeletedMsg{PostID: postID, CommentID: commentID, Err: err}
	}
}

func (m *Model) addComment(draft api.CommentDraft) tea.Cmd {
	if m.post == nil {
		return nil
	}
	m.failed = false

	postID := m.post.ID
	svc := m.svc
	return func() tea.Msg {
		created, err := svc.AddComment(context.Background(), postID, draft)
		return messages.CommentAddedMsg{PostID: postID, Comment: created, Err: err}
	}
}

func (m Model) isCurrent(postID int) bool {
	return m.post != nil && m.post.ID == postID
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case messages.CommentsLoadedMsg:
		if msg.Seq != m.seq {
			log.Debug().Int("post_id", msg.PostID).Uint64("seq", msg.Seq).Msg("dropping stale comments")
			return m, nil
		}
		if m.cancelFetch != nil {
			m.cancelFetch()
			m.cancelFetch = nil
		}
		m.loading = false
		if msg.Err != nil {
			log.Error().Err(msg.Err).Int("post_id", msg.PostID).Msg("failed to load comments")
			m.failed = true
		} else {
			m.comments = msg.Comments
			m.clampSelection()
		}

	case messages.SubmitCommentMsg:
		cmd = m.addComment(msg.Draft)

	case messages.CommentAddedMsg:
		if !m.isCurrent(msg.PostID) {
			return m, nil
		}
		if m.formOpen {
			m.form, _ = m.form.Update(msg)
		}
		if msg.Err != nil {
			log.Error().Err(msg.Err).Int("post_id", msg.PostID).Msg("failed to add comment")
			m.failed = true
		} else {
			m.comments = append(append([]api.Comment(nil), m.comments...), msg.Comment)
		}

	case messages.CommentDeletedMsg:
		if !m.isCurrent(msg.PostID) {
			return m, nil
		}
		if msg.Err != nil {
			log.Error().Err(msg.Err).Int("comment_id", msg.CommentID).Msg("failed to delete comment")
			m.failed = true
		} else {
			m.comments = removeComment(m.comments, msg.CommentID)
			m.clampSelection()
		}

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)

	case tea.KeyMsg:
		if m.formOpen {
			if msg.String() == "esc" {
				m.formOpen = false
				break
			}
			m.form, cmd = m.form.Update(msg)
			break
		}
		cmd = m.handleKey(msg)

	default:
		if m.formOpen {
			m.form, cmd = m.form.Update(msg)
		}
	}

	m.refresh()
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		if m.selectedIdx < len(m.comments)-1 {
			m.selectedIdx++
			m.refresh()
			m.scrollToCursor()
		}
	case "k", "up":
		if m.selectedIdx > 0 {
			m.selectedIdx--
			m.refresh()
			m.scrollToCursor()
		}
	case "g", "home":
		m.selectedIdx = 0
		m.viewport.GotoTop()
	case "G", "end":
		if len(m.comments) > 0 {
			m.selectedIdx = len(m.comments) - 1
		}
		m.refresh()
		m.viewport.GotoBottom()
	case "d", "delete":
		if m.post != nil && !m.loading && !m.failed && m.selectedIdx >= 0 && m.selectedIdx < len(m.comments) {
			return m.DeleteComment(m.comments[m.selectedIdx].ID)
		}
	case "w":
		if m.post != nil && !m.loading {
			return m.OpenForm()
		}
	case "ctrl+d", "pgdown":
		m.viewport.HalfViewDown()
	case "ctrl+u", "pgup":
		m.viewport.HalfViewUp()
	}
	return nil
}

func removeComment(comments []api.Comment, id int) []api.Comment {
	out := make([]api.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func (m *Model) clampSelection() {
	if m.selectedIdx >= len(m.comments) {
		m.selectedIdx = len(m.comments) - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

// View renders the pane.
func (m Model) View() string {
	hint := "j/k:select  d:delete  w:write  esc:back"
	if m.formOpen {
		hint = "tab:next field  ctrl+s:add  esc:close form"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), dimStyle.Render(hint))
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.content())
}

func (m *Model) scrollToCursor() {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.offsets) {
		return
	}
	start := m.offsets[m.selectedIdx]
	if start < m.viewport.YOffset || start >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(start)
	}
}

// content builds the full pane text and records the first line of every
// rendered comment in m.offsets.
func (m *Model) content() string {
	m.offsets = nil
	if m.post == nil {
		return dimStyle.Render("No post selected")
	}

	width := m.width
	if width < 20 {
		width = 20
	}

	var sb strings.Builder
	sb.WriteString(postTitleStyle.Render(fmt.Sprintf("#%d: %s", m.post.ID, m.post.Title)))
	sb.WriteString("\n\n")
	if body := render.PlainText(m.post.Body, width); body != "" {
		sb.WriteString(postBodyStyle.Render(body))
		sb.WriteString("\n")
	}
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	sb.WriteString("\n")

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View() + " " + loadingText)
		sb.WriteString("\n")
	case m.failed:
		sb.WriteString(errorNoteStyle.Render(errorText))
		sb.WriteString("\n")
	case len(m.comments) == 0:
		sb.WriteString(headingStyle.Render(noCommentsText))
		sb.WriteString("\n")
	default:
		sb.WriteString(headingStyle.Render(commentsTitle))
		sb.WriteString("\n\n")
		m.writeComments(&sb, width)
	}

	if !m.loading && !m.formOpen {
		sb.WriteString("\n")
		sb.WriteString(writeBtnStyle.Render("[w] " + writeText))
		sb.WriteString("\n")
	}

	if m.formOpen {
		sb.WriteString("\n")
		sb.WriteString(m.form.View())
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) writeComments(sb *strings.Builder, width int) {
	m.offsets = make([]int, len(m.comments))
	line := strings.Count(sb.String(), "\n")

	for i, c := range m.comments {
		m.offsets[i] = line

		b := bar.Render("│")
		if i == m.selectedIdx {
			b = selectedBar.Render("┃")
		}

		header := render.Mailto(authorStyle.Render(c.Name), c.Email) + "  " + deleteStyle.Render("[d] delete")
		sb.WriteString(b + " " + header + "\n")
		line++

		for _, l := range strings.Split(render.PlainText(c.Body, width-2), "\n") {
			sb.WriteString(b + " " + l + "\n")
			line++
		}
		sb.WriteString("\n")
		line++
	}
}
