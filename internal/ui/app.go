package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/postpeek/internal/cache"
	"github.com/fragmede/postpeek/internal/config"
	"github.com/fragmede/postpeek/internal/ui/messages"
	"github.com/fragmede/postpeek/internal/ui/postdetails"
	"github.com/fragmede/postpeek/internal/ui/postlist"
	"github.com/fragmede/postpeek/internal/ui/statusbar"
)

// Pane identifies the pane that receives key presses.
type Pane int

const (
	PaneList Pane = iota
	PaneDetails
)

// Service is everything the app needs from the API.
type Service interface {
	postlist.Source
	postdetails.CommentService
}

// App is the root Bubble Tea model.
type App struct {
	focus Pane

	// Child models
	postList  postlist.Model
	details   postdetails.Model
	statusBar statusbar.Model

	// Dimensions
	width  int
	height int
}

// NewApp creates the root application model. db may be nil.
func NewApp(cfg config.Config, svc Service, db *cache.DB) *App {
	sb := statusbar.New()
	sb.SetHint(listHint())
	return &App{
		focus:     PaneList,
		postList:  postlist.New(cfg, svc, db),
		details:   postdetails.New(svc),
		statusBar: sb,
	}
}

// Init starts the application.
func (a *App) Init() tea.Cmd {
	return a.postList.Init()
}

// Focus returns the pane that has the keyboard.
func (a *App) Focus() Pane {
	return a.focus
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case messages.SelectPostMsg:
		a.postList, _ = a.postList.Update(msg)
		cmd := a.details.SetPost(msg.Post)
		if msg.Post != nil {
			a.setFocus(PaneDetails)
		} else {
			a.setFocus(PaneList)
		}
		a.statusBar.SetStatus("", false)
		return a, cmd

	case messages.FocusListMsg:
		a.setFocus(PaneList)
		return a, nil

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
		return a, nil

	case messages.UsersLoadedMsg, messages.PostsLoadedMsg,
		messages.CommentCountsLoadedMsg, messages.SwitchUserMsg:
		var cmd tea.Cmd
		a.postList, cmd = a.postList.Update(msg)
		a.syncUsers()
		return a, cmd

	case messages.CommentAddedMsg:
		if !a.showingPost(msg.PostID) {
			break
		}
		if msg.Err != nil {
			a.statusBar.SetStatus("Could not add the comment", true)
		} else {
			a.statusBar.SetStatus("Comment added", false)
		}

	case messages.CommentDeletedMsg:
		if !a.showingPost(msg.PostID) {
			break
		}
		if msg.Err != nil {
			a.statusBar.SetStatus("Could not delete the comment", true)
		} else {
			a.statusBar.SetStatus("Comment deleted", false)
		}
	}

	// Comment results, spinner and cursor ticks.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.details, cmd = a.details.Update(msg)
	cmds = append(cmds, cmd)
	a.postList, cmd = a.postList.Update(msg)
	cmds = append(cmds, cmd)
	a.syncCount()

	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	var cmd tea.Cmd
	switch a.focus {
	case PaneDetails:
		if a.details.CapturesInput() {
			a.details, cmd = a.details.Update(msg)
			return cmd
		}
		switch {
		case key.Matches(msg, Keys.Quit):
			return tea.Quit
		case key.Matches(msg, Keys.Back):
			a.setFocus(PaneList)
			return nil
		}
		a.details, cmd = a.details.Update(msg)
		a.syncCount()
		return cmd

	default:
		if a.postList.Filtering() {
			a.postList, cmd = a.postList.Update(msg)
			return cmd
		}
		switch {
		case key.Matches(msg, Keys.Quit):
			return tea.Quit
		case key.Matches(msg, Keys.Focus):
			if a.details.Post() != nil {
				a.setFocus(PaneDetails)
			}
			return nil
		}
		a.postList, cmd = a.postList.Update(msg)
		a.syncUsers()
		return cmd
	}
}

// View renders the application.
func (a *App) View() string {
	if a.width == 0 {
		return ""
	}
	listW, detailsW, h := a.layout()
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		pane(a.postList.View(), listW, h, a.focus == PaneList),
		pane(a.details.View(), detailsW, h, a.focus == PaneDetails),
	)
	return lipgloss.JoinVertical(lipgloss.Left, panes, a.statusBar.View())
}

// layout splits the screen: the list gets two fifths, at least 30 columns.
// One line is reserved for the status bar.
func (a *App) layout() (listW, detailsW, h int) {
	listW = a.width * 2 / 5
	if listW < 30 {
		listW = min(30, a.width)
	}
	return listW, a.width - listW, a.height - 1
}

func (a *App) resize() {
	listW, detailsW, h := a.layout()
	fw, fh := PaneStyle.GetFrameSize()
	a.postList.SetSize(max(listW-fw, 0), max(h-fh, 0))
	a.details.SetSize(max(detailsW-fw, 0), max(h-fh, 0))
	a.statusBar.SetSize(a.width)
}

func (a *App) setFocus(p Pane) {
	a.focus = p
	if p == PaneList {
		a.statusBar.SetHint(listHint())
		return
	}
	a.statusBar.SetHint("")
}

func (a *App) syncUsers() {
	if u, ok := a.postList.CurrentUser(); ok {
		a.statusBar.SetActiveUser(u.ID)
	}
	a.statusBar.SetUsers(a.postList.Users())
}

// showingPost reports whether the details pane shows the post with id.
// Results for any other post are dropped by the pane.
func (a *App) showingPost(id int) bool {
	post := a.details.Post()
	return post != nil && post.ID == id
}

// syncCount copies the details pane's confirmed comment count into the
// list badge of the open post.
func (a *App) syncCount() {
	post := a.details.Post()
	if post == nil || a.details.Loading() || a.details.Failed() {
		return
	}
	a.postList.SetCommentCount(post.ID, len(a.details.Comments()))
}
