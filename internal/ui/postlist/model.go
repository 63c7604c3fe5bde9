package postlist

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/fragmede/postpeek/internal/api"
	"github.com/fragmede/postpeek/internal/cache"
	"github.com/fragmede/postpeek/internal/config"
	"github.com/fragmede/postpeek/internal/ui/messages"
)

// Source is the part of the API client the post list reads from.
type Source interface {
	GetUsers(ctx context.Context) ([]api.User, error)
	GetUserPosts(ctx context.Context, userID int) ([]api.Post, error)
	BatchCommentCounts(ctx context.Context, postIDs []int) (map[int]int, error)
}

// Model is the post list view.
type Model struct {
	list    list.Model
	users   []api.User
	userIdx int
	openID  int
	source  Source
	cache   *cache.DB
	cfg     config.Config
	loading bool
	width   int
	height  int
}

// New creates a new post list model. db may be nil, which disables caching.
func New(cfg config.Config, source Source, db *cache.DB) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = "Loading users..."
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("post", "posts")
	l.KeyMap.Quit.SetEnabled(false)

	return Model{
		list:    l,
		source:  source,
		cache:   db,
		cfg:     cfg,
		loading: true,
	}
}

// Init loads the users.
func (m Model) Init() tea.Cmd {
	return m.loadUsers()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h)
}

// CurrentUser returns the user whose posts are shown, if any.
func (m Model) CurrentUser() (api.User, bool) {
	if m.userIdx < 0 || m.userIdx >= len(m.users) {
		return api.User{}, false
	}
	return m.users[m.userIdx], true
}

// Users returns the loaded users in server order.
func (m Model) Users() []api.User {
	return m.users
}

// OpenPostID returns the id of the post shown in the details pane, or 0.
func (m Model) OpenPostID() int {
	return m.openID
}

// Loading reports whether users or posts are being fetched.
func (m Model) Loading() bool {
	return m.loading
}

// Filtering reports whether the list filter input has the keyboard.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Items returns the posts currently listed.
func (m Model) Items() []PostItem {
	items := m.list.Items()
	out := make([]PostItem, 0, len(items))
	for _, it := range items {
		if p, ok := it.(PostItem); ok {
			out = append(out, p)
		}
	}
	return out
}

// SetCommentCount updates the badge of one post.
func (m *Model) SetCommentCount(postID, n int) {
	for i, it := range m.list.Items() {
		p, ok := it.(PostItem)
		if !ok || p.Post.ID != postID {
			continue
		}
		p.Comments = n
		m.list.SetItem(i, p)
		return
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.UsersLoadedMsg:
		if msg.Err != nil {
			log.Error().Err(msg.Err).Msg("loading users")
			m.list.Title = "Error: " + msg.Err.Error()
			m.loading = false
			return m, nil
		}
		m.users = msg.Users
		m.userIdx = 0
		if len(m.users) == 0 {
			m.list.Title = "No users"
			m.loading = false
			return m, nil
		}
		return m, m.switchUser(0)

	case messages.SwitchUserMsg:
		for i, u := range m.users {
			if u.ID == msg.UserID {
				return m, m.switchUser(i)
			}
		}
		return m, nil

	case messages.PostsLoadedMsg:
		user, ok := m.CurrentUser()
		if !ok || msg.UserID != user.ID {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			log.Error().Err(msg.Err).Int("user_id", msg.UserID).Msg("loading posts")
			m.list.Title = "Error: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Posts))
		for _, p := range msg.Posts {
			items = append(items, PostItem{Post: p, Comments: -1, Open: p.ID == m.openID})
		}
		m.list.Title = userTitle(user)
		cmd := m.list.SetItems(items)
		return m, tea.Batch(cmd, m.loadCounts(user.ID, msg.Posts))

	case messages.CommentCountsLoadedMsg:
		user, ok := m.CurrentUser()
		if !ok || msg.UserID != user.ID {
			return m, nil
		}
		if msg.Err != nil {
			log.Debug().Err(msg.Err).Int("user_id", msg.UserID).Msg("comment counts unavailable")
			return m, nil
		}
		for id, n := range msg.Counts {
			m.SetCommentCount(id, n)
		}
		return m, nil

	case messages.SelectPostMsg:
		m.openID = 0
		if msg.Post != nil {
			m.openID = msg.Post.ID
		}
		m.markOpen()
		return m, nil

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "tab":
			if len(m.users) > 1 {
				return m, m.switchUser((m.userIdx + 1) % len(m.users))
			}
			return m, nil
		case "shift+tab":
			if len(m.users) > 1 {
				return m, m.switchUser((m.userIdx - 1 + len(m.users)) % len(m.users))
			}
			return m, nil
		case "enter":
			item, ok := m.list.SelectedItem().(PostItem)
			if !ok {
				return m, nil
			}
			post := item.Post
			if post.ID == m.openID {
				return m, selectPost(nil)
			}
			return m, selectPost(&post)
		case "r", "ctrl+r":
			user, ok := m.CurrentUser()
			if !ok {
				return m, nil
			}
			m.loading = true
			m.list.Title = userTitle(user) + " (refreshing...)"
			return m, m.loadPostsForce(user.ID)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the post list.
func (m Model) View() string {
	return m.list.View()
}

// switchUser shows the posts of users[idx]. An open post belongs to the
// previous user, so it is closed.
func (m *Model) switchUser(idx int) tea.Cmd {
	m.userIdx = idx
	user := m.users[idx]
	m.loading = true
	m.list.Title = userTitle(user) + " (loading...)"
	m.list.ResetFilter()
	reset := m.list.SetItems(nil)

	cmds := []tea.Cmd{reset, m.loadPosts(user.ID)}
	if m.openID != 0 {
		m.openID = 0
		cmds = append(cmds, selectPost(nil))
	}
	return tea.Batch(cmds...)
}

func (m *Model) markOpen() {
	for i, it := range m.list.Items() {
		p, ok := it.(PostItem)
		if !ok {
			continue
		}
		open := p.Post.ID == m.openID
		if p.Open != open {
			p.Open = open
			m.list.SetItem(i, p)
		}
	}
}

func selectPost(p *api.Post) tea.Cmd {
	return func() tea.Msg {
		return messages.SelectPostMsg{Post: p}
	}
}

func userTitle(u api.User) string {
	return "Posts of " + u.Name
}

func (m Model) loadUsers() tea.Cmd {
	source := m.source
	db := m.cache
	ttl := m.cfg.Cache.UsersTTL

	return func() tea.Msg {
		var cached []api.User
		if db != nil {
			users, fresh, err := db.GetUsers(ttl)
			if err != nil {
				log.Warn().Err(err).Msg("reading cached users")
			}
			if fresh && len(users) > 0 {
				return messages.UsersLoadedMsg{Users: users}
			}
			cached = users
		}

		users, err := source.GetUsers(context.Background())
		if err != nil {
			if len(cached) > 0 {
				log.Warn().Err(err).Msg("using stale users")
				return messages.UsersLoadedMsg{Users: cached}
			}
			return messages.UsersLoadedMsg{Err: err}
		}
		if db != nil {
			if err := db.PutUsers(users); err != nil {
				log.Warn().Err(err).Msg("caching users")
			}
		}
		return messages.UsersLoadedMsg{Users: users}
	}
}

func (m Model) loadPosts(userID int) tea.Cmd {
	source := m.source
	db := m.cache
	ttl := m.cfg.Cache.PostsTTL

	return func() tea.Msg {
		var cached []api.Post
		if db != nil {
			posts, fresh, err := db.GetUserPosts(userID, ttl)
			if err != nil {
				log.Warn().Err(err).Int("user_id", userID).Msg("reading cached posts")
			}
			if fresh && posts != nil {
				return messages.PostsLoadedMsg{UserID: userID, Posts: posts}
			}
			cached = posts
		}
		return fetchAndCache(userID, source, db, cached)
	}
}

func (m Model) loadPostsForce(userID int) tea.Cmd {
	source := m.source
	db := m.cache

	return func() tea.Msg {
		if db != nil {
			if err := db.InvalidateUserPosts(userID); err != nil {
				log.Warn().Err(err).Int("user_id", userID).Msg("invalidating cached posts")
			}
		}
		return fetchAndCache(userID, source, db, nil)
	}
}

func fetchAndCache(userID int, source Source, db *cache.DB, fallback []api.Post) messages.PostsLoadedMsg {
	posts, err := source.GetUserPosts(context.Background(), userID)
	if err != nil {
		if fallback != nil {
			log.Warn().Err(err).Int("user_id", userID).Msg("using stale posts")
			return messages.PostsLoadedMsg{UserID: userID, Posts: fallback}
		}
		return messages.PostsLoadedMsg{UserID: userID, Err: err}
	}
	if db != nil {
		if err := db.PutUserPosts(userID, posts); err != nil {
			log.Warn().Err(err).Int("user_id", userID).Msg("caching posts")
		}
	}
	return messages.PostsLoadedMsg{UserID: userID, Posts: posts}
}

func (m Model) loadCounts(userID int, posts []api.Post) tea.Cmd {
	if len(posts) == 0 {
		return nil
	}
	source := m.source
	ids := make([]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return func() tea.Msg {
		counts, err := source.BatchCommentCounts(context.Background(), ids)
		return messages.CommentCountsLoadedMsg{UserID: userID, Counts: counts, Err: err}
	}
}
