package messages

import "github.com/fragmede/postpeek/internal/api"

// View transition messages.
type (
	// SelectPostMsg changes the post shown in the details pane.
	// A nil Post clears the selection.
	SelectPostMsg struct{ Post *api.Post }
	FocusListMsg  struct{}
	SwitchUserMsg struct{ UserID int }
)

// Data messages.
type (
	UsersLoadedMsg struct {
		Users []api.User
		Err   error
	}

	PostsLoadedMsg struct {
		UserID int
		Posts  []api.Post
		Err    error
	}

	CommentCountsLoadedMsg struct {
		UserID int
		Counts map[int]int
		Err    error
	}

	// CommentsLoadedMsg answers a comment fetch. Seq identifies the fetch;
	// answers for anything but the latest fetch are stale.
	CommentsLoadedMsg struct {
		PostID   int
		Seq      uint64
		Comments []api.Comment
		Err      error
	}

	// SubmitCommentMsg is emitted by the comment form on a valid submit.
	SubmitCommentMsg struct {
		Draft api.CommentDraft
	}

	CommentAddedMsg struct {
		PostID  int
		Comment api.Comment
		Err     error
	}

	CommentDeletedMsg struct {
		PostID    int
		CommentID int
		Err       error
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
