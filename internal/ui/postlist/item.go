package postlist

import (
	"fmt"

	"github.com/fragmede/postpeek/internal/api"
)

// PostItem wraps a post for the bubbles list.
type PostItem struct {
	api.Post
	// Comments is the comment count, or -1 while unknown.
	Comments int
	Open     bool
}

func (p PostItem) Title() string {
	return fmt.Sprintf("#%d %s", p.Post.ID, p.Post.Title)
}

func (p PostItem) Description() string {
	switch {
	case p.Comments < 0:
		return ""
	case p.Comments == 1:
		return "1 comment"
	default:
		return fmt.Sprintf("%d comments", p.Comments)
	}
}

func (p PostItem) FilterValue() string {
	return p.Post.Title
}
