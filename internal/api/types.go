package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// User is an author of posts.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Post is a single post. Read-only from this client.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Comment is a reply belonging to exactly one post.
type Comment struct {
	ID     int    `json:"id"`
	PostID int    `json:"postId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
}

// CommentDraft holds the user-entered fields of a comment that has no id yet.
type CommentDraft struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Body  string `json:"body" validate:"required"`
}

// newComment is the POST /comments request body.
type newComment struct {
	PostID int `json:"postId"`
	CommentDraft
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes one invalid draft field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// Normalize returns the draft with surrounding whitespace trimmed.
func (d CommentDraft) Normalize() CommentDraft {
	return CommentDraft{
		Name:  strings.TrimSpace(d.Name),
		Email: strings.TrimSpace(d.Email),
		Body:  strings.TrimSpace(d.Body),
	}
}

// Validate checks the draft and returns one FieldError per invalid field,
// in field declaration order. A nil slice means the draft is valid.
func (d CommentDraft) Validate() []FieldError {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe.Field(), fe.Tag()),
		})
	}
	return out
}

func fieldMessage(field, tag string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " is invalid"
	default:
		return fmt.Sprintf("%s failed %q", field, tag)
	}
}
