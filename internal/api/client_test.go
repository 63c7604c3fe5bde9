package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/", MaxConcurrent: 2})
}

func TestGetComments(t *testing.T) {
	t.Run("decodes in server order", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/comments", r.URL.Path)
			assert.Equal(t, "7", r.URL.Query().Get("postId"))
			assert.Equal(t, "postpeek/1.0", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`[
				{"id": 3, "postId": 7, "name": "Ann", "email": "ann@example.com", "body": "first"},
				{"id": 1, "postId": 7, "name": "Bob", "email": "bob@example.com", "body": "second"}
			]`))
		})

		comments, err := c.GetComments(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, 3, comments[0].ID)
		assert.Equal(t, "Ann", comments[0].Name)
		assert.Equal(t, 1, comments[1].ID)
	})

	t.Run("null body is an empty list", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		})

		comments, err := c.GetComments(context.Background(), 1)
		require.NoError(t, err)
		assert.NotNil(t, comments)
		assert.Empty(t, comments)
	})

	t.Run("server error is a StatusError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		comments, err := c.GetComments(context.Background(), 1)
		require.Error(t, err)
		assert.Nil(t, comments)

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusInternalServerError, se.Code)
		assert.Equal(t, http.MethodGet, se.Method)
	})

	t.Run("malformed json fails", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id":`))
		})

		_, err := c.GetComments(context.Background(), 1)
		assert.ErrorContains(t, err, "decoding response")
	})
}

func TestAddComment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/comments", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var got map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, float64(4), got["postId"])
		assert.Equal(t, "Ann", got["name"])
		assert.Equal(t, "ann@example.com", got["email"])
		assert.Equal(t, "hello", got["body"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 99, "postId": 4, "name": "Ann", "email": "ann@example.com", "body": "hello"}`))
	})

	created, err := c.AddComment(context.Background(), 4, CommentDraft{
		Name: "Ann", Email: "ann@example.com", Body: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, 99, created.ID)
	assert.Equal(t, 4, created.PostID)
}

func TestDeleteComment(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/comments/5", r.URL.Path)
			_, _ = w.Write([]byte(`1`))
		})
		assert.NoError(t, c.DeleteComment(context.Background(), 5))
	})

	t.Run("not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		err := c.DeleteComment(context.Background(), 5)

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusNotFound, se.Code)
	})
}

func TestGetUsersAndPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users":
			_, _ = w.Write([]byte(`[{"id": 1, "name": "Leanne", "email": "l@example.com"}]`))
		case "/posts":
			assert.Equal(t, "1", r.URL.Query().Get("userId"))
			_, _ = w.Write([]byte(`[{"id": 10, "userId": 1, "title": "t", "body": "b"}]`))
		default:
			http.NotFound(w, r)
		}
	})

	users, err := c.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Leanne", users[0].Name)

	posts, err := c.GetUserPosts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 10, posts[0].ID)
	assert.Equal(t, "t", posts[0].Title)
}

func TestBatchCommentCounts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Query().Get("postId") {
		case "1":
			_, _ = w.Write([]byte(`[{"id": 1}, {"id": 2}]`))
		case "2":
			_, _ = w.Write([]byte(`[]`))
		default:
			http.Error(w, "nope", http.StatusBadGateway)
		}
	})

	counts, err := c.BatchCommentCounts(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 2, 2: 0}, counts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBatchCommentCountsCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.BatchCommentCounts(ctx, []int{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommentDraftValidate(t *testing.T) {
	tests := []struct {
		name  string
		draft CommentDraft
		want  []string
	}{
		{"valid", CommentDraft{Name: "Ann", Email: "ann@example.com", Body: "hi"}, nil},
		{"all missing", CommentDraft{}, []string{"Name is required", "Email is required", "Body is required"}},
		{"bad email", CommentDraft{Name: "Ann", Email: "ann", Body: "hi"}, []string{"Email is invalid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.draft.Validate()
			var got []string
			for _, fe := range errs {
				got = append(got, fe.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommentDraftNormalize(t *testing.T) {
	d := CommentDraft{Name: "  Ann ", Email: " ann@example.com\n", Body: "\thi  "}.Normalize()
	assert.Equal(t, CommentDraft{Name: "Ann", Email: "ann@example.com", Body: "hi"}, d)
}
