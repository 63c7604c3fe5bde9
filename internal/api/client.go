package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL        = "https://mate.academy/students-api"
	DefaultRequestTimeout = 10 * time.Second
	DefaultMaxConcurrent  = 8

	userAgent = "postpeek/1.0"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code   int
	Method string
	URL    string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s %s: %s", e.Code, e.Method, e.URL, e.Body)
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	MaxConcurrent int
	HTTPClient    *http.Client
}

// Client is the posts/comments API client.
type Client struct {
	http          *http.Client
	baseURL       string
	maxConcurrent int
}

// NewClient creates a new API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultRequestTimeout
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		http:          hc,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		maxConcurrent: opts.MaxConcurrent,
	}
}

// do sends a request with an optional JSON body and decodes the JSON
// response into dst when dst is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, dst interface{}) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Method: method, URL: url, Body: string(msg)}
	}

	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// GetUsers fetches all users.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}
	return users, nil
}

// GetUserPosts fetches the posts written by one user.
func (c *Client) GetUserPosts(ctx context.Context, userID int) ([]Post, error) {
	var posts []Post
	path := fmt.Sprintf("/posts?userId=%d", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &posts); err != nil {
		return nil, fmt.Errorf("fetching posts of user %d: %w", userID, err)
	}
	return posts, nil
}

// GetComments fetches the comments of a post in server order.
// It fails as a whole; there are no partial results.
func (c *Client) GetComments(ctx context.Context, postID int) ([]Comment, error) {
	var comments []Comment
	path := fmt.Sprintf("/comments?postId=%d", postID)
	if err := c.do(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, fmt.Errorf("fetching comments of post %d: %w", postID, err)
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

// AddComment creates a comment on a post and returns it with its assigned id.
func (c *Client) AddComment(ctx context.Context, postID int, draft CommentDraft) (Comment, error) {
	var created Comment
	body := newComment{PostID: postID, CommentDraft: draft}
	if err := c.do(ctx, http.MethodPost, "/comments", body, &created); err != nil {
		return Comment{}, fmt.Errorf("adding comment to post %d: %w", postID, err)
	}
	return created, nil
}

// DeleteComment removes a comment by ID.
func (c *Client) DeleteComment(ctx context.Context, commentID int) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil, nil); err != nil {
		return fmt.Errorf("deleting comment %d: %w", commentID, err)
	}
	return nil
}

// BatchCommentCounts fetches comment counts for many posts concurrently with
// a concurrency limit. Posts whose fetch failed are missing from the result.
func (c *Client) BatchCommentCounts(ctx context.Context, postIDs []int) (map[int]int, error) {
	counts := make(map[int]int, len(postIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for _, id := range postIDs {
		g.Go(func() error {
			comments, err := c.GetComments(gctx, id)
			if err != nil {
				// Non-fatal: the badge is just left out.
				log.Debug().Err(err).Int("post_id", id).Msg("comment count unavailable")
				return nil
			}
			mu.Lock()
			counts[id] = len(comments)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
