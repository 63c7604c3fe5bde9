package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fragmede/postpeek/internal/api"
)

// GetUserPosts retrieves the cached posts of a user in server order.
// Returns (posts, isFresh, error). posts is nil on cache miss.
func (d *DB) GetUserPosts(userID int, ttl time.Duration) ([]api.Post, bool, error) {
	row := d.db.QueryRow(`SELECT post_ids, fetched_at FROM post_lists WHERE user_id = ?`, userID)

	var idsJSON string
	var fetchedAt int64
	err := row.Scan(&idsJSON, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ids []int
	if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
		return nil, false, err
	}

	posts := make([]api.Post, 0, len(ids))
	for _, id := range ids {
		p, err := d.GetPost(id)
		if err != nil {
			return nil, false, err
		}
		if p == nil {
			// List and rows out of sync; treat as a miss.
			return nil, false, nil
		}
		posts = append(posts, *p)
	}

	isFresh := time.Since(time.Unix(fetchedAt, 0)) < ttl
	return posts, isFresh, nil
}

// GetPost retrieves one cached post. Returns nil on cache miss.
func (d *DB) GetPost(id int) (*api.Post, error) {
	row := d.db.QueryRow(`SELECT id, user_id, title, body FROM posts WHERE id = ?`, id)

	var p api.Post
	var title, body sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &title, &body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Title = title.String
	p.Body = body.String
	return &p, nil
}

// PutUserPosts stores the posts of a user and the list order.
func (d *DB) PutUserPosts(userID int, posts []api.Post) error {
	ids := make([]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, p := range posts {
		_, err := tx.Exec(`INSERT OR REPLACE INTO posts (id, user_id, title, body, fetched_at) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.UserID, nullStr(p.Title), nullStr(p.Body), now)
		if err != nil {
			return fmt.Errorf("storing post %d: %w", p.ID, err)
		}
	}
	_, err = tx.Exec(`INSERT OR REPLACE INTO post_lists (user_id, post_ids, fetched_at) VALUES (?, ?, ?)`,
		userID, string(idsJSON), now)
	if err != nil {
		return fmt.Errorf("storing post list of user %d: %w", userID, err)
	}
	return tx.Commit()
}

// InvalidateUserPosts drops the cached post list of a user so the next
// read misses.
func (d *DB) InvalidateUserPosts(userID int) error {
	_, err := d.db.Exec(`DELETE FROM post_lists WHERE user_id = ?`, userID)
	return err
}
