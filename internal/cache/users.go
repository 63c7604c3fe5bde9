package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fragmede/postpeek/internal/api"
)

// GetUsers returns the cached user list in server order.
// Returns (users, isFresh, error); users is nil on cache miss.
func (d *DB) GetUsers(ttl time.Duration) ([]api.User, bool, error) {
	rows, err := d.db.Query(`SELECT id, name, email, phone, fetched_at FROM users ORDER BY position ASC`)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var users []api.User
	var oldest int64
	for rows.Next() {
		var u api.User
		var email, phone sql.NullString
		var fetchedAt int64
		if err := rows.Scan(&u.ID, &u.Name, &email, &phone, &fetchedAt); err != nil {
			return nil, false, err
		}
		u.Email = email.String
		u.Phone = phone.String
		if oldest == 0 || fetchedAt < oldest {
			oldest = fetchedAt
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(users) == 0 {
		return nil, false, nil
	}

	isFresh := time.Since(time.Unix(oldest, 0)) < ttl
	return users, isFresh, nil
}

// PutUsers replaces the cached user list.
func (d *DB) PutUsers(users []api.User) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM users`); err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}
	now := time.Now().Unix()
	for i, u := range users {
		_, err := tx.Exec(`INSERT INTO users (id, name, email, phone, position, fetched_at) VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID, u.Name, nullStr(u.Email), nullStr(u.Phone), i, now)
		if err != nil {
			return fmt.Errorf("storing user %d: %w", u.ID, err)
		}
	}
	return tx.Commit()
}
