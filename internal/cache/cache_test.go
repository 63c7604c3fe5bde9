package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/postpeek/internal/api"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUsersRoundTrip(t *testing.T) {
	db := openTestDB(t)

	users, fresh, err := db.GetUsers(time.Hour)
	require.NoError(t, err)
	assert.Nil(t, users)
	assert.False(t, fresh)

	want := []api.User{
		{ID: 3, Name: "Clementine", Email: "c@example.com"},
		{ID: 1, Name: "Leanne", Phone: "555"},
	}
	require.NoError(t, db.PutUsers(want))

	users, fresh, err = db.GetUsers(time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, want, users)

	_, fresh, err = db.GetUsers(0)
	require.NoError(t, err)
	assert.False(t, fresh, "zero ttl is never fresh")
}

func TestPutUsersReplacesList(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.PutUsers([]api.User{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}))
	require.NoError(t, db.PutUsers([]api.User{{ID: 2, Name: "b2"}}))

	users, _, err := db.GetUsers(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []api.User{{ID: 2, Name: "b2"}}, users)
}

func TestUserPosts(t *testing.T) {
	db := openTestDB(t)

	posts := []api.Post{
		{ID: 12, UserID: 1, Title: "second", Body: "b2"},
		{ID: 11, UserID: 1, Title: "first", Body: "b1"},
	}
	require.NoError(t, db.PutUserPosts(1, posts))

	got, fresh, err := db.GetUserPosts(1, time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, posts, got, "order is preserved")

	p, err := db.GetPost(11)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "first", p.Title)

	missing, err := db.GetPost(404)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, db.InvalidateUserPosts(1))
	got, fresh, err = db.GetUserPosts(1, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, fresh)
}

func TestEmptyPostList(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.PutUserPosts(9, nil))
	got, fresh, err := db.GetUserPosts(9, time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Empty(t, got)
}
