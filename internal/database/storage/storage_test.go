package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/BlogApp/internal/database/dbtest"
	"github.com/GoArmGo/BlogApp/internal/database/storage"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/logger"
)

func newStorages(t *testing.T) (*storage.UserStorage, *storage.PostStorage) {
	t.Helper()
	db := dbtest.Open(t)
	log := logger.Discard()
	return storage.NewUserStorage(db, log), storage.NewPostStorage(db, log)
}

func createUser(t *testing.T, users *storage.UserStorage, name string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:  name,
		Email:     name + "@example.com",
		Password:  "$2a$10$hash",
		ImageFile: domain.DefaultImageFile,
	}
	require.NoError(t, users.CreateUser(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func TestUserStorage_CreateAndGet(t *testing.T) {
	users, _ := newStorages(t)
	ctx := context.Background()

	u := createUser(t, users, "alice")

	byID, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, domain.DefaultImageFile, byID.ImageFile)

	byEmail, err := users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
}

func TestUserStorage_NotFound(t *testing.T) {
	users, _ := newStorages(t)
	ctx := context.Background()

	_, err := users.GetUserByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = users.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, users.UpdatePassword(ctx, 42, "x"), domain.ErrNotFound)
}

func TestUserStorage_DuplicateIsConflict(t *testing.T) {
	users, _ := newStorages(t)
	ctx := context.Background()
	createUser(t, users, "alice")

	err := users.CreateUser(ctx, &domain.User{
		Username: "alice",
		Email:    "other@example.com",
		Password: "x",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = users.CreateUser(ctx, &domain.User{
		Username: "other",
		Email:    "alice@example.com",
		Password: "x",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserStorage_UpdateProfileAndPassword(t *testing.T) {
	users, _ := newStorages(t)
	ctx := context.Background()
	u := createUser(t, users, "alice")

	require.NoError(t, users.UpdateProfile(ctx, u.ID, "alicia", "alicia@example.com", "0123456789abcdef.png"))
	require.NoError(t, users.UpdatePassword(ctx, u.ID, "$2a$10$newhash"))

	got, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)
	assert.Equal(t, "alicia@example.com", got.Email)
	assert.Equal(t, "0123456789abcdef.png", got.ImageFile)
	assert.Equal(t, "$2a$10$newhash", got.Password)
}

func TestPostStorage_CRUD(t *testing.T) {
	users, posts := newStorages(t)
	ctx := context.Background()
	author := createUser(t, users, "alice")

	p := &domain.Post{Title: "Hello", Content: "World", UserID: author.ID}
	require.NoError(t, posts.CreatePost(ctx, p))
	require.NotZero(t, p.ID)
	assert.False(t, p.DatePosted.IsZero())

	got, err := posts.GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "World", got.Content)
	assert.Equal(t, "alice", got.Author.Username)

	require.NoError(t, posts.UpdatePost(ctx, p.ID, "Hi", "There"))
	got, err = posts.GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", got.Title)
	assert.Equal(t, "There", got.Content)

	require.NoError(t, posts.DeletePost(ctx, p.ID))
	_, err = posts.GetPostByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, posts.DeletePost(ctx, p.ID), domain.ErrNotFound)
}

func TestPostStorage_ListPostsNewestFirst(t *testing.T) {
	users, posts := newStorages(t)
	ctx := context.Background()
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, author := range []*domain.User{alice, bob, alice, bob, alice} {
		require.NoError(t, posts.CreatePost(ctx, &domain.Post{
			Title:      string(rune('A' + i)),
			Content:    "c",
			UserID:     author.ID,
			DatePosted: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page1, total, err := posts.ListPosts(ctx, 0, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 2)
	assert.Equal(t, "E", page1[0].Title)
	assert.Equal(t, "D", page1[1].Title)
	assert.Equal(t, "bob", page1[1].Author.Username)

	page3, _, err := posts.ListPosts(ctx, 0, 4, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "A", page3[0].Title)

	mine, total, err := posts.ListPosts(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, mine, 3)
	assert.Equal(t, []string{"E", "C", "A"}, []string{mine[0].Title, mine[1].Title, mine[2].Title})
}
