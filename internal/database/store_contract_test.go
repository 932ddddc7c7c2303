package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"videotube-api/internal/models"
)

type userStore interface {
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	FindByIDSanitized(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type videoStore interface {
	List(ctx context.Context, q VideoQuery) ([]models.VideoListItem, error)
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	UpdateDetails(ctx context.Context, id primitive.ObjectID, title, description, thumbnail string) (*models.Video, error)
	SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type storeFixture struct {
	users  userStore
	videos videoStore
	// setClock replaces the timestamp source of both stores.
	setClock func(func() time.Time)
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func createUser(t *testing.T, store userStore, username string) *models.User {
	t.Helper()
	user := models.NewUser("Full "+username, username, username+"@example.com", "hashed")
	user.Avatar = "http://media/" + username + ".png"
	require.NoError(t, store.Create(context.Background(), &user))
	return &user
}

func createVideo(t *testing.T, store videoStore, owner primitive.ObjectID, title, description string) *models.Video {
	t.Helper()
	video := models.NewVideo(owner, title, description)
	video.VideoFile = "http://media/" + title + ".mp4"
	video.Thumbnail = "http://media/" + title + ".png"
	video.Duration = 42.5
	require.NoError(t, store.Create(context.Background(), video))
	return video
}

func titles(items []models.VideoListItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func runStoreContract(t *testing.T, newFixture func(t *testing.T) storeFixture) {
	t.Run("user create and lookup", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		created := createUser(t, f.users, "annlee")
		require.False(t, created.ID.IsZero())

		byEmail, err := f.users.FindByUsernameOrEmail(ctx, "someone-else", "annlee@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		assert.Equal(t, "hashed", byEmail.Password)

		_, err = f.users.FindByUsernameOrEmail(ctx, "nobody", "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		f := newFixture(t)
		createUser(t, f.users, "annlee")

		dup := models.NewUser("Other", "annlee", "other@example.com", "hashed")
		dup.Avatar = "http://media/other.png"
		assert.ErrorIs(t, f.users.Create(context.Background(), &dup), ErrConflict)
	})

	t.Run("sanitized read drops credentials", func(t *testing.T) {
		f := newFixture(t)
		created := createUser(t, f.users, "annlee")

		found, err := f.users.FindByIDSanitized(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "annlee", found.Username)
		assert.Equal(t, created.Avatar, found.Avatar)
		assert.Empty(t, found.Password)
		assert.Empty(t, found.RefreshToken)
		assert.True(t, created.CreatedAt.Equal(found.CreatedAt))

		_, err = f.users.FindByIDSanitized(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list sorts by creation time", func(t *testing.T) {
		f := newFixture(t)
		f.setClock(steppingClock())
		owner := createUser(t, f.users, "annlee")
		for _, title := range []string{"first", "second", "third"} {
			createVideo(t, f.videos, owner.ID, title, "about "+title)
		}

		desc, err := f.videos.List(context.Background(), VideoQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, titles(desc))

		asc, err := f.videos.List(context.Background(), VideoQuery{Page: 1, Limit: 10, SortBy: "createdAt", Ascending: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third"}, titles(asc))

		require.Len(t, asc, 3)
		assert.Equal(t, models.VideoOwner{FullName: "Full annlee", Username: "annlee", Avatar: owner.Avatar}, asc[0].CreatedBy)
		assert.Equal(t, "http://media/first.mp4", asc[0].VideoFile)
	})

	t.Run("list sorts by title", func(t *testing.T) {
		f := newFixture(t)
		owner := createUser(t, f.users, "annlee")
		for _, title := range []string{"bravo", "alpha", "charlie"} {
			createVideo(t, f.videos, owner.ID, title, "x")
		}

		items, err := f.videos.List(context.Background(), VideoQuery{Page: 1, Limit: 10, SortBy: "title", Ascending: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, titles(items))
	})

	t.Run("list pages", func(t *testing.T) {
		f := newFixture(t)
		f.setClock(steppingClock())
		owner := createUser(t, f.users, "annlee")
		for i := 1; i <= 25; i++ {
			createVideo(t, f.videos, owner.ID, fmt.Sprintf("video-%02d", i), "x")
		}

		page2, err := f.videos.List(context.Background(), VideoQuery{Page: 2, Limit: 10, Ascending: true})
		require.NoError(t, err)
		require.Len(t, page2, 10)
		assert.Equal(t, "video-11", page2[0].Title)
		assert.Equal(t, "video-20", page2[9].Title)

		page3, err := f.videos.List(context.Background(), VideoQuery{Page: 3, Limit: 10, Ascending: true})
		require.NoError(t, err)
		assert.Len(t, page3, 5)

		empty, err := f.videos.List(context.Background(), VideoQuery{Page: 9, Limit: 10})
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("list search is case-insensitive on title and description", func(t *testing.T) {
		f := newFixture(t)
		owner := createUser(t, f.users, "annlee")
		createVideo(t, f.videos, owner.ID, "Cooking Pasta", "dinner")
		createVideo(t, f.videos, owner.ID, "Gardening", "growing PASTA herbs")
		createVideo(t, f.videos, owner.ID, "Running", "cardio")

		items, err := f.videos.List(context.Background(), VideoQuery{Page: 1, Limit: 10, Search: "pasta", SortBy: "title", Ascending: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"Cooking Pasta", "Gardening"}, titles(items))
	})

	t.Run("list search treats input literally", func(t *testing.T) {
		f := newFixture(t)
		owner := createUser(t, f.users, "annlee")
		createVideo(t, f.videos, owner.ID, "C++ basics", "x")
		createVideo(t, f.videos, owner.ID, "Cooking", "x")

		items, err := f.videos.List(context.Background(), VideoQuery{Page: 1, Limit: 10, Search: "c++"})
		require.NoError(t, err)
		assert.Equal(t, []string{"C++ basics"}, titles(items))
	})

	t.Run("list drops videos without an owner", func(t *testing.T) {
		f := newFixture(t)
		owner := createUser(t, f.users, "annlee")
		createVideo(t, f.videos, owner.ID, "kept", "x")
		createVideo(t, f.videos, primitive.NewObjectID(), "orphan", "x")

		items, err := f.videos.List(context.Background(), VideoQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"kept"}, titles(items))
	})

	t.Run("list filters by owner", func(t *testing.T) {
		f := newFixture(t)
		ann := createUser(t, f.users, "annlee")
		bob := createUser(t, f.users, "bob")
		createVideo(t, f.videos, ann.ID, "ann's", "x")
		createVideo(t, f.videos, bob.ID, "bob's", "x")

		items, err := f.videos.List(context.Background(), VideoQuery{Page: 1, Limit: 10, OwnerID: &bob.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"bob's"}, titles(items))
	})

	t.Run("video lifecycle", func(t *testing.T) {
		f := newFixture(t)
		f.setClock(steppingClock())
		ctx := context.Background()
		owner := createUser(t, f.users, "annlee")
		video := createVideo(t, f.videos, owner.ID, "original", "first cut")

		found, err := f.videos.FindByID(ctx, video.ID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, found.Owner)
		assert.True(t, found.IsPublished)
		assert.InDelta(t, 42.5, found.Duration, 0.001)

		updated, err := f.videos.UpdateDetails(ctx, video.ID, "renamed", "second cut", "http://media/new.png")
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Title)
		assert.Equal(t, "second cut", updated.Description)
		assert.Equal(t, "http://media/new.png", updated.Thumbnail)
		assert.Equal(t, video.VideoFile, updated.VideoFile)
		assert.True(t, updated.UpdatedAt.After(found.UpdatedAt))

		toggled, err := f.videos.SetPublished(ctx, video.ID, false)
		require.NoError(t, err)
		assert.False(t, toggled.IsPublished)
		toggled, err = f.videos.SetPublished(ctx, video.ID, true)
		require.NoError(t, err)
		assert.True(t, toggled.IsPublished)

		require.NoError(t, f.videos.Delete(ctx, video.ID))
		_, err = f.videos.FindByID(ctx, video.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, f.videos.Delete(ctx, video.ID), ErrNotFound)
	})

	t.Run("missing video", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		id := primitive.NewObjectID()

		_, err := f.videos.FindByID(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.videos.UpdateDetails(ctx, id, "t", "d", "th")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.videos.SetPublished(ctx, id, false)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
