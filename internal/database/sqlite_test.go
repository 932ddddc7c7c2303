package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStores(t *testing.T) {
	runStoreContract(t, func(t *testing.T) storeFixture {
		db, err := OpenSQLite(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		users := NewSQLiteUserStore(db)
		videos := NewSQLiteVideoStore(db)
		return storeFixture{
			users:  users,
			videos: videos,
			setClock: func(now func() time.Time) {
				users.now = now
				videos.now = now
			},
		}
	})
}

func TestOpenSQLiteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videotube.db")

	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	createUser(t, NewSQLiteUserStore(db), "annlee")
	require.NoError(t, db.Close())

	db, err = OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	found, err := NewSQLiteUserStore(db).FindByUsernameOrEmail(context.Background(), "annlee", "")
	require.NoError(t, err)
	assert.Equal(t, "annlee@example.com", found.Email)
}

func TestSQLiteTimeRoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 600, time.FixedZone("x", 3600))

	parsed, err := parseTime(formatTime(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))
	assert.Equal(t, time.UTC, parsed.Location())

	_, err = parseTime("yesterday")
	assert.Error(t, err)
}
