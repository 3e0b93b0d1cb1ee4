package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clubPage struct {
	Name      string `json:"name"`
	Followers int    `json:"followers"`
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(Close)
	return mr
}

func TestRemember_CachesLoadedValue(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (clubPage, error) {
		calls++
		return clubPage{Name: "Chess Club", Followers: 3}, nil
	}

	first, err := Remember(ctx, "club_page", ClubPageKey("Chess_Club"), time.Minute, load)
	require.NoError(t, err)
	second, err := Remember(ctx, "club_page", ClubPageKey("Chess_Club"), time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("club:page:Chess_Club"))

	InvalidateClub(ctx, "Chess_Club")
	assert.False(t, mr.Exists("club:page:Chess_Club"))

	_, err = Remember(ctx, "club_page", ClubPageKey("Chess_Club"), time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRemember_DoesNotCacheErrors(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	_, err := Remember(ctx, "club_page", "k", time.Minute, func(context.Context) (clubPage, error) {
		return clubPage{}, errors.New("boom")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("k"))
}

func TestRemember_WithoutClient(t *testing.T) {
	SetClient(nil)
	v, err := Remember(context.Background(), "club_page", "k", time.Minute, func(context.Context) (int, error) {
		return 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestRevoke(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	assert.False(t, IsRevoked(ctx, "abc"))
	require.NoError(t, Revoke(ctx, "abc", time.Hour))
	assert.True(t, IsRevoked(ctx, "abc"))

	mr.FastForward(2 * time.Hour)
	assert.False(t, IsRevoked(ctx, "abc"))
}
