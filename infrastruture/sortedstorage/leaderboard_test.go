package sortedstorage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLeaderboard(t *testing.T) (*RedisLeaderboard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lb, err := NewRedisLeaderboard(client, time.Hour)
	require.NoError(t, err)
	return lb, mr
}

func TestRedisLeaderboard(t *testing.T) {
	ctx := context.Background()
	board := game.Config{Rows: 9, Cols: 9, Mines: 10}
	alice, bob := uuid.New(), uuid.New()

	t.Run("Keeps the best time", func(t *testing.T) {
		lb, mr := newLeaderboard(t)

		require.NoError(t, lb.Submit(ctx, board, alice, 40*time.Second))
		require.NoError(t, lb.Submit(ctx, board, alice, 55*time.Second))
		require.NoError(t, lb.Submit(ctx, board, alice, 30*time.Second))

		entry, ok, err := lb.Rank(ctx, board, alice)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 30*time.Second, entry.Duration)
		assert.Equal(t, int64(1), entry.Rank)
		assert.Equal(t, time.Hour, mr.TTL("mines:leaderboard:9x9:10"))
	})

	t.Run("Orders fastest first", func(t *testing.T) {
		lb, _ := newLeaderboard(t)
		require.NoError(t, lb.Submit(ctx, board, alice, 40*time.Second))
		require.NoError(t, lb.Submit(ctx, board, bob, 20*time.Second))

		top, err := lb.Top(ctx, board, 10)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, bob, top[0].UserID)
		assert.Equal(t, int64(1), top[0].Rank)
		assert.Equal(t, alice, top[1].UserID)
		count, err := lb.Count(ctx, board)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		top, err = lb.Top(ctx, board, 1)
		require.NoError(t, err)
		assert.Len(t, top, 1)
	})

	t.Run("Boards are separate", func(t *testing.T) {
		lb, _ := newLeaderboard(t)
		require.NoError(t, lb.Submit(ctx, board, alice, time.Second))

		_, ok, err := lb.Rank(ctx, game.Config{Rows: 16, Cols: 16, Mines: 40}, alice)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
