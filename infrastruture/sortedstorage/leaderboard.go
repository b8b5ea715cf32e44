package sortedstorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "mines"
	boardKeyFmt   = "%s:leaderboard:%dx%d:%d"
)

var _ i.Leaderboard = &RedisLeaderboard{}

// RedisLeaderboard keeps one sorted set per board configuration, scored by the
// fastest win in milliseconds, with TTL support.
type RedisLeaderboard struct {
	client *redis.Client
	locker *redsync.Redsync
	ttl    time.Duration
	prefix string
}

// NewRedisLeaderboard initializes a RedisLeaderboard with the provided Redis client and TTL.
func NewRedisLeaderboard(client *redis.Client, ttl time.Duration) (*RedisLeaderboard, error) {
	if client == nil {
		return nil, errors.New("leaderboard needs a redis client")
	}
	board := &RedisLeaderboard{
		client: client,
		ttl:    ttl,
		prefix: defaultPrefix,
	}
	pool := goredis.NewPool(client)
	board.locker = redsync.New(pool)
	return board, nil
}

// Submit records a win and keeps the user's best time; sets expiration if necessary.
func (rl *RedisLeaderboard) Submit(ctx context.Context, board game.Config, userID uuid.UUID, d time.Duration) error {
	key := rl.key(board)
	member := userID.String()

	mutex := rl.locker.NewMutex(key + ":submit_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return err
	}
	defer func() {
		_, _ = mutex.Unlock()
	}()

	score := float64(d.Milliseconds())
	best, err := rl.client.ZScore(ctx, key, member).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return err
	case best <= score:
		return nil
	}

	if _, err := rl.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Result(); err != nil {
		return err
	}

	// Set expiration only if it's not already set
	ttl, err := rl.client.TTL(ctx, key).Result()
	if err == nil && ttl == -1 && rl.ttl > 0 {
		_ = rl.client.Expire(ctx, key, rl.ttl).Err()
	}

	return nil
}

// Top returns up to n entries with the lowest times.
func (rl *RedisLeaderboard) Top(ctx context.Context, board game.Config, n int64) ([]i.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	members, err := rl.client.ZRangeWithScores(ctx, rl.key(board), 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]i.LeaderboardEntry, 0, len(members))
	for idx, m := range members {
		userID, err := uuid.Parse(m.Member.(string))
		if err != nil {
			return nil, fmt.Errorf("leaderboard member %v: %w", m.Member, err)
		}
		entries = append(entries, i.LeaderboardEntry{
			UserID:   userID,
			Duration: time.Duration(m.Score) * time.Millisecond,
			Rank:     int64(idx) + 1,
		})
	}
	return entries, nil
}

// Rank returns the entry of a user on the board.
func (rl *RedisLeaderboard) Rank(ctx context.Context, board game.Config, userID uuid.UUID) (i.LeaderboardEntry, bool, error) {
	key := rl.key(board)
	member := userID.String()

	rank, err := rl.client.ZRank(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return i.LeaderboardEntry{}, false, nil
	}
	if err != nil {
		return i.LeaderboardEntry{}, false, err
	}

	score, err := rl.client.ZScore(ctx, key, member).Result()
	if err != nil {
		return i.LeaderboardEntry{}, false, err
	}

	return i.LeaderboardEntry{
		UserID:   userID,
		Duration: time.Duration(score) * time.Millisecond,
		Rank:     rank + 1,
	}, true, nil
}

// Count implements i.Leaderboard.
func (rl *RedisLeaderboard) Count(ctx context.Context, board game.Config) (int64, error) {
	n, err := rl.client.ZCard(ctx, rl.key(board)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting leaderboard: %w", err)
	}
	return n, nil
}

func (rl *RedisLeaderboard) key(board game.Config) string {
	return fmt.Sprintf(boardKeyFmt, rl.prefix, board.Rows, board.Cols, board.Mines)
}
