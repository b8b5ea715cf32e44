// Package locker provides distributed locks backed by redis.
package locker

import (
	"context"
	"time"

	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	defaultExpiry = 8 * time.Second
	defaultTries  = 32
)

var _ i.Locker = &RedisLocker{}

// RedisLocker hands out redsync mutexes.
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	tries  int
}

// Option customises a RedisLocker.
type Option func(*RedisLocker)

// WithExpiry sets how long a lock lives when its holder dies.
func WithExpiry(d time.Duration) Option {
	return func(l *RedisLocker) {
		if d > 0 {
			l.expiry = d
		}
	}
}

// WithTries sets how many times acquisition is attempted.
func WithTries(n int) Option {
	return func(l *RedisLocker) {
		if n > 0 {
			l.tries = n
		}
	}
}

// NewRedisLocker creates a locker on top of client.
func NewRedisLocker(client *redis.Client, opts ...Option) *RedisLocker {
	l := &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: defaultExpiry,
		tries:  defaultTries,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock implements i.Locker.
func (l *RedisLocker) Lock(ctx context.Context, name string) (func(), error) {
	mutex := l.rs.NewMutex(name, redsync.WithExpiry(l.expiry), redsync.WithTries(l.tries))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}

	return func() {
		_, _ = mutex.Unlock()
	}, nil
}
