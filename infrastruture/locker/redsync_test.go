package locker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLocker(client, WithExpiry(time.Second), WithTries(1))
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "mines:game:1:lock")
	require.NoError(t, err)
	assert.True(t, mr.Exists("mines:game:1:lock"))

	_, err = l.Lock(ctx, "mines:game:1:lock")
	assert.Error(t, err)

	other, err := l.Lock(ctx, "mines:game:2:lock")
	require.NoError(t, err)
	other()

	unlock()
	assert.False(t, mr.Exists("mines:game:1:lock"))

	again, err := l.Lock(ctx, "mines:game:1:lock")
	require.NoError(t, err)
	again()
}
