package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	release, err := m.Acquire(ctx, "search:abc", time.Minute)
	require.NoError(t, err)

	_, err = m.Acquire(ctx, "search:abc", time.Minute)
	assert.ErrorIs(t, err, ErrHeld)

	_, err = m.Acquire(ctx, "search:other", time.Minute)
	assert.NoError(t, err)

	require.NoError(t, release(ctx))
	second, err := m.Acquire(ctx, "search:abc", time.Minute)
	require.NoError(t, err)

	// The first holder's release must not free the second holder's lock.
	require.NoError(t, release(ctx))
	_, err = m.Acquire(ctx, "search:abc", time.Minute)
	assert.ErrorIs(t, err, ErrHeld)

	now = now.Add(2 * time.Minute)
	_, err = m.Acquire(ctx, "search:abc", time.Minute)
	assert.NoError(t, err, "expired locks can be retaken")
	require.NoError(t, second(ctx))
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client, "leadscout:")
}

func TestRedisLock(t *testing.T) {
	ctx := context.Background()
	mr, l := newMiniredis(t)

	release, err := l.Acquire(ctx, "search:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("leadscout:search:abc"))
	assert.Equal(t, time.Minute, mr.TTL("leadscout:search:abc"))

	_, err = l.Acquire(ctx, "search:abc", time.Minute)
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("leadscout:search:abc"))
}

func TestRedisLockExpiresAndReleaseIsScoped(t *testing.T) {
	ctx := context.Background()
	mr, l := newMiniredis(t)

	stale, err := l.Acquire(ctx, "search:abc", time.Minute)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	fresh, err := l.Acquire(ctx, "search:abc", time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("leadscout:search:abc"), "stale release leaves the new holder alone")

	require.NoError(t, fresh(ctx))
	assert.False(t, mr.Exists("leadscout:search:abc"))
}

func TestRedisLockReportsConnectionErrors(t *testing.T) {
	mr, l := newMiniredis(t)
	mr.Close()
	_, err := l.Acquire(context.Background(), "search:abc", time.Minute)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrHeld)
}
