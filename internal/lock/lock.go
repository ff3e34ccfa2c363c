// Package lock provides short-lived exclusive keys used to reject duplicate
// searches submitted within a time window.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrHeld is returned when another holder owns the key.
var ErrHeld = errors.New("lock already held")

// Release gives the key back. Releasing an expired or stolen lock is a no-op.
type Release func(ctx context.Context) error

// Locker hands out keys that expire on their own after ttl.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}
