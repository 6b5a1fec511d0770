package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTimeout is returned when the lock could not be acquired within MaxWait.
var ErrTimeout = errors.New("lock: timed out waiting for lock")

// ErrNotHeld is returned by Release when the key expired or changed owner.
var ErrNotHeld = errors.New("lock: not held")

var releaseByToken = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker hands out exclusive leases on Redis keys.
type Locker struct {
	R            redis.UniversalClient
	RetryBackoff time.Duration
	// MaxWait bounds how long Acquire polls a held key. Zero waits until ctx is done.
	MaxWait time.Duration
}

// Lease is a held lock.
type Lease struct {
	r     redis.UniversalClient
	key   string
	token string
}

// Key builds a namespaced lock key.
func Key(scope, id string) string {
	return "lock:" + scope + ":" + id
}

// Acquire polls SET NX until the key is free, MaxWait elapses or ctx ends.
func (l Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if l.R == nil {
		return nil, errors.New("lock: redis client not configured")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	backoff := l.RetryBackoff
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	waitCtx := ctx
	if l.MaxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.MaxWait)
		defer cancel()
	}

	lease := &Lease{r: l.R, key: key, token: uuid.NewString()}
	ticker := time.NewTicker(backoff)
	defer ticker.Stop()
	for {
		ok, err := l.R.SetNX(ctx, key, lease.token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if ok {
			return lease, nil
		}
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s", ErrTimeout, key)
		case <-ticker.C:
		}
	}
}

// Release deletes the key only if this lease still owns it.
func (h *Lease) Release(ctx context.Context) error {
	n, err := releaseByToken.Run(ctx, h.r, []string{h.key}, h.token).Int64()
	if err != nil {
		return fmt.Errorf("lock: release %s: %w", h.key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

// WithLock runs fn while holding key. The lease is dropped when fn returns.
func (l Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	lease, err := l.Acquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	defer func() { _ = lease.Release(context.WithoutCancel(ctx)) }()
	return fn(ctx)
}
