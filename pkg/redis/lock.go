package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it is still held by the caller's token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// AcquireLock claims the named lock for token until ttl elapses or it is
// released. A false result means someone else holds it.
func (c *Client) AcquireLock(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, errors.New("lock ttl must be positive")
	}
	return c.SetNX(ctx, c.LockKey(name), token, ttl)
}

// ReleaseLock drops the named lock if token still owns it. Releasing an
// expired or foreign lock is a no-op.
func (c *Client) ReleaseLock(ctx context.Context, name, token string) error {
	if c.store == nil {
		return errNotInitialized
	}
	err := c.store.Eval(ctx, releaseScript, []string{c.LockKey(name)}, token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

const refreshScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("PEXPIRE", KEYS[1], ARGV[2]) else return 0 end`

// RefreshLock pushes the expiry of a lock token still owns out to ttl. A false
// result means the lock expired or changed hands.
func (c *Client) RefreshLock(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	if c.store == nil {
		return false, errNotInitialized
	}
	if ttl <= 0 {
		return false, errors.New("lock ttl must be positive")
	}
	n, err := c.store.Eval(ctx, refreshScript, []string{c.LockKey(name)}, token, ttl.Milliseconds()).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
