package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when the lock key is already held and the
// acquisition window runs out.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Mutex is a single-key Redis lock (SET NX PX) used to serialise short
// critical sections across service instances, such as the account-number
// assignment sequence. One Mutex may be shared by concurrent callers: all
// per-acquisition state lives in the release function returned by Lock.
type Mutex struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

// NewMutex creates a Mutex for key. The TTL bounds how long a crashed
// holder can block other instances.
func NewMutex(client *goredis.Client, key string, ttl time.Duration) *Mutex {
	return &Mutex{client: client, key: key, ttl: ttl}
}

// Lock tries to acquire the key, retrying with a short backoff until the
// context is cancelled or roughly one TTL has elapsed. The returned release
// deletes the key only while it still holds this acquisition's token, so a
// holder that outlives the TTL cannot release a later holder's lock.
func (m *Mutex) Lock(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(m.ttl)

	for {
		ok, err := m.client.SetNX(ctx, m.key, token, m.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", m.key, err)
		}
		if ok {
			return m.releaseFunc(token), nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// release-if-owner: delete the key only when it still holds our token.
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (m *Mutex) releaseFunc(token string) func(context.Context) error {
	return func(ctx context.Context) error {
		err := unlockScript.Run(ctx, m.client, []string{m.key}, token).Err()
		if err != nil && err != goredis.Nil {
			return fmt.Errorf("failed to release lock %s: %w", m.key, err)
		}
		return nil
	}
}
