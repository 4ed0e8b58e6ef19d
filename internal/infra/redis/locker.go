package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when the attempt lock is not acquired within the wait window.
var ErrLockTimeout = errors.New("attempt lock wait timed out")

// releaseScript deletes the lock only if it is still held with our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AttemptLocker serializes work on one attempt across service instances.
// Locks are stored as: SET quiz:attempt:{attemptID}:lock {token} NX PX {ttl}
// The TTL bounds how long a crashed holder can block an attempt.
type AttemptLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

func NewAttemptLocker(client *redis.Client, ttl, wait time.Duration) *AttemptLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if wait <= 0 {
		wait = 2 * time.Second
	}
	return &AttemptLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		retry:  10 * time.Millisecond,
	}
}

func (l *AttemptLocker) Lock(ctx context.Context, attemptID int64) (func(), error) {
	key := l.key(attemptID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return func() {
				_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *AttemptLocker) key(attemptID int64) string {
	return "quiz:attempt:" + strconv.FormatInt(attemptID, 10) + ":lock"
}
