package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RunLocker guards scanner runs so only one instance executes a given run.
type RunLocker interface {
	// TryLock makes a single acquisition attempt. acquired is false when
	// another holder owns the key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

type redisRunLocker struct {
	rs *redsync.Redsync
}

func NewRedisRunLocker(client redis.UniversalClient) RunLocker {
	return &redisRunLocker{rs: redsync.New(goredis.NewPool(client))}
}

func (l *redisRunLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	mutex := l.rs.NewMutex(key, redsync.WithExpiry(ttl), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) || strings.Contains(err.Error(), "lock already taken") {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("acquire run lock %s: %w", key, err)
	}

	unlock := func(ctx context.Context) error {
		ok, err := mutex.UnlockContext(ctx)
		if err != nil {
			return fmt.Errorf("release run lock %s: %w", key, err)
		}
		if !ok {
			return fmt.Errorf("run lock %s was not held", key)
		}
		return nil
	}
	return unlock, true, nil
}
