package cache

import (
	"context"
	"errors"
	"time"

	"loan-backoffice/pkg/id"

	"github.com/redis/go-redis/v9"
)

func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// ErrLocked is returned by Acquire when another holder owns the key.
var ErrLocked = errors.New("lock held by another process")

// releaseScript deletes the key only if it still carries our token, so an
// expired lock re-acquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// BatchLock keeps scheduled jobs (accrual, overdue sweep) from running on two
// instances at once.
type BatchLock struct {
	rdb    *redis.Client
	prefix string
}

func NewBatchLock(rdb *redis.Client) *BatchLock {
	return &BatchLock{rdb: rdb, prefix: "batch-lock:"}
}

// Acquire takes name for at most ttl. The returned func releases it.
func (l *BatchLock) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := l.prefix + name
	token := id.NewID32()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		// the caller's ctx may be done by now
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.rdb, []string{key}, token).Err()
	}, nil
}
