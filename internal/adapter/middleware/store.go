package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingTTL bounds how long a reservation outlives a crashed request.
const pendingTTL = 60 * time.Second

// storedResponse is what the replay store keeps per operator call. A pending
// entry is a reservation held while the first request runs.
type storedResponse struct {
	Pending     bool      `json:"pending"`
	Status      int       `json:"status,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	RequestedAt time.Time `json:"requested_at"`
	StoredAt    time.Time `json:"stored_at"`
}

type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// storeKey scopes a key to the operator and the request path, so neither two
// operators nor two resources can collide on one Idempotency-Key.
func storeKey(operator, method, path, key string) string {
	return strings.Join([]string{"backoffice", "idem", operator, strings.ToUpper(method), path, key}, ":")
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// reserve claims key for the caller. False means another call holds it.
func (s replayStore) reserve(ctx context.Context, key string, r storedResponse) (bool, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, pendingTTL).Result()
}

func (s replayStore) get(ctx context.Context, key string) (storedResponse, bool, error) {
	var r storedResponse
	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	if err := json.Unmarshal(v, &r); err != nil {
		return r, false, err
	}
	return r, true, nil
}

func (s replayStore) complete(ctx context.Context, key string, r storedResponse) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
