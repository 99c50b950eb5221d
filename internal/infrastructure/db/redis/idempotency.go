package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultClaimTTL = 24 * time.Hour

// RequestClaims records Idempotency-Key values so a retried create request is
// recognised instead of producing a second order.
// Key format: idempotency:<scope>:<key>
type RequestClaims struct {
	client *redis.Client
	scope  string
	ttl    time.Duration
}

// NewRequestClaims creates a claim store for the given scope (e.g. "orders").
// A non-positive ttl falls back to defaultClaimTTL.
func NewRequestClaims(client *redis.Client, scope string, ttl time.Duration) *RequestClaims {
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	return &RequestClaims{client: client, scope: scope, ttl: ttl}
}

// Claim atomically records key. It reports false when the key was already
// claimed within the TTL.
func (r *RequestClaims) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(key), time.Now().UTC().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return ok, nil
}

// Release deletes a claim so a failed request can be retried with the same key.
func (r *RequestClaims) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func (r *RequestClaims) key(k string) string {
	return fmt.Sprintf("idempotency:%s:%s", r.scope, k)
}
