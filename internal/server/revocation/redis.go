// Package revocation provides a Redis-backed refresh-token revocation set.
// Entries expire on their own when the token they shadow would have expired.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/clientreview/internal/server/repositories/revokedtokens"
)

const keyPrefix = "revoked:"

// minTTL keeps an entry alive briefly even when the token is at or past its
// expiry, so that a concurrent exchange still sees the claim.
const minTTL = time.Second

// RedisStore implements revokedtokens.Repository backed by Redis.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

var _ revokedtokens.Repository = (*RedisStore)(nil)

// NewRedisStore constructs a Redis-backed revocation set.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Revoke claims jti with SET NX, so exactly one caller observes true.
func (s *RedisStore) Revoke(ctx context.Context, jti string, userID string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(s.now())
	if ttl < minTTL {
		ttl = minTTL
	}

	added, err := s.client.SetNX(ctx, keyPrefix+jti, userID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return added, nil
}

// PurgeExpired is a no-op: Redis drops entries through their TTL.
func (s *RedisStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
