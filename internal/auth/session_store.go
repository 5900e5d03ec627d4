package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// TokenRevoker is the revocation surface the middleware and auth service
// depend on.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) bool
}

// SessionStore is the Redis-backed TokenRevoker. It tracks revoked tokens so
// logout takes effect before the JWT expires. Entries live only until the
// token would have expired anyway.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore wraps a Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Revoke marks the token id as revoked until expiresAt.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s == nil || s.client == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether the token id has been revoked. Redis being
// unreachable fails open so an outage does not lock everyone out.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) bool {
	if s == nil || s.client == nil {
		return false
	}
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false
	}
	return n > 0
}
