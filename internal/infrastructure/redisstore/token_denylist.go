package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/starter-webapi/internal/application"
)

const revokedPrefix = "auth:revoked:"

// TokenDenylist stores revoked jti values until the token would have expired.
type TokenDenylist struct {
	rdb *redis.Client
	now func() time.Time
}

var _ application.TokenRevoker = (*TokenDenylist)(nil)

func NewTokenDenylist(rdb *redis.Client) *TokenDenylist {
	return &TokenDenylist{rdb: rdb, now: time.Now}
}

func revokedKey(jti string) string { return revokedPrefix + jti }

// Revoke marks jti as revoked. Already expired tokens are skipped.
func (d *TokenDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
