package repository

import (
	"context"
	"errors"
	"time"

	redisapp "breate/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

type RedisTokenRepo struct {
	Client *redisapp.Client
}

func NewRedisTokenRepo(client *redisapp.Client) *RedisTokenRepo {
	return &RedisTokenRepo{Client: client}
}

// RevokeRefreshToken marks the jti as revoked; the key expires with the token.
func (r *RedisTokenRepo) RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	return r.Client.Set(ctx, revokedTokenKey(tokenID), "1", ttl).Err()
}

func (r *RedisTokenRepo) IsRefreshTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	val, err := r.Client.Get(ctx, revokedTokenKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return val == "1", nil
}

func revokedTokenKey(tokenID string) string {
	return "revoked:refresh:" + tokenID
}
