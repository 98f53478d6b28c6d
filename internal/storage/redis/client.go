package storage

import (
	"context"

	"breate/internal/config"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(addr, password string, db int) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// NewFromConfig returns nil when no address is configured.
func NewFromConfig(cfg config.RedisConf) *Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
