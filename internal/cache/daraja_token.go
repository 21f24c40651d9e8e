package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const darajaTokenKey = "mpesa:access_token"

var ErrTokenNotCached = errors.New("daraja access token not cached")

// DarajaTokenCache holds the short-lived OAuth token for the Daraja API so
// every STK push does not pay for a token round-trip. The TTL mirrors the
// provider's expiry minus a safety margin.
type DarajaTokenCache interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string, ttl time.Duration) error
}

type RedisDarajaTokenCache struct {
	client *redis.Client
}

func NewRedisDarajaTokenCache(client *redis.Client) DarajaTokenCache {
	return &RedisDarajaTokenCache{
		client: client,
	}
}

func (c *RedisDarajaTokenCache) Get(ctx context.Context) (string, error) {
	token, err := c.client.Get(ctx, darajaTokenKey).Result()
	if err == redis.Nil {
		return "", ErrTokenNotCached
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (c *RedisDarajaTokenCache) Set(ctx context.Context, token string, ttl time.Duration) error {
	return c.client.Set(ctx, darajaTokenKey, token, ttl).Err()
}
