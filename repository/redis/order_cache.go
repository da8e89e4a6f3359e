package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository"
)

type orderCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewOrderCache creates a Redis-backed token->order snapshot cache.
// A cache miss is reported as domain.ErrOrderNotFound so callers can fall
// through to the primary store.
func NewOrderCache(client *redislib.Client, ttl time.Duration) repository.OrderCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &orderCache{
		client: client,
		prefix: "order:token:",
		ttl:    ttl,
	}
}

func (c *orderCache) Get(ctx context.Context, token string) (*domain.Order, error) {
	result, err := c.client.Get(ctx, c.key(token)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	var order domain.Order
	if err := json.Unmarshal([]byte(result), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *orderCache) Set(ctx context.Context, order *domain.Order) error {
	if order == nil || order.PortalToken == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(order.PortalToken), payload, c.ttl).Err()
}

func (c *orderCache) Invalidate(ctx context.Context, token string) error {
	return c.client.Del(ctx, c.key(token)).Err()
}

func (c *orderCache) key(token string) string {
	return fmt.Sprintf("%s%s", c.prefix, token)
}
