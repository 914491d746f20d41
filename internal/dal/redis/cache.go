package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Cache is the settlement-facing view of Redis: the idempotency fast-path
// for settle retries and the short-lived order status cache. Every operation
// is best effort; a miss or a Redis outage only costs a Postgres lookup.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// GetSettledOrderID returns the order id a payment reference settled into,
// if the fast-path key is still live.
func (c *Cache) GetSettledOrderID(ctx context.Context, paymentRef string) (int64, bool) {
	raw, err := c.client.Get(ctx, fmt.Sprintf(KeyIdemSettle, paymentRef)).Result()
	if err != nil {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

// StoreSettlement records the idempotency shortcut and seeds the status
// cache for a freshly settled order.
func (c *Cache) StoreSettlement(ctx context.Context, paymentRef string, orderID int64, status string) {
	_ = c.client.Set(ctx, fmt.Sprintf(KeyIdemSettle, paymentRef), orderID, TTLIdempotency).Err()
	c.StoreOrderStatus(ctx, orderID, status)
}

// GetOrderStatus returns the cached status of an order.
func (c *Cache) GetOrderStatus(ctx context.Context, orderID int64) (string, bool) {
	raw, err := c.client.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Result()
	if err != nil || raw == "" {
		return "", false
	}

	return raw, true
}

// StoreOrderStatus caches the status of an order for the polling endpoint.
func (c *Cache) StoreOrderStatus(ctx context.Context, orderID int64, status string) {
	_ = c.client.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderID), status, TTLStatusCache).Err()
}
