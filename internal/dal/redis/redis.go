package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const (
	// Idempotency fast-path for settlement: idem:settle:{payment_ref} -> order_id
	KeyIdemSettle = "idem:settle:%s"

	// Cached order status: order_status:{order_id} -> status string
	KeyOrderStatus = "order_status:%d"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
)

// MustNewClient creates a new Redis client and verifies connectivity.
func MustNewClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: viper.GetString("redis.addr"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		panic("failed to connect to redis: " + err.Error())
	}

	return client
}
