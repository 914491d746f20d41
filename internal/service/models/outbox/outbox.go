package outbox

import (
	"time"
)

// Message is an event waiting to be published to RabbitMQ. Settlement writes
// one row per settled order; the outbox worker drains them with retries.
type Message struct {
	ID           int64
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
