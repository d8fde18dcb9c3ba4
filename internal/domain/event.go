package domain

import (
	"time"

	"github.com/google/uuid"
)

const EventOrderStatusChanged = "order.status_changed"

// OrderStatusChanged is published when a webhook moves an order out of pending
type OrderStatusChanged struct {
	Type      string      `json:"type"`
	OrderID   uuid.UUID   `json:"order_id"`
	UserID    int64       `json:"user_id"`
	Status    OrderStatus `json:"status"`
	Total     string      `json:"total"`
	ChangedAt time.Time   `json:"changed_at"`
}

// OutboxMessage is a pending event row awaiting relay to the broker
type OutboxMessage struct {
	ID        uuid.UUID  `db:"id"`
	Topic     string     `db:"topic"`
	Key       string     `db:"key"`
	Payload   []byte     `db:"payload"`
	CreatedAt time.Time  `db:"created_at"`
	SentAt    *time.Time `db:"sent_at"`
}
