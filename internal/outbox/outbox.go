// Package outbox stores integration events next to the data that produced
// them and relays them to a broker after commit.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventSaleCommitted is emitted once per committed sale.
const EventSaleCommitted = "sale.committed"

type Record struct {
	ID        uuid.UUID       `json:"id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// NewRecord marshals payload into a pending record.
func NewRecord(topic, key, eventType string, payload any, now time.Time) (Record, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:        uuid.New(),
		Topic:     topic,
		Key:       key,
		EventType: eventType,
		Payload:   data,
		CreatedAt: now,
	}, nil
}

// Store is the relay's view of the outbox table.
type Store interface {
	// Pending returns unsent records oldest first.
	Pending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Publisher delivers one message to a broker.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}
