package broker

import (
	"context"

	"github.com/georgemunganga/stockly-pos/internal/platform/logging"
)

// LogPublisher writes events to the structured log instead of a broker.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, topic, key string, payload []byte) error {
	logging.Log(logging.Fields{
		Service: "outbox",
		EventID: key,
		Step:    topic,
		Status:  "published",
		Message: string(payload),
	})
	return nil
}

func (LogPublisher) Close() error { return nil }
