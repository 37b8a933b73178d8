package outbox

import (
	"context"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/platform/logging"
)

const defaultBatch = 100

// Relay moves pending records to a Publisher. A record is marked sent only
// after Publish succeeds, so delivery is at-least-once.
type Relay struct {
	store    Store
	pub      Publisher
	interval time.Duration
	batch    int
	now      func() time.Time
}

func NewRelay(store Store, pub Publisher, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	return &Relay{store: store, pub: pub, interval: interval, batch: defaultBatch, now: time.Now}
}

// Run drains the outbox on every tick until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			logging.Log(logging.Fields{Service: "outbox", Step: "flush", Status: "error", Error: err.Error()})
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Flush publishes one batch and returns how many records were sent. It stops
// at the first failed publish so ordering per key is preserved.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	records, err := r.store.Pending(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, rec := range records {
		if err := r.pub.Publish(ctx, rec.Topic, rec.Key, rec.Payload); err != nil {
			logging.Log(logging.Fields{
				Service: "outbox",
				EventID: rec.ID.String(),
				Step:    "publish",
				Status:  "error",
				Error:   err.Error(),
			})
			return sent, err
		}
		if err := r.store.MarkSent(ctx, rec.ID, r.now().UTC()); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
