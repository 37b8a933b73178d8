package memory

import (
	"context"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/outbox"
	"github.com/google/uuid"
)

type outboxStore struct{ s *Store }

func (o outboxStore) Pending(_ context.Context, limit int) ([]outbox.Record, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	var out []outbox.Record
	for _, rec := range o.s.outbox {
		if len(out) == limit {
			break
		}
		if rec.SentAt == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (o outboxStore) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	for i := range o.s.outbox {
		if o.s.outbox[i].ID == id {
			o.s.outbox[i].SentAt = &at
			return nil
		}
	}
	return nil
}
