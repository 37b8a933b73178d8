package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	records []Record
}

func (f *fakeStore) Pending(_ context.Context, limit int) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Record
	for _, r := range f.records {
		if r.SentAt == nil && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].SentAt = &at
		}
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	keys   []string
	failAt int // 1-based publish call that fails; 0 never
	calls  int
}

func (p *fakePublisher) Publish(_ context.Context, _, key string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls == p.failAt {
		return errors.New("broker unavailable")
	}
	p.keys = append(p.keys, key)
	return nil
}

func newRecords(t *testing.T, keys ...string) []Record {
	t.Helper()
	var out []Record
	for _, k := range keys {
		rec, err := NewRecord("stockly.sales", k, EventSaleCommitted, map[string]string{"sale_id": k}, time.Now())
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestFlushPublishesInOrderAndMarksSent(t *testing.T) {
	store := &fakeStore{records: newRecords(t, "a", "b", "c")}
	pub := &fakePublisher{}
	relay := NewRelay(store, pub, time.Millisecond)

	sent, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, []string{"a", "b", "c"}, pub.keys)

	pending, err := store.Pending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestFlushStopsAtFailedPublish(t *testing.T) {
	store := &fakeStore{records: newRecords(t, "a", "b", "c")}
	pub := &fakePublisher{failAt: 2}
	relay := NewRelay(store, pub, time.Millisecond)

	sent, err := relay.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, sent)

	pending, err := store.Pending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].Key)

	// next flush retries from the failed record
	sent, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"a", "b", "c"}, pub.keys)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := &fakeStore{records: newRecords(t, "a")}
	pub := &fakePublisher{}
	relay := NewRelay(store, pub, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.keys) == 1
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestNewRecordMarshalsPayload(t *testing.T) {
	rec, err := NewRecord("t", "k", EventSaleCommitted, map[string]int{"units": 3}, time.Unix(0, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"units":3}`, string(rec.Payload))
	assert.Nil(t, rec.SentAt)
	assert.NotEqual(t, uuid.Nil, rec.ID)
}
