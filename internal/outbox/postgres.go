package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Insert writes rec using tx so it commits together with the caller's data.
func Insert(ctx context.Context, tx Execer, rec Record) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO outbox (id, topic, key, event_type, payload, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.Topic, rec.Key, rec.EventType, []byte(rec.Payload), rec.CreatedAt)
	return err
}

type postgresStore struct{ db *sql.DB }

func NewPostgresStore(db *sql.DB) Store { return &postgresStore{db: db} }

func (s *postgresStore) Pending(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, key, event_type, payload, created_at, sent_at
		FROM outbox WHERE sent_at IS NULL ORDER BY seq LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Topic, &rec.Key, &rec.EventType, &payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		rec.Payload = payload
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *postgresStore) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE outbox SET sent_at=$1 WHERE id=$2`, at, id)
	return err
}
