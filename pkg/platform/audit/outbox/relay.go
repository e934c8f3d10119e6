// Package outbox relays committed audit outbox rows to Kafka.
package outbox

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"childminder/internal/platform/kafka"
	"childminder/pkg/platform/audit/store/postgres"
	txcontext "childminder/pkg/platform/tx"
)

// Source is the outbox table.
type Source interface {
	FetchPending(ctx context.Context, limit int) ([]postgres.Entry, error)
	MarkProcessed(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Sink receives relayed records.
type Sink interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

type Relay struct {
	db       *sql.DB
	source   Source
	sink     Sink
	interval time.Duration
	batch    int
	logger   *slog.Logger
	now      func() time.Time
}

func NewRelay(db *sql.DB, source Source, sink Sink, interval time.Duration, batch int, logger *slog.Logger) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Relay{db: db, source: source, sink: sink, interval: interval, batch: batch, logger: logger, now: time.Now}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := r.RelayOnce(ctx)
			if err != nil {
				r.logger.WarnContext(ctx, "outbox relay failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.DebugContext(ctx, "outbox relayed", "count", n)
			}
		}
	}
}

// RelayOnce publishes one batch inside a transaction. Rows are only marked
// processed after the brokers acknowledge them, so delivery is at-least-once.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var count int
	err := txcontext.Run(ctx, r.db, func(ctx context.Context) error {
		n, err := r.publishBatch(ctx)
		count = n
		return err
	})
	return count, err
}

func (r *Relay) publishBatch(ctx context.Context) (int, error) {
	entries, err := r.source.FetchPending(ctx, r.batch)
	if err != nil || len(entries) == 0 {
		return 0, err
	}
	msgs := make([]kafka.Message, 0, len(entries))
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, kafka.Message{
			Key:     []byte(e.AggregateID),
			Value:   e.Payload,
			Headers: map[string]string{"event_type": e.EventType, "event_id": e.ID.String()},
		})
		ids = append(ids, e.ID)
	}
	if err := r.sink.Publish(ctx, msgs...); err != nil {
		return 0, err
	}
	if err := r.source.MarkProcessed(ctx, ids, r.now()); err != nil {
		return 0, err
	}
	return len(entries), nil
}
