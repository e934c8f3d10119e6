// Package publisher emits audit events to a store.
//
// Compliance events are always written synchronously and a failed write is
// returned to the caller, which must abort its operation. Security and
// operations events go through an optional async buffer and are dropped with a
// log line when the buffer is full or the store fails.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "childminder/pkg/domain"
	audit "childminder/pkg/platform/audit"
	"childminder/pkg/requestcontext"
)

// ErrBufferFull is returned when the async buffer cannot accept an event.
var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer enables background persistence of non-compliance events.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. The category is always derived from the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if event.Category == audit.CategoryCompliance || p.buffer == nil {
		return p.persist(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.incDropped()
		p.log(ctx, slog.LevelWarn, "audit buffer full, dropping event", event, nil)
		return ErrBufferFull
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	start := time.Now()
	err := p.store.Append(ctx, event)
	if err != nil {
		p.metrics.incFailures(event.Category)
		if event.Category == audit.CategoryCompliance {
			p.log(ctx, slog.LevelError, "CRITICAL: compliance audit failed", event, err)
			return err
		}
		p.log(ctx, slog.LevelWarn, "audit persist failed", event, err)
		return nil
	}
	p.metrics.observe(event.Category, time.Since(start))
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		_ = p.persist(context.Background(), event)
	}
}

// List returns the events recorded for a user.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops accepting async events and waits for the buffer to drain.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) log(ctx context.Context, level slog.Level, msg string, event audit.Event, err error) {
	if p.logger == nil {
		return
	}
	attrs := []any{
		"log_type", "audit",
		"action", event.Action,
		"category", string(event.Category),
	}
	if !event.UserID.IsNil() {
		attrs = append(attrs, "user_id", event.UserID.String())
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	p.logger.Log(ctx, level, msg, attrs...)
}
