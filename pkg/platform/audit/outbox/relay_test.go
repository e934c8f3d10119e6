package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/internal/platform/kafka"
	"childminder/pkg/platform/audit/store/postgres"
)

type fakeSource struct {
	pending   []postgres.Entry
	processed []uuid.UUID
}

func (f *fakeSource) FetchPending(_ context.Context, limit int) ([]postgres.Entry, error) {
	if limit < len(f.pending) {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeSource) MarkProcessed(_ context.Context, ids []uuid.UUID, _ time.Time) error {
	f.processed = append(f.processed, ids...)
	return nil
}

type fakeSink struct {
	err  error
	msgs []kafka.Message
}

func (f *fakeSink) Publish(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestPublishBatch_PublishesAndMarks(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	src := &fakeSource{pending: []postgres.Entry{
		{ID: id1, AggregateID: "app-1", EventType: "application_submitted", Payload: []byte(`{}`)},
		{ID: id2, AggregateID: "app-2", EventType: "payment_succeeded", Payload: []byte(`{}`)},
	}}
	sink := &fakeSink{}
	r := NewRelay(nil, src, sink, time.Second, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n, err := r.publishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sink.msgs, 2)
	assert.Equal(t, "app-1", string(sink.msgs[0].Key))
	assert.Equal(t, "payment_succeeded", sink.msgs[1].Headers["event_type"])
	assert.Equal(t, []uuid.UUID{id1, id2}, src.processed)
}

func TestPublishBatch_SinkFailureLeavesRowsPending(t *testing.T) {
	src := &fakeSource{pending: []postgres.Entry{{ID: uuid.New(), AggregateID: "a"}}}
	sink := &fakeSink{err: errors.New("broker down")}
	r := NewRelay(nil, src, sink, time.Second, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := r.publishBatch(context.Background())
	require.Error(t, err)
	assert.Empty(t, src.processed)
}
