package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
	"github.com/noah-isme/backend-orcamento/internal/events"
)

type stubStore struct {
	lastParams dbgen.InsertDomainEventParams
	event      dbgen.DomainEvent
	err        error
}

func (s *stubStore) InsertDomainEvent(_ context.Context, arg dbgen.InsertDomainEventParams) (dbgen.DomainEvent, error) {
	if s.err != nil {
		return dbgen.DomainEvent{}, s.err
	}
	s.lastParams = arg
	if !s.event.ID.Valid {
		id := uuid.New()
		s.event.ID = pgtype.UUID{Bytes: id, Valid: true}
	}
	s.event.Topic = arg.Topic
	s.event.AggregateID = arg.AggregateID
	s.event.Payload = arg.Payload
	if !s.event.OccurredAt.Valid {
		s.event.OccurredAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	}
	return s.event, nil
}

type captureNotifier struct {
	events []dbgen.DomainEvent
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func toUUID(u uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: u, Valid: true}
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	aggregate := uuid.New()
	payload := map[string]any{"numero": "ORC-2026-00001"}
	event, err := bus.Emit(context.Background(), events.TopicQuoteCreated, toUUID(aggregate), payload)
	require.NoError(t, err)
	require.Equal(t, events.TopicQuoteCreated, store.lastParams.Topic)
	require.JSONEq(t, `{"numero":"ORC-2026-00001"}`, string(store.lastParams.Payload))
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "ORC-2026-00001", decoded["numero"])
}

func TestEmitValidatesArguments(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), " ", toUUID(uuid.New()), nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), "order.paid", toUUID(uuid.New()), nil)
	require.ErrorContains(t, err, "unknown topic")
	_, err = bus.Emit(context.Background(), events.TopicStockLow, pgtype.UUID{}, nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicStockLow, toUUID(uuid.New()), []byte("not json"))
	require.Error(t, err)

	var nilBus *events.Bus
	_, err = nilBus.Emit(context.Background(), events.TopicStockLow, toUUID(uuid.New()), nil)
	require.Error(t, err)
}

func TestEmitEmptyPayloadBecomesObject(t *testing.T) {
	store := &stubStore{}
	bus := events.Bus{Store: store}
	_, err := bus.Emit(context.Background(), events.TopicKitToggled, toUUID(uuid.New()), nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(store.lastParams.Payload))
}

func TestEmitReturnsStoreError(t *testing.T) {
	notifier := &captureNotifier{}
	bus := events.Bus{Store: &stubStore{err: errors.New("down")}, Notifiers: []events.Notifier{notifier}}
	_, err := bus.Emit(context.Background(), events.TopicQuoteCreated, toUUID(uuid.New()), nil)
	require.ErrorContains(t, err, "persist event")
	require.Empty(t, notifier.events)
}

func TestNotifierErrorsAreLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	failing := &captureNotifier{err: errors.New("queue down")}
	ok := &captureNotifier{}
	bus := events.Bus{Store: &stubStore{}, Notifiers: []events.Notifier{failing, nil, ok}, Log: zerolog.New(&buf)}

	ev, err := bus.Emit(context.Background(), events.TopicQuoteCreated, toUUID(uuid.New()), json.RawMessage(`{"quoteId":"q"}`))
	require.NoError(t, err)
	require.True(t, ev.ID.Valid)
	require.Len(t, failing.events, 1)
	require.Len(t, ok.events, 1)
	require.Contains(t, buf.String(), "queue down")
	require.Contains(t, buf.String(), `"topic":"quote.created"`)
}

func TestLogNotifierWritesTopic(t *testing.T) {
	var buf bytes.Buffer
	n := events.LogNotifier{Log: zerolog.New(&buf)}
	err := n.Notify(context.Background(), dbgen.DomainEvent{
		ID:          toUUID(uuid.New()),
		Topic:       events.TopicStockLow,
		AggregateID: toUUID(uuid.New()),
		Payload:     []byte(`{"quantidade":1}`),
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"topic":"stock.low"`)
	require.Contains(t, buf.String(), `"quantidade":1`)
}
