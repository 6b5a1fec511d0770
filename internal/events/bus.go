package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

// EventStore persists events in the domain_events table.
type EventStore interface {
	InsertDomainEvent(ctx context.Context, arg dbgen.InsertDomainEventParams) (dbgen.DomainEvent, error)
}

// Notifier reacts to a stored event.
type Notifier interface {
	Notify(ctx context.Context, event dbgen.DomainEvent) error
}

// Bus stores each event and then hands it to every notifier in order.
//
// Emit fails only when the event could not be stored. Notifier errors are
// logged; the row in domain_events stays the source of truth.
type Bus struct {
	Store     EventStore
	Notifiers []Notifier
	Log       zerolog.Logger
}

// Emit validates, stores and dispatches one event.
func (b *Bus) Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (dbgen.DomainEvent, error) {
	if b == nil || b.Store == nil {
		return dbgen.DomainEvent{}, errors.New("events: store not configured")
	}
	topic = strings.TrimSpace(topic)
	switch {
	case topic == "":
		return dbgen.DomainEvent{}, errors.New("events: topic is required")
	case !Known(topic):
		return dbgen.DomainEvent{}, fmt.Errorf("events: unknown topic %q", topic)
	case !aggregateID.Valid:
		return dbgen.DomainEvent{}, errors.New("events: aggregate id is required")
	}
	body, err := marshalPayload(payload)
	if err != nil {
		return dbgen.DomainEvent{}, fmt.Errorf("events: %s payload: %w", topic, err)
	}
	ev, err := b.Store.InsertDomainEvent(ctx, dbgen.InsertDomainEventParams{
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     body,
	})
	if err != nil {
		return dbgen.DomainEvent{}, fmt.Errorf("events: persist %s: %w", topic, err)
	}
	for _, n := range b.Notifiers {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			b.Log.Error().Err(err).
				Str("topic", ev.Topic).
				Str("event_id", db.UUIDString(ev.ID)).
				Str("notifier", fmt.Sprintf("%T", n)).
				Msg("event notifier failed")
		}
	}
	return ev, nil
}

// marshalPayload accepts ready-made JSON ([]byte, json.RawMessage) or any
// value json.Marshal understands. nil and empty input become {}.
func marshalPayload(payload any) ([]byte, error) {
	var raw []byte
	switch v := payload.(type) {
	case nil:
		return []byte("{}"), nil
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		return json.Marshal(v)
	}
	if len(raw) == 0 {
		return []byte("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, errors.New("not valid json")
	}
	return append([]byte(nil), raw...), nil
}

// LogNotifier writes every event to the structured log.
type LogNotifier struct {
	Log zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	n.Log.Info().
		Str("topic", event.Topic).
		Str("event_id", db.UUIDString(event.ID)).
		Str("aggregate_id", db.UUIDString(event.AggregateID)).
		RawJSON("payload", event.Payload).
		Msg("domain event")
	return nil
}
