package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/creatorhub-backend/pkg/enums"
)

const defaultEventVersion = 1

// DomainEvent is what business code hands to Emit.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID uuid.UUID `json:"user_id"`
}

// PayloadEnvelope is the stored and published shape of every outbox row.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// seal validates the event and wraps its data in a fresh envelope.
func (e DomainEvent) seal(now time.Time) (PayloadEnvelope, error) {
	if !e.EventType.IsValid() || !e.AggregateType.IsValid() {
		return PayloadEnvelope{}, fmt.Errorf("unsupported outbox event %s/%s", e.EventType, e.AggregateType)
	}
	if e.AggregateID == uuid.Nil {
		return PayloadEnvelope{}, fmt.Errorf("%s event missing aggregate id", e.EventType)
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return PayloadEnvelope{}, fmt.Errorf("marshal %s payload: %w", e.EventType, err)
	}

	envelope := PayloadEnvelope{
		Version:    e.Version,
		EventID:    uuid.NewString(),
		OccurredAt: e.OccurredAt,
		Actor:      e.Actor,
		Data:       data,
	}
	if envelope.Version <= 0 {
		envelope.Version = defaultEventVersion
	}
	if envelope.OccurredAt.IsZero() {
		envelope.OccurredAt = now.UTC()
	}
	return envelope, nil
}
