package notification

import (
	"time"

	"github.com/google/uuid"
)

// Event names emitted by the order module.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status.changed"
	EventOrderCancelled     = "order.cancelled"
)

// Event is an explicit domain event record. Use-case methods build one and
// publish it synchronously through the Bus; there is no interception or
// runtime metadata inspection anywhere in the emit path.
type Event struct {
	ID         uuid.UUID              `json:"id"`
	Name       string                 `json:"name"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// NewEvent builds an event record with a fresh id and timestamp.
func NewEvent(name string, payload map[string]interface{}) Event {
	return Event{
		ID:         uuid.New(),
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
