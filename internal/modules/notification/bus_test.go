package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	evt := NewEvent(EventOrderPlaced, map[string]interface{}{"order_id": int64(11)})

	assert.NotEqual(t, uuid.Nil, evt.ID)
	assert.Equal(t, EventOrderPlaced, evt.Name)
	assert.False(t, evt.OccurredAt.IsZero())
	assert.Equal(t, int64(11), evt.Payload["order_id"])
}

func TestBus_DispatchesInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var calls []string
	bus.Subscribe(EventOrderPlaced, func(_ context.Context, _ Event) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe(EventOrderPlaced, func(_ context.Context, _ Event) error {
		calls = append(calls, "second")
		return nil
	})

	bus.Publish(context.Background(), NewEvent(EventOrderPlaced, nil))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestBus_OnlyMatchingHandlersRun(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(EventOrderPlaced, func(_ context.Context, evt Event) error {
		got = append(got, evt.Name)
		return nil
	})
	bus.Subscribe(EventOrderCancelled, func(_ context.Context, evt Event) error {
		got = append(got, evt.Name)
		return nil
	})

	bus.Publish(context.Background(), NewEvent(EventOrderCancelled, nil))
	assert.Equal(t, []string{EventOrderCancelled}, got)
}

func TestBus_HandlerErrorDoesNotStopDispatch(t *testing.T) {
	bus := NewBus()
	var reached bool
	bus.Subscribe(EventOrderStatusChanged, func(_ context.Context, _ Event) error {
		return errors.New("downstream unavailable")
	})
	bus.Subscribe(EventOrderStatusChanged, func(_ context.Context, _ Event) error {
		reached = true
		return nil
	})

	bus.Publish(context.Background(), NewEvent(EventOrderStatusChanged, nil))
	assert.True(t, reached, "later handlers run despite an earlier failure")
}

func TestBus_PublishWithoutSubscribersIsNoOp(t *testing.T) {
	bus := NewBus()
	require.NotPanics(t, func() {
		bus.Publish(context.Background(), NewEvent(EventOrderPlaced, nil))
	})
}
