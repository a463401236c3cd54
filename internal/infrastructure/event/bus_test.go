package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/shared"
)

// recordingHandler collects every event it receives. handleErr, when set,
// is returned from Handle; panicOnHandle simulates a buggy listener.
type recordingHandler struct {
	types         []string
	received      []shared.DomainEvent
	handleErr     error
	panicOnHandle bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panicOnHandle {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.handleErr
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Balance", uuid.New())
	return &e
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to handlers subscribed to the type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"inventory.low_stock"}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newEvent("inventory.low_stock")))

		require.Len(t, handler.received, 1)
		assert.Equal(t, "inventory.low_stock", handler.received[0].EventType())
	})

	t.Run("does not deliver unrelated types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"inventory.low_stock"}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newEvent("trade.order_confirmed")))

		assert.Empty(t, handler.received)
	})

	t.Run("dispatch is synchronous and ordered", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"a", "b"}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newEvent("a"), newEvent("b")))

		require.Len(t, handler.received, 2)
		assert.Equal(t, "a", handler.received[0].EventType())
		assert.Equal(t, "b", handler.received[1].EventType())
	})

	t.Run("a failing handler does not stop the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{"a"}, handleErr: assert.AnError}
		healthy := &recordingHandler{types: []string{"a"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newEvent("a")))

		assert.Len(t, healthy.received, 1)
	})

	t.Run("a panicking handler is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &recordingHandler{types: []string{"a"}, panicOnHandle: true}
		healthy := &recordingHandler{types: []string{"a"}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NotPanics(t, func() {
			require.NoError(t, bus.Publish(context.Background(), newEvent("a")))
		})

		assert.Len(t, healthy.received, 1)
	})
}

func TestInMemoryEventBus_Subscribe(t *testing.T) {
	t.Run("explicit types override the handler's own list", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"a"}}
		bus.Subscribe(handler, "b")

		require.NoError(t, bus.Publish(context.Background(), newEvent("a"), newEvent("b")))

		require.Len(t, handler.received, 1)
		assert.Equal(t, "b", handler.received[0].EventType())
	})

	t.Run("handler with no types receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newEvent("a"), newEvent("b")))

		assert.Len(t, handler.received, 2)
	})

	t.Run("unsubscribed handlers stop receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"a"}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newEvent("a")))

		assert.Empty(t, handler.received)
	})
}

func TestInMemoryEventBus_Lifecycle(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}
