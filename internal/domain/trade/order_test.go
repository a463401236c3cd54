package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
)

func pendingOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("SO-001", nil, "")
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("starts pending with a zero total", func(t *testing.T) {
		customerID := uuid.New()
		o, err := NewOrder("SO-001", &customerID, "phone order")

		require.NoError(t, err)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.True(t, o.TotalAmount.IsZero())
		assert.Equal(t, customerID, *o.CustomerID)
	})

	t.Run("requires an order number", func(t *testing.T) {
		_, err := NewOrder("", nil, "")
		assert.ErrorIs(t, err, shared.ErrValidationFailure)
	})
}

func TestOrderAddItem(t *testing.T) {
	t.Run("snapshots price and cost and keeps the total current", func(t *testing.T) {
		o := pendingOrder(t)

		require.NoError(t, o.AddItem(uuid.New(), 2, decimal.NewFromInt(25), decimal.NewFromInt(10)))
		require.NoError(t, o.AddItem(uuid.New(), 3, decimal.NewFromFloat(9.5), decimal.NewFromInt(4)))

		require.Len(t, o.Items, 2)
		assert.True(t, o.Items[0].Subtotal().Equal(decimal.NewFromInt(50)))
		assert.True(t, o.TotalAmount.Equal(decimal.NewFromFloat(78.5)))
	})

	t.Run("rejects invalid lines", func(t *testing.T) {
		o := pendingOrder(t)

		assert.ErrorIs(t, o.AddItem(uuid.Nil, 1, decimal.NewFromInt(1), decimal.Zero), shared.ErrValidationFailure)
		assert.ErrorIs(t, o.AddItem(uuid.New(), 0, decimal.NewFromInt(1), decimal.Zero), shared.ErrValidationFailure)
		assert.ErrorIs(t, o.AddItem(uuid.New(), 1, decimal.NewFromInt(-1), decimal.Zero), shared.ErrValidationFailure)
	})

	t.Run("items are frozen after confirmation", func(t *testing.T) {
		o := pendingOrder(t)
		require.NoError(t, o.AddItem(uuid.New(), 1, decimal.NewFromInt(5), decimal.NewFromInt(2)))
		require.NoError(t, o.TransitionTo(OrderStatusConfirmed))

		err := o.AddItem(uuid.New(), 1, decimal.NewFromInt(5), decimal.NewFromInt(2))
		assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
	})
}

func TestOrderTransitions(t *testing.T) {
	t.Run("completion stamps the timestamp", func(t *testing.T) {
		o := pendingOrder(t)

		require.NoError(t, o.TransitionTo(OrderStatusCompleted))

		assert.True(t, o.IsCompleted())
		assert.NotNil(t, o.CompletedAt)
	})

	t.Run("completed never re-enters completed", func(t *testing.T) {
		o := pendingOrder(t)
		require.NoError(t, o.TransitionTo(OrderStatusCompleted))

		err := o.TransitionTo(OrderStatusCompleted)
		assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
	})

	t.Run("completed orders can be cancelled or refunded", func(t *testing.T) {
		assert.True(t, OrderStatusCompleted.CanTransitionTo(OrderStatusCancelled))
		assert.True(t, OrderStatusCompleted.CanTransitionTo(OrderStatusRefunded))
	})

	t.Run("cancelled and refunded are terminal", func(t *testing.T) {
		for _, terminal := range []OrderStatus{OrderStatusCancelled, OrderStatusRefunded} {
			for _, target := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded} {
				assert.False(t, terminal.CanTransitionTo(target), "%s -> %s", terminal, target)
			}
		}
	})

	t.Run("refund requires completion first", func(t *testing.T) {
		assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusRefunded))
		assert.False(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusRefunded))
	})

	t.Run("unknown target status is rejected", func(t *testing.T) {
		o := pendingOrder(t)
		err := o.TransitionTo(OrderStatus("SHIPPED"))
		assert.ErrorIs(t, err, shared.ErrValidationFailure)
	})
}
