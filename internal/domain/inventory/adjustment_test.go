package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
)

func TestNewStockAdjustment(t *testing.T) {
	t.Run("records the actor", func(t *testing.T) {
		actorID := uuid.New()
		adj, err := NewStockAdjustment("ADJ-001", uuid.New(), "cycle count", actorID)

		require.NoError(t, err)
		require.NotNil(t, adj.ActorID)
		assert.Equal(t, actorID, *adj.ActorID)
	})

	t.Run("requires number, warehouse and reason", func(t *testing.T) {
		_, err := NewStockAdjustment("", uuid.New(), "cycle count", uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidationFailure)

		_, err = NewStockAdjustment("ADJ-001", uuid.Nil, "cycle count", uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidationFailure)

		_, err = NewStockAdjustment("ADJ-001", uuid.New(), "", uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidationFailure)
	})
}

func TestStockAdjustmentAddItem(t *testing.T) {
	t.Run("difference is derived from the snapshots", func(t *testing.T) {
		adj, err := NewStockAdjustment("ADJ-001", uuid.New(), "damage write-off", uuid.Nil)
		require.NoError(t, err)

		require.NoError(t, adj.AddItem(uuid.New(), 4, "two units crushed"))
		adj.Items[0].BeforeQuantity = 10

		assert.Equal(t, int64(-6), adj.Items[0].Difference())
	})

	t.Run("rejects duplicate products", func(t *testing.T) {
		adj, err := NewStockAdjustment("ADJ-001", uuid.New(), "cycle count", uuid.Nil)
		require.NoError(t, err)
		productID := uuid.New()
		require.NoError(t, adj.AddItem(productID, 4, ""))

		assert.ErrorIs(t, adj.AddItem(productID, 6, ""), shared.ErrValidationFailure)
	})

	t.Run("negative targets are allowed", func(t *testing.T) {
		adj, err := NewStockAdjustment("ADJ-001", uuid.New(), "reconciliation", uuid.Nil)
		require.NoError(t, err)

		require.NoError(t, adj.AddItem(uuid.New(), -2, "oversold before correction"))
		assert.Equal(t, int64(-2), adj.Items[0].AfterQuantity)
	})
}
