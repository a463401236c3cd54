package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
)

func TestNewPurchaseReceipt(t *testing.T) {
	t.Run("records the receiver", func(t *testing.T) {
		receivedBy := uuid.New()
		r, err := NewPurchaseReceipt("PR-001", uuid.New(), uuid.New(), receivedBy, "dock 3")

		require.NoError(t, err)
		require.NotNil(t, r.ReceivedBy)
		assert.Equal(t, receivedBy, *r.ReceivedBy)
		assert.False(t, r.ReceivedAt.IsZero())
		assert.Equal(t, int64(0), r.TotalQuantity())
	})

	t.Run("requires number, order and warehouse", func(t *testing.T) {
		_, err := NewPurchaseReceipt("", uuid.New(), uuid.New(), uuid.Nil, "")
		assert.ErrorIs(t, err, shared.ErrValidationFailure)

		_, err = NewPurchaseReceipt("PR-001", uuid.Nil, uuid.New(), uuid.Nil, "")
		assert.ErrorIs(t, err, shared.ErrValidationFailure)

		_, err = NewPurchaseReceipt("PR-001", uuid.New(), uuid.Nil, uuid.Nil, "")
		assert.ErrorIs(t, err, shared.ErrValidationFailure)
	})
}

func TestPurchaseReceiptAddItem(t *testing.T) {
	t.Run("sums the received quantity", func(t *testing.T) {
		r, err := NewPurchaseReceipt("PR-001", uuid.New(), uuid.New(), uuid.Nil, "")
		require.NoError(t, err)

		require.NoError(t, r.AddItem(uuid.New(), uuid.New(), 4, decimal.NewFromInt(12), ""))
		require.NoError(t, r.AddItem(uuid.New(), uuid.New(), 2, decimal.NewFromInt(7), "short pallet"))

		assert.Equal(t, int64(6), r.TotalQuantity())
	})

	t.Run("rejects missing references and non-positive quantities", func(t *testing.T) {
		r, err := NewPurchaseReceipt("PR-001", uuid.New(), uuid.New(), uuid.Nil, "")
		require.NoError(t, err)

		assert.ErrorIs(t, r.AddItem(uuid.Nil, uuid.New(), 1, decimal.Zero, ""), shared.ErrValidationFailure)
		assert.ErrorIs(t, r.AddItem(uuid.New(), uuid.Nil, 1, decimal.Zero, ""), shared.ErrValidationFailure)
		assert.ErrorIs(t, r.AddItem(uuid.New(), uuid.New(), 0, decimal.Zero, ""), shared.ErrValidationFailure)
	})
}
