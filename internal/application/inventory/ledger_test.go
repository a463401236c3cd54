package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

func TestLedgerApply(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	warehouseID := uuid.New()

	t.Run("records movement with balance snapshots", func(t *testing.T) {
		tr := newTestRepos()
		tr.balances.seed(productID, warehouseID, 10)
		ledger := NewLedgerService(nil, zap.NewNop())

		result, err := ledger.Apply(ctx, tr.scope, MovementRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Kind:            inventory.MovementKindIn,
			Quantity:        5,
			ReferenceType:   "PurchaseReceipt",
			ReferenceNumber: "PR-001",
		})

		require.NoError(t, err)
		require.NotNil(t, result.Movement)
		assert.Equal(t, int64(10), result.Movement.BeforeQuantity)
		assert.Equal(t, int64(15), result.Movement.AfterQuantity)
		assert.Equal(t, int64(5), result.Movement.Quantity)
		assert.Equal(t, int64(15), result.Balance.Quantity)
		assert.Equal(t, int64(15), tr.balances.quantity(productID, warehouseID))
		assert.Equal(t, 1, tr.movements.count())
	})

	t.Run("lazily creates the balance row", func(t *testing.T) {
		tr := newTestRepos()
		ledger := NewLedgerService(nil, zap.NewNop())

		result, err := ledger.Apply(ctx, tr.scope, MovementRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Kind:            inventory.MovementKindIn,
			Quantity:        7,
			ReferenceType:   "PurchaseReceipt",
			ReferenceNumber: "PR-002",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Movement.BeforeQuantity)
		assert.Equal(t, int64(7), result.Movement.AfterQuantity)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		tr := newTestRepos()
		ledger := NewLedgerService(nil, zap.NewNop())

		_, err := ledger.Apply(ctx, tr.scope, MovementRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Kind:            inventory.MovementKindIn,
			Quantity:        0,
			ReferenceType:   "PurchaseReceipt",
			ReferenceNumber: "PR-003",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidationFailure)
		assert.Equal(t, 0, tr.movements.count())
	})

	t.Run("non-negative check fails before anything is written", func(t *testing.T) {
		tr := newTestRepos()
		tr.balances.seed(productID, warehouseID, 3)
		ledger := NewLedgerService(nil, zap.NewNop())

		_, err := ledger.Apply(ctx, tr.scope, MovementRequest{
			ProductID:          productID,
			WarehouseID:        warehouseID,
			Kind:               inventory.MovementKindOut,
			Quantity:           -5,
			ReferenceType:      "Order",
			ReferenceNumber:    "ORD-001",
			RequireNonNegative: true,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(3), tr.balances.quantity(productID, warehouseID))
		assert.Equal(t, 0, tr.movements.count())
	})

	t.Run("allows negative stock when the check is off", func(t *testing.T) {
		tr := newTestRepos()
		tr.balances.seed(productID, warehouseID, 3)
		ledger := NewLedgerService(nil, zap.NewNop())

		result, err := ledger.Apply(ctx, tr.scope, MovementRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Kind:            inventory.MovementKindOut,
			Quantity:        -5,
			ReferenceType:   "Order",
			ReferenceNumber: "ORD-002",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(-2), result.Balance.Quantity)
	})

	t.Run("retries after a version conflict", func(t *testing.T) {
		tr := newTestRepos()
		tr.balances.seed(productID, warehouseID, 10)
		tr.balances.conflictsLeft = 1
		ledger := NewLedgerService(nil, zap.NewNop())

		result, err := ledger.Apply(ctx, tr.scope, MovementRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Kind:            inventory.MovementKindIn,
			Quantity:        5,
			ReferenceType:   "PurchaseReceipt",
			ReferenceNumber: "PR-004",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(15), result.Balance.Quantity)
		assert.Equal(t, int64(15), tr.balances.quantity(productID, warehouseID))
		assert.Equal(t, 2, tr.balances.saveCalls)
		assert.Equal(t, 1, tr.movements.count())
	})

	t.Run("surfaces conflict after exhausting retries", func(t *testing.T) {
		tr := newTestRepos()
		tr.balances.seed(productID, warehouseID, 10)
		tr.balances.conflictsLeft = maxBalanceRetries
		ledger := NewLedgerService(nil, zap.NewNop())

		_, err := ledger.Apply(ctx, tr.scope, MovementRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Kind:            inventory.MovementKindIn,
			Quantity:        5,
			ReferenceType:   "PurchaseReceipt",
			ReferenceNumber: "PR-005",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, int64(10), tr.balances.quantity(productID, warehouseID))
		assert.Equal(t, 0, tr.movements.count())
	})

	t.Run("publishes movement and low stock events", func(t *testing.T) {
		tr := newTestRepos()
		b := tr.balances.seed(productID, warehouseID, 10)
		b.SafetyStock = 8
		publisher := &capturingPublisher{}
		ledger := NewLedgerService(publisher, zap.NewNop())

		_, err := ledger.Apply(ctx, tr.scope, MovementRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Kind:            inventory.MovementKindOut,
			Quantity:        -4,
			ReferenceType:   "Order",
			ReferenceNumber: "ORD-003",
		})

		require.NoError(t, err)
		types := publisher.eventTypes()
		assert.Contains(t, types, inventory.EventTypeLowStock)
		assert.Contains(t, types, inventory.EventTypeMovementRecorded)
	})
}

func TestLedgerRebase(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	warehouseID := uuid.New()

	t.Run("writes adjustment movement with signed delta", func(t *testing.T) {
		tr := newTestRepos()
		tr.balances.seed(productID, warehouseID, 10)
		ledger := NewLedgerService(nil, zap.NewNop())

		result, err := ledger.Rebase(ctx, tr.scope, RebaseRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			TargetQuantity:  4,
			ReferenceType:   "StockCount",
			ReferenceNumber: "SC-001",
		})

		require.NoError(t, err)
		require.NotNil(t, result.Movement)
		assert.Equal(t, inventory.MovementKindAdjustment, result.Movement.Kind)
		assert.Equal(t, int64(-6), result.Movement.Quantity)
		assert.Equal(t, int64(10), result.Movement.BeforeQuantity)
		assert.Equal(t, int64(4), result.Movement.AfterQuantity)
		assert.Equal(t, int64(4), tr.balances.quantity(productID, warehouseID))
	})

	t.Run("no movement when balance already at target", func(t *testing.T) {
		tr := newTestRepos()
		tr.balances.seed(productID, warehouseID, 10)
		ledger := NewLedgerService(nil, zap.NewNop())

		result, err := ledger.Rebase(ctx, tr.scope, RebaseRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			TargetQuantity:  10,
			ReferenceType:   "StockCount",
			ReferenceNumber: "SC-002",
		})

		require.NoError(t, err)
		assert.Nil(t, result.Movement)
		assert.Equal(t, int64(10), result.Balance.Quantity)
		assert.Equal(t, 0, tr.movements.count())
	})

	t.Run("retries after a version conflict", func(t *testing.T) {
		tr := newTestRepos()
		tr.balances.seed(productID, warehouseID, 10)
		tr.balances.conflictsLeft = 1
		ledger := NewLedgerService(nil, zap.NewNop())

		result, err := ledger.Rebase(ctx, tr.scope, RebaseRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			TargetQuantity:  12,
			ReferenceType:   "StockAdjustment",
			ReferenceNumber: "ADJ-001",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(12), result.Balance.Quantity)
		assert.Equal(t, 1, tr.movements.count())
	})

	t.Run("ledger stays consistent with movement sum", func(t *testing.T) {
		tr := newTestRepos()
		ledger := NewLedgerService(nil, zap.NewNop())

		deltas := []int64{20, -5, 8, -3}
		for i, d := range deltas {
			kind := inventory.MovementKindIn
			if d < 0 {
				kind = inventory.MovementKindOut
			}
			_, err := ledger.Apply(ctx, tr.scope, MovementRequest{
				ProductID:       productID,
				WarehouseID:     warehouseID,
				Kind:            kind,
				Quantity:        d,
				ReferenceType:   "Order",
				ReferenceNumber: "ORD-100",
				Notes:           "step",
				ActorID:         uuid.New(),
			})
			require.NoError(t, err, "delta %d", i)
		}

		sum, err := tr.movements.SumQuantity(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.Equal(t, tr.balances.quantity(productID, warehouseID), sum)
		assert.Equal(t, int64(20), sum)
	})
}
