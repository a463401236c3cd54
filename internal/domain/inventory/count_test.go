package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
)

func startedCount(t *testing.T, snapshots []CountSnapshot) *StockCount {
	t.Helper()
	sc, err := NewStockCount("SC-001", uuid.New(), "", uuid.New())
	require.NoError(t, err)
	require.NoError(t, sc.InitializeItems(snapshots, uuid.New()))
	return sc
}

func TestStockCountInitializeItems(t *testing.T) {
	actorID := uuid.New()

	t.Run("snapshots system quantities and starts counting", func(t *testing.T) {
		sc, err := NewStockCount("SC-001", uuid.New(), "monthly", uuid.New())
		require.NoError(t, err)
		require.Equal(t, CountStatusDraft, sc.Status)

		err = sc.InitializeItems([]CountSnapshot{
			{ProductID: uuid.New(), Quantity: 12},
			{ProductID: uuid.New(), Quantity: 5},
		}, actorID)

		require.NoError(t, err)
		assert.Equal(t, CountStatusInProgress, sc.Status)
		assert.Equal(t, 2, sc.TotalItems)
		assert.Equal(t, 0, sc.CountedItems)
		assert.NotNil(t, sc.StartedAt)
		assert.Equal(t, int64(12), sc.Items[0].SystemQuantity)

		events := sc.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeStockCountStarted, events[0].EventType())
	})

	t.Run("rejects an empty snapshot set", func(t *testing.T) {
		sc, err := NewStockCount("SC-002", uuid.New(), "", uuid.New())
		require.NoError(t, err)

		err = sc.InitializeItems(nil, actorID)

		assert.ErrorIs(t, err, shared.ErrValidationFailure)
		assert.Equal(t, CountStatusDraft, sc.Status)
	})

	t.Run("only legal from draft", func(t *testing.T) {
		sc := startedCount(t, []CountSnapshot{{ProductID: uuid.New(), Quantity: 1}})

		err := sc.InitializeItems([]CountSnapshot{{ProductID: uuid.New(), Quantity: 2}}, actorID)

		assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
	})
}

func TestStockCountRecordItemCount(t *testing.T) {
	actorID := uuid.New()

	t.Run("tracks differences and totals", func(t *testing.T) {
		productA := uuid.New()
		productB := uuid.New()
		sc := startedCount(t, []CountSnapshot{
			{ProductID: productA, Quantity: 10},
			{ProductID: productB, Quantity: 5},
		})

		require.NoError(t, sc.RecordItemCount(sc.Items[0].ID, 7, actorID, "damaged units"))
		require.NoError(t, sc.RecordItemCount(sc.Items[1].ID, 9, actorID, ""))

		assert.Equal(t, 2, sc.CountedItems)
		assert.Equal(t, int64(-3), sc.Items[0].Difference)
		assert.Equal(t, int64(4), sc.Items[1].Difference)
		assert.Equal(t, int64(4), sc.TotalSurplus)
		assert.Equal(t, int64(3), sc.TotalShortage)
		assert.True(t, sc.IsComplete())
	})

	t.Run("recounting an item does not double count it", func(t *testing.T) {
		sc := startedCount(t, []CountSnapshot{{ProductID: uuid.New(), Quantity: 10}})

		require.NoError(t, sc.RecordItemCount(sc.Items[0].ID, 8, actorID, ""))
		require.NoError(t, sc.RecordItemCount(sc.Items[0].ID, 10, actorID, "first pass was wrong"))

		assert.Equal(t, 1, sc.CountedItems)
		assert.Equal(t, int64(0), sc.Items[0].Difference)
		assert.Equal(t, int64(0), sc.TotalShortage)
	})

	t.Run("negative actual quantity is rejected", func(t *testing.T) {
		sc := startedCount(t, []CountSnapshot{{ProductID: uuid.New(), Quantity: 10}})

		err := sc.RecordItemCount(sc.Items[0].ID, -1, actorID, "")

		assert.ErrorIs(t, err, shared.ErrValidationFailure)
		assert.Equal(t, 0, sc.CountedItems)
	})

	t.Run("unknown item returns not found", func(t *testing.T) {
		sc := startedCount(t, []CountSnapshot{{ProductID: uuid.New(), Quantity: 10}})

		err := sc.RecordItemCount(uuid.New(), 5, actorID, "")

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestStockCountComplete(t *testing.T) {
	actorID := uuid.New()

	t.Run("requires every item to be counted", func(t *testing.T) {
		sc := startedCount(t, []CountSnapshot{
			{ProductID: uuid.New(), Quantity: 10},
			{ProductID: uuid.New(), Quantity: 5},
		})
		require.NoError(t, sc.RecordItemCount(sc.Items[0].ID, 10, actorID, ""))

		err := sc.Complete(actorID)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrIncompleteCount)
		assert.Contains(t, err.Error(), "(1/2)")
	})

	t.Run("reports only the differing items for re-basing", func(t *testing.T) {
		sc := startedCount(t, []CountSnapshot{
			{ProductID: uuid.New(), Quantity: 10},
			{ProductID: uuid.New(), Quantity: 5},
		})
		require.NoError(t, sc.RecordItemCount(sc.Items[0].ID, 7, actorID, ""))
		require.NoError(t, sc.RecordItemCount(sc.Items[1].ID, 5, actorID, ""))
		sc.ClearDomainEvents()

		require.NoError(t, sc.Complete(actorID))

		assert.Equal(t, CountStatusCompleted, sc.Status)
		assert.NotNil(t, sc.CompletedAt)

		diffs := sc.GetItemsWithDifference()
		require.Len(t, diffs, 1)
		assert.Equal(t, int64(-3), diffs[0].Difference)

		events := sc.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeStockCountComplete, events[0].EventType())
	})

	t.Run("terminal states reject further transitions", func(t *testing.T) {
		sc := startedCount(t, []CountSnapshot{{ProductID: uuid.New(), Quantity: 1}})
		require.NoError(t, sc.RecordItemCount(sc.Items[0].ID, 1, actorID, ""))
		require.NoError(t, sc.Complete(actorID))

		assert.ErrorIs(t, sc.Cancel("too late"), shared.ErrInvalidStateTransition)
		assert.ErrorIs(t, sc.Complete(actorID), shared.ErrInvalidStateTransition)
	})
}

func TestStockCountCancel(t *testing.T) {
	t.Run("legal from draft and in progress", func(t *testing.T) {
		draft, err := NewStockCount("SC-010", uuid.New(), "", uuid.New())
		require.NoError(t, err)
		require.NoError(t, draft.Cancel("postponed"))
		assert.Equal(t, CountStatusCancelled, draft.Status)
		assert.Equal(t, "postponed", draft.Notes)

		started := startedCount(t, []CountSnapshot{{ProductID: uuid.New(), Quantity: 3}})
		require.NoError(t, started.Cancel(""))
		assert.Equal(t, CountStatusCancelled, started.Status)
	})

	t.Run("uncounted items remain visible", func(t *testing.T) {
		sc := startedCount(t, []CountSnapshot{
			{ProductID: uuid.New(), Quantity: 1},
			{ProductID: uuid.New(), Quantity: 2},
		})
		require.NoError(t, sc.RecordItemCount(sc.Items[0].ID, 1, uuid.New(), ""))

		uncounted := sc.GetUncountedItems()
		require.Len(t, uncounted, 1)
		assert.Equal(t, sc.Items[1].ProductID, uncounted[0].ProductID)
	})
}
