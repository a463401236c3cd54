package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/domain/inventory"
)

func newLedgerMovement(t *testing.T, qty int64, referenceNumber string) *inventory.Movement {
	t.Helper()
	movement, err := inventory.NewMovement(
		uuid.New(), uuid.New(), uuid.New(),
		inventory.MovementKindIn, qty, 0, qty,
		"PurchaseReceipt", referenceNumber,
	)
	require.NoError(t, err)
	return movement
}

func TestGormTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when every write succeeds", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		scope := NewGormTransactionScope(db.DB)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if err := repos.MovementRepo().Create(ctx, newLedgerMovement(t, 5, "PurchaseReceipt202601050001")); err != nil {
				return err
			}
			return repos.MovementRepo().Create(ctx, newLedgerMovement(t, 3, "PurchaseReceipt202601050001"))
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back the whole document when a later write fails", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		scope := NewGormTransactionScope(db.DB)

		// A receipt with two lines: the first ledger row lands, the second
		// fails, and the transaction must take the first row down with it.
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if err := repos.MovementRepo().Create(ctx, newLedgerMovement(t, 5, "PurchaseReceipt202601050002")); err != nil {
				return err
			}
			return repos.MovementRepo().Create(ctx, newLedgerMovement(t, 3, "PurchaseReceipt202601050002"))
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
