package inventory

import (
	"context"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/stock"
	"github.com/retailcore/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the document repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Every document process (fulfillment, receiving, returns,
// transfer phases, adjustments, counts) runs inside exactly one scope.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
//
// Aggregate boundary notes:
//   - BalanceRepo: stock balances, mutated only through the ledger service
//     so every change is paired with a movement row.
//   - MovementRepo: append-only; movement rows are never updated.
//   - Line items (order, receipt, return, transfer, count items) are child
//     entities persisted through their aggregate's repository.
type TransactionalRepositories interface {
	// BalanceRepo returns the stock balance repository scoped to the current transaction
	BalanceRepo() inventory.BalanceRepository
	// MovementRepo returns the movement ledger repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
	// AdjustmentRepo returns the stock adjustment repository scoped to the current transaction
	AdjustmentRepo() inventory.AdjustmentRepository
	// CountRepo returns the stock count repository scoped to the current transaction
	CountRepo() inventory.CountRepository
	// TransferRepo returns the stock transfer repository scoped to the current transaction
	TransferRepo() stock.TransferRepository
	// OrderRepo returns the sales order repository scoped to the current transaction
	OrderRepo() trade.OrderRepository
	// PurchaseOrderRepo returns the purchase order repository scoped to the current transaction
	PurchaseOrderRepo() trade.PurchaseOrderRepository
	// ReceiptRepo returns the purchase receipt repository scoped to the current transaction
	ReceiptRepo() trade.ReceiptRepository
	// ReturnRepo returns the purchase return repository scoped to the current transaction
	ReturnRepo() trade.ReturnRepository
	// NumberingRepo returns the numbering rule repository scoped to the current transaction
	NumberingRepo() numbering.RuleRepository
}

// RepositorySet bundles concrete repositories for scopes that hand them out
// unchanged (the no-op scope below and tests)
type RepositorySet struct {
	Balances       inventory.BalanceRepository
	Movements      inventory.MovementRepository
	Adjustments    inventory.AdjustmentRepository
	Counts         inventory.CountRepository
	Transfers      stock.TransferRepository
	Orders         trade.OrderRepository
	PurchaseOrders trade.PurchaseOrderRepository
	Receipts       trade.ReceiptRepository
	Returns        trade.ReturnRepository
	NumberingRules numbering.RuleRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	repos RepositorySet
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(repos RepositorySet) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction (for testing/compatibility)
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BalanceRepo returns the stock balance repository
func (s *NoOpTransactionScope) BalanceRepo() inventory.BalanceRepository { return s.repos.Balances }

// MovementRepo returns the movement ledger repository
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.repos.Movements
}

// AdjustmentRepo returns the stock adjustment repository
func (s *NoOpTransactionScope) AdjustmentRepo() inventory.AdjustmentRepository {
	return s.repos.Adjustments
}

// CountRepo returns the stock count repository
func (s *NoOpTransactionScope) CountRepo() inventory.CountRepository { return s.repos.Counts }

// TransferRepo returns the stock transfer repository
func (s *NoOpTransactionScope) TransferRepo() stock.TransferRepository { return s.repos.Transfers }

// OrderRepo returns the sales order repository
func (s *NoOpTransactionScope) OrderRepo() trade.OrderRepository { return s.repos.Orders }

// PurchaseOrderRepo returns the purchase order repository
func (s *NoOpTransactionScope) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return s.repos.PurchaseOrders
}

// ReceiptRepo returns the purchase receipt repository
func (s *NoOpTransactionScope) ReceiptRepo() trade.ReceiptRepository { return s.repos.Receipts }

// ReturnRepo returns the purchase return repository
func (s *NoOpTransactionScope) ReturnRepo() trade.ReturnRepository { return s.repos.Returns }

// NumberingRepo returns the numbering rule repository
func (s *NoOpTransactionScope) NumberingRepo() numbering.RuleRepository {
	return s.repos.NumberingRules
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
