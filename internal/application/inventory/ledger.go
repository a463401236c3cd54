package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// maxBalanceRetries bounds the optimistic-lock retry loop on one balance row
const maxBalanceRetries = 3

// MovementRequest asks the ledger to shift one balance by a signed delta
type MovementRequest struct {
	ProductID       uuid.UUID
	WarehouseID     uuid.UUID
	Kind            inventory.MovementKind
	Quantity        int64 // Signed delta
	ReferenceType   string
	ReferenceNumber string
	Notes           string
	ActorID         uuid.UUID
	// RequireNonNegative fails with INSUFFICIENT_STOCK before anything is
	// written when the delta would take the balance below zero. Callers
	// decide policy; the ledger itself allows negative stock.
	RequireNonNegative bool
}

// RebaseRequest asks the ledger to set one balance to a target quantity
type RebaseRequest struct {
	ProductID       uuid.UUID
	WarehouseID     uuid.UUID
	TargetQuantity  int64
	ReferenceType   string
	ReferenceNumber string
	Notes           string
	ActorID         uuid.UUID
}

// MovementResult reports the ledger write. Movement is nil when a rebase
// found the balance already at the target quantity.
type MovementResult struct {
	Movement *inventory.Movement
	Balance  *inventory.Balance
}

// LedgerService is the single write path for stock balances: read the
// balance, apply the change, and append the immutable movement row in the
// same transaction. It carries no business policy beyond the optional
// non-negative check; document processors decide what is allowed.
type LedgerService struct {
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a ledger service
func NewLedgerService(eventPublisher shared.EventPublisher, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Apply shifts a balance by the requested delta and appends the movement.
// The balance row is written under an optimistic version check, re-read and
// retried a bounded number of times; exhaustion surfaces
// shared.ErrConcurrencyConflict, which is retryable for the caller.
func (s *LedgerService) Apply(ctx context.Context, repos TransactionalRepositories, req MovementRequest) (*MovementResult, error) {
	if req.Quantity == 0 {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Movement quantity cannot be zero")
	}

	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		balance, err := repos.BalanceRepo().GetOrCreate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return nil, err
		}

		if req.RequireNonNegative && balance.Quantity+req.Quantity < 0 {
			return nil, shared.ErrInsufficientStock
		}

		before, after := balance.ApplyDelta(req.Quantity)

		if err := repos.BalanceRepo().SaveWithLock(ctx, balance); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				s.logger.Debug("balance version conflict, retrying",
					zap.String("product_id", req.ProductID.String()),
					zap.String("warehouse_id", req.WarehouseID.String()),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			return nil, err
		}

		movement, err := inventory.NewMovement(
			balance.ID,
			req.ProductID,
			req.WarehouseID,
			req.Kind,
			req.Quantity,
			before,
			after,
			req.ReferenceType,
			req.ReferenceNumber,
		)
		if err != nil {
			return nil, err
		}
		if req.Notes != "" {
			movement.WithNotes(req.Notes)
		}
		if req.ActorID != uuid.Nil {
			movement.WithActorID(req.ActorID)
		}

		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return nil, err
		}

		s.publishEvents(ctx, balance, movement)

		return &MovementResult{Movement: movement, Balance: balance}, nil
	}

	return nil, shared.ErrConcurrencyConflict
}

// Rebase sets a balance to the target quantity and appends an adjustment
// movement with delta = target - before. When the balance is already at the
// target no movement is written and the result carries a nil Movement.
func (s *LedgerService) Rebase(ctx context.Context, repos TransactionalRepositories, req RebaseRequest) (*MovementResult, error) {
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		balance, err := repos.BalanceRepo().GetOrCreate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return nil, err
		}

		if balance.Quantity == req.TargetQuantity {
			return &MovementResult{Balance: balance}, nil
		}

		before, delta := balance.Rebase(req.TargetQuantity)

		if err := repos.BalanceRepo().SaveWithLock(ctx, balance); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return nil, err
		}

		movement, err := inventory.NewMovement(
			balance.ID,
			req.ProductID,
			req.WarehouseID,
			inventory.MovementKindAdjustment,
			delta,
			before,
			req.TargetQuantity,
			req.ReferenceType,
			req.ReferenceNumber,
		)
		if err != nil {
			return nil, err
		}
		if req.Notes != "" {
			movement.WithNotes(req.Notes)
		}
		if req.ActorID != uuid.Nil {
			movement.WithActorID(req.ActorID)
		}

		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return nil, err
		}

		s.publishEvents(ctx, balance, movement)

		return &MovementResult{Movement: movement, Balance: balance}, nil
	}

	return nil, shared.ErrConcurrencyConflict
}

// publishEvents emits the movement event plus any events the balance raised
// (low stock). Publish failures are logged, never surfaced: the ledger write
// already committed its intent.
func (s *LedgerService) publishEvents(ctx context.Context, balance *inventory.Balance, movement *inventory.Movement) {
	if s.eventPublisher == nil {
		return
	}

	events := append(balance.GetDomainEvents(), inventory.NewMovementRecordedEvent(movement))
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish ledger events", zap.Error(err))
	}
	balance.ClearDomainEvents()
}
