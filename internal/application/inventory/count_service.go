package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// CountService runs the stock count lifecycle: DRAFT -> IN_PROGRESS ->
// COMPLETED, with cancellation allowed until completion. Completing a count
// re-bases every differing balance in the same transaction that flips the
// status, so a failed rebase leaves the count IN_PROGRESS and the ledger
// untouched.
type CountService struct {
	scope          TransactionScope
	ledger         *LedgerService
	numbers        *numbering.Generator
	countRepo      inventory.CountRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCountService creates a count service
func NewCountService(
	scope TransactionScope,
	ledger *LedgerService,
	numbers *numbering.Generator,
	countRepo inventory.CountRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *CountService {
	return &CountService{
		scope:          scope,
		ledger:         ledger,
		numbers:        numbers,
		countRepo:      countRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreateCount opens a count in DRAFT status
func (s *CountService) CreateCount(ctx context.Context, req CreateCountRequest, actorID uuid.UUID) (*inventory.StockCount, error) {
	var count *inventory.StockCount

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := s.numbers.Next(ctx, repos.NumberingRepo(), numbering.DocTypeStockCount)
		if err != nil {
			return err
		}

		sc, err := inventory.NewStockCount(number, req.WarehouseID, req.Notes, actorID)
		if err != nil {
			return err
		}
		if err := repos.CountRepo().Create(ctx, sc); err != nil {
			return err
		}

		count = sc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return count, nil
}

// InitializeItems snapshots every positive balance in the warehouse as count
// items and moves the count to IN_PROGRESS
func (s *CountService) InitializeItems(ctx context.Context, countID, actorID uuid.UUID) (*inventory.StockCount, error) {
	var count *inventory.StockCount

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sc, err := repos.CountRepo().FindByID(ctx, countID)
		if err != nil {
			return err
		}

		balances, err := repos.BalanceRepo().FindPositiveByWarehouse(ctx, sc.WarehouseID)
		if err != nil {
			return err
		}
		snapshots := make([]inventory.CountSnapshot, 0, len(balances))
		for _, b := range balances {
			snapshots = append(snapshots, inventory.CountSnapshot{ProductID: b.ProductID, Quantity: b.Quantity})
		}

		if err := sc.InitializeItems(snapshots, actorID); err != nil {
			return err
		}
		if err := repos.CountRepo().Save(ctx, sc); err != nil {
			return err
		}

		count = sc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, count)

	return count, nil
}

// RecordCount records the physical count for one item
func (s *CountService) RecordCount(ctx context.Context, countID, itemID uuid.UUID, req RecordCountRequest, actorID uuid.UUID) (*inventory.StockCount, error) {
	var count *inventory.StockCount

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sc, err := repos.CountRepo().FindByID(ctx, countID)
		if err != nil {
			return err
		}

		if err := sc.RecordItemCount(itemID, req.ActualQuantity, actorID, req.Reason); err != nil {
			return err
		}
		if err := repos.CountRepo().Save(ctx, sc); err != nil {
			return err
		}

		count = sc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return count, nil
}

// CompleteCount validates that every item was counted, re-bases differing
// balances and flips the count to COMPLETED, all in one transaction
func (s *CountService) CompleteCount(ctx context.Context, countID, actorID uuid.UUID) (*inventory.StockCount, error) {
	var count *inventory.StockCount

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sc, err := repos.CountRepo().FindByID(ctx, countID)
		if err != nil {
			return err
		}

		if err := sc.Complete(actorID); err != nil {
			return err
		}

		for _, item := range sc.GetItemsWithDifference() {
			if _, err := s.ledger.Rebase(ctx, repos, RebaseRequest{
				ProductID:       item.ProductID,
				WarehouseID:     sc.WarehouseID,
				TargetQuantity:  *item.ActualQuantity,
				ReferenceType:   numbering.DocTypeStockCount,
				ReferenceNumber: sc.CountNumber,
				Notes:           item.Reason,
				ActorID:         actorID,
			}); err != nil {
				return err
			}
		}

		if err := repos.CountRepo().Save(ctx, sc); err != nil {
			return err
		}

		count = sc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, count)

	s.logger.Info("stock count completed",
		zap.String("count_number", count.CountNumber),
		zap.Int64("total_surplus", count.TotalSurplus),
		zap.Int64("total_shortage", count.TotalShortage),
	)

	return count, nil
}

// CancelCount cancels a count; legal unless already completed
func (s *CountService) CancelCount(ctx context.Context, countID uuid.UUID, reason string) (*inventory.StockCount, error) {
	var count *inventory.StockCount

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sc, err := repos.CountRepo().FindByID(ctx, countID)
		if err != nil {
			return err
		}

		if err := sc.Cancel(reason); err != nil {
			return err
		}
		if err := repos.CountRepo().Save(ctx, sc); err != nil {
			return err
		}

		count = sc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return count, nil
}

// GetCount returns one count with its items
func (s *CountService) GetCount(ctx context.Context, id uuid.UUID) (*inventory.StockCount, error) {
	return s.countRepo.FindByID(ctx, id)
}

// ListCounts lists counts matching the filter
func (s *CountService) ListCounts(ctx context.Context, filter shared.Filter) (shared.Paginated[inventory.StockCount], error) {
	items, err := s.countRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.StockCount]{}, err
	}
	total, err := s.countRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.StockCount]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// publishDomainEvents emits buffered aggregate events after commit
func (s *CountService) publishDomainEvents(ctx context.Context, count *inventory.StockCount) {
	if s.eventPublisher == nil || count == nil {
		return
	}
	events := count.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock count events", zap.Error(err))
	}
	count.ClearDomainEvents()
}
