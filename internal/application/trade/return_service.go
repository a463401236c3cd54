package trade

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	invapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// ReturnService sends goods back to suppliers. The ledger is touched exactly
// once on the way out (confirmation) and, if the confirmed return is later
// cancelled, once on the way back in. A return can never ship stock the
// warehouse does not hold.
type ReturnService struct {
	scope          invapp.TransactionScope
	ledger         *invapp.LedgerService
	numbers        *numbering.Generator
	returnRepo     trade.ReturnRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReturnService creates a return service
func NewReturnService(
	scope invapp.TransactionScope,
	ledger *invapp.LedgerService,
	numbers *numbering.Generator,
	returnRepo trade.ReturnRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ReturnService {
	return &ReturnService{
		scope:          scope,
		ledger:         ledger,
		numbers:        numbers,
		returnRepo:     returnRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreateReturn opens a return in PENDING status; no stock moves yet
func (s *ReturnService) CreateReturn(ctx context.Context, req CreateReturnRequest) (*trade.PurchaseReturn, error) {
	var ret *trade.PurchaseReturn

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		number, err := s.numbers.Next(ctx, repos.NumberingRepo(), numbering.DocTypePurchaseReturn)
		if err != nil {
			return err
		}

		pr, err := trade.NewPurchaseReturn(number, req.SupplierID, req.WarehouseID, req.Reason)
		if err != nil {
			return err
		}
		for _, item := range req.Items {
			if err := pr.AddItem(item.ProductID, item.Quantity, item.UnitPrice, item.Notes); err != nil {
				return err
			}
		}
		if err := repos.ReturnRepo().Create(ctx, pr); err != nil {
			return err
		}

		ret = pr
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// ConfirmReturn deducts every line from the warehouse and marks the return
// CONFIRMED. Insufficient stock on any line rolls the whole confirmation back.
func (s *ReturnService) ConfirmReturn(ctx context.Context, returnID, actorID uuid.UUID) (*trade.PurchaseReturn, error) {
	var ret *trade.PurchaseReturn

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		pr, err := repos.ReturnRepo().FindByID(ctx, returnID)
		if err != nil {
			return err
		}

		if err := pr.MarkConfirmed(actorID); err != nil {
			return err
		}

		for _, item := range pr.Items {
			if _, err := s.ledger.Apply(ctx, repos, invapp.MovementRequest{
				ProductID:          item.ProductID,
				WarehouseID:        pr.WarehouseID,
				Kind:               inventory.MovementKindOut,
				Quantity:           -item.Quantity,
				ReferenceType:      numbering.DocTypePurchaseReturn,
				ReferenceNumber:    pr.ReturnNumber,
				Notes:              item.Notes,
				ActorID:            actorID,
				RequireNonNegative: true,
			}); err != nil {
				return err
			}
		}

		if err := repos.ReturnRepo().Save(ctx, pr); err != nil {
			return err
		}

		ret = pr
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, trade.NewPurchaseReturnConfirmedEvent(ret))

	s.logger.Info("purchase return confirmed, stock deducted",
		zap.String("return_number", ret.ReturnNumber),
		zap.Int64("total_quantity", ret.TotalQuantity()),
	)

	return ret, nil
}

// CompleteReturn records the supplier's acknowledgement; pure status change
func (s *ReturnService) CompleteReturn(ctx context.Context, returnID uuid.UUID) (*trade.PurchaseReturn, error) {
	var ret *trade.PurchaseReturn

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		pr, err := repos.ReturnRepo().FindByID(ctx, returnID)
		if err != nil {
			return err
		}

		if err := pr.MarkReturned(); err != nil {
			return err
		}
		if err := repos.ReturnRepo().Save(ctx, pr); err != nil {
			return err
		}

		ret = pr
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// CancelReturn cancels a return. Cancelling a confirmed return first writes
// compensating inbound movements so the deducted stock comes back.
func (s *ReturnService) CancelReturn(ctx context.Context, returnID, actorID uuid.UUID, reason string) (*trade.PurchaseReturn, error) {
	var ret *trade.PurchaseReturn

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		pr, err := repos.ReturnRepo().FindByID(ctx, returnID)
		if err != nil {
			return err
		}

		wasConfirmed := pr.Status == trade.PurchaseReturnStatusConfirmed

		if err := pr.MarkCancelled(reason); err != nil {
			return err
		}

		if wasConfirmed {
			for _, item := range pr.Items {
				if _, err := s.ledger.Apply(ctx, repos, invapp.MovementRequest{
					ProductID:       item.ProductID,
					WarehouseID:     pr.WarehouseID,
					Kind:            inventory.MovementKindIn,
					Quantity:        item.Quantity,
					ReferenceType:   numbering.DocTypePurchaseReturn,
					ReferenceNumber: pr.ReturnNumber,
					Notes:           item.Notes,
					ActorID:         actorID,
				}); err != nil {
					return err
				}
			}
		}

		if err := repos.ReturnRepo().Save(ctx, pr); err != nil {
			return err
		}

		ret = pr
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// GetReturn returns one purchase return with its items
func (s *ReturnService) GetReturn(ctx context.Context, id uuid.UUID) (*trade.PurchaseReturn, error) {
	return s.returnRepo.FindByID(ctx, id)
}

// ListReturns lists purchase returns matching the filter
func (s *ReturnService) ListReturns(ctx context.Context, filter shared.Filter) (shared.Paginated[trade.PurchaseReturn], error) {
	items, err := s.returnRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[trade.PurchaseReturn]{}, err
	}
	total, err := s.returnRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[trade.PurchaseReturn]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *ReturnService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish return event", zap.Error(err))
	}
}
