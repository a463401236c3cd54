package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// AdjustmentService re-bases balances to operator-supplied quantities.
// Adjustments are fire-and-forget: there is no approval step, negative
// targets are allowed, and the whole document applies in one transaction.
type AdjustmentService struct {
	scope   TransactionScope
	ledger  *LedgerService
	numbers *numbering.Generator
	adjRepo inventory.AdjustmentRepository
	logger  *zap.Logger
}

// NewAdjustmentService creates an adjustment service
func NewAdjustmentService(
	scope TransactionScope,
	ledger *LedgerService,
	numbers *numbering.Generator,
	adjRepo inventory.AdjustmentRepository,
	logger *zap.Logger,
) *AdjustmentService {
	return &AdjustmentService{
		scope:   scope,
		ledger:  ledger,
		numbers: numbers,
		adjRepo: adjRepo,
		logger:  logger,
	}
}

// CreateAdjustment assigns a number and re-bases every listed balance,
// writing one adjustment movement per differing item
func (s *AdjustmentService) CreateAdjustment(ctx context.Context, req CreateAdjustmentRequest, actorID uuid.UUID) (*inventory.StockAdjustment, error) {
	var adjustment *inventory.StockAdjustment

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := s.numbers.Next(ctx, repos.NumberingRepo(), numbering.DocTypeStockAdjustment)
		if err != nil {
			return err
		}

		adj, err := inventory.NewStockAdjustment(number, req.WarehouseID, req.Reason, actorID)
		if err != nil {
			return err
		}

		for _, item := range req.Items {
			result, err := s.ledger.Rebase(ctx, repos, RebaseRequest{
				ProductID:       item.ProductID,
				WarehouseID:     req.WarehouseID,
				TargetQuantity:  item.AfterQuantity,
				ReferenceType:   numbering.DocTypeStockAdjustment,
				ReferenceNumber: number,
				Notes:           item.Notes,
				ActorID:         actorID,
			})
			if err != nil {
				return err
			}

			if err := adj.AddItem(item.ProductID, item.AfterQuantity, item.Notes); err != nil {
				return err
			}
			before := item.AfterQuantity
			if result.Movement != nil {
				before = result.Movement.BeforeQuantity
			}
			adj.Items[len(adj.Items)-1].BeforeQuantity = before
		}

		if err := repos.AdjustmentRepo().Create(ctx, adj); err != nil {
			return err
		}

		adjustment = adj
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock adjustment applied",
		zap.String("adjustment_number", adjustment.AdjustmentNumber),
		zap.String("warehouse_id", adjustment.WarehouseID.String()),
		zap.Int("items", len(adjustment.Items)),
	)

	return adjustment, nil
}

// GetAdjustment returns one adjustment with its items
func (s *AdjustmentService) GetAdjustment(ctx context.Context, id uuid.UUID) (*inventory.StockAdjustment, error) {
	return s.adjRepo.FindByID(ctx, id)
}

// ListAdjustments lists adjustments matching the filter
func (s *AdjustmentService) ListAdjustments(ctx context.Context, filter shared.Filter) (shared.Paginated[inventory.StockAdjustment], error) {
	items, err := s.adjRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.StockAdjustment]{}, err
	}
	total, err := s.adjRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.StockAdjustment]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
