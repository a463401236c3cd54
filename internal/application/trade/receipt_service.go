package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	invapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// ReceiptService books goods received against approved purchase orders. One
// receipt may cover any subset of the order's open lines; the receipt, the
// inbound movements, the line-level received quantities and the derived order
// status all commit together.
type ReceiptService struct {
	scope             invapp.TransactionScope
	ledger            *invapp.LedgerService
	numbers           *numbering.Generator
	receiptRepo       trade.ReceiptRepository
	overReceiptPolicy trade.OverReceiptPolicy
	eventPublisher    shared.EventPublisher
	logger            *zap.Logger
}

// NewReceiptService creates a receipt service. overReceiptPolicy mirrors the
// purchasing.over_receipt_policy config key.
func NewReceiptService(
	scope invapp.TransactionScope,
	ledger *invapp.LedgerService,
	numbers *numbering.Generator,
	receiptRepo trade.ReceiptRepository,
	overReceiptPolicy trade.OverReceiptPolicy,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ReceiptService {
	if !overReceiptPolicy.IsValid() {
		overReceiptPolicy = trade.OverReceiptReject
	}
	return &ReceiptService{
		scope:             scope,
		ledger:            ledger,
		numbers:           numbers,
		receiptRepo:       receiptRepo,
		overReceiptPolicy: overReceiptPolicy,
		eventPublisher:    eventPublisher,
		logger:            logger,
	}
}

// CreateReceipt books one receiving event. Every line must reference an open
// purchase order line; quantities beyond the ordered amount are rejected or
// clamped depending on the configured policy.
func (s *ReceiptService) CreateReceipt(ctx context.Context, req CreateReceiptRequest, actorID uuid.UUID) (*trade.PurchaseReceipt, error) {
	var receipt *trade.PurchaseReceipt

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		po, err := repos.PurchaseOrderRepo().FindByID(ctx, req.PurchaseOrderID)
		if err != nil {
			return err
		}
		if !po.Status.CanReceive() {
			return shared.NewDomainError("INVALID_STATE_TRANSITION",
				fmt.Sprintf("Cannot receive against purchase order in %s status", po.Status))
		}

		warehouseID := po.WarehouseID
		if req.WarehouseID != nil {
			warehouseID = *req.WarehouseID
		}

		number, err := s.numbers.Next(ctx, repos.NumberingRepo(), numbering.DocTypePurchaseReceipt)
		if err != nil {
			return err
		}

		r, err := trade.NewPurchaseReceipt(number, po.ID, warehouseID, actorID, req.Notes)
		if err != nil {
			return err
		}

		for _, line := range req.Items {
			item := po.FindItem(line.ProductID)
			if item == nil {
				return shared.NewDomainError("VALIDATION_FAILURE",
					fmt.Sprintf("Product %s is not on purchase order %s", line.ProductID, po.OrderNumber))
			}

			applied, err := item.AddReceivedQuantity(line.Quantity, s.overReceiptPolicy)
			if err != nil {
				return err
			}

			if err := r.AddItem(item.ID, item.ProductID, applied, item.UnitPrice, line.Notes); err != nil {
				return err
			}

			if _, err := s.ledger.Apply(ctx, repos, invapp.MovementRequest{
				ProductID:       item.ProductID,
				WarehouseID:     warehouseID,
				Kind:            inventory.MovementKindIn,
				Quantity:        applied,
				ReferenceType:   numbering.DocTypePurchaseReceipt,
				ReferenceNumber: r.ReceiptNumber,
				Notes:           line.Notes,
				ActorID:         actorID,
			}); err != nil {
				return err
			}
		}

		po.RecalculateReceivingStatus()

		if err := repos.ReceiptRepo().Create(ctx, r); err != nil {
			return err
		}
		if err := repos.PurchaseOrderRepo().Save(ctx, po); err != nil {
			return err
		}

		receipt = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, trade.NewPurchaseReceiptCreatedEvent(receipt))

	s.logger.Info("purchase receipt booked",
		zap.String("receipt_number", receipt.ReceiptNumber),
		zap.Int64("total_quantity", receipt.TotalQuantity()),
	)

	return receipt, nil
}

// GetReceipt returns one receipt with its items
func (s *ReceiptService) GetReceipt(ctx context.Context, id uuid.UUID) (*trade.PurchaseReceipt, error) {
	return s.receiptRepo.FindByID(ctx, id)
}

// ListReceiptsByPurchaseOrder returns all receipts booked against an order
func (s *ReceiptService) ListReceiptsByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]trade.PurchaseReceipt, error) {
	return s.receiptRepo.FindByPurchaseOrder(ctx, purchaseOrderID)
}

// ListReceipts lists receipts matching the filter
func (s *ReceiptService) ListReceipts(ctx context.Context, filter shared.Filter) (shared.Paginated[trade.PurchaseReceipt], error) {
	items, err := s.receiptRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[trade.PurchaseReceipt]{}, err
	}
	total, err := s.receiptRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[trade.PurchaseReceipt]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// TodayStats summarizes today's receiving activity for dashboards
func (s *ReceiptService) TodayStats(ctx context.Context) (*trade.ReceiptDayStats, error) {
	return s.receiptRepo.StatsForDay(ctx, time.Now())
}

func (s *ReceiptService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish receipt event", zap.Error(err))
	}
}
