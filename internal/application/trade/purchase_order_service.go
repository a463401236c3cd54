package trade

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	invapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// PurchaseOrderService manages the purchase order lifecycle up to the point
// where receiving takes over: DRAFT -> PENDING_APPROVAL -> APPROVED, plus
// cancellation. Receiving status is derived by the ReceiptService.
type PurchaseOrderService struct {
	scope             invapp.TransactionScope
	numbers           *numbering.Generator
	purchaseOrderRepo trade.PurchaseOrderRepository
	logger            *zap.Logger
}

// NewPurchaseOrderService creates a purchase order service
func NewPurchaseOrderService(
	scope invapp.TransactionScope,
	numbers *numbering.Generator,
	purchaseOrderRepo trade.PurchaseOrderRepository,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		scope:             scope,
		numbers:           numbers,
		purchaseOrderRepo: purchaseOrderRepo,
		logger:            logger,
	}
}

// CreatePurchaseOrder creates a purchase order in DRAFT status
func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*trade.PurchaseOrder, error) {
	var order *trade.PurchaseOrder

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		number, err := s.numbers.Next(ctx, repos.NumberingRepo(), numbering.DocTypePurchaseOrder)
		if err != nil {
			return err
		}

		po, err := trade.NewPurchaseOrder(number, req.SupplierID, req.WarehouseID, req.Notes)
		if err != nil {
			return err
		}
		for _, item := range req.Items {
			if err := po.AddItem(item.ProductID, item.Quantity, item.UnitPrice); err != nil {
				return err
			}
		}
		if err := repos.PurchaseOrderRepo().Create(ctx, po); err != nil {
			return err
		}

		order = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("supplier_id", order.SupplierID.String()),
	)

	return order, nil
}

// SubmitPurchaseOrder sends a draft order for approval
func (s *PurchaseOrderService) SubmitPurchaseOrder(ctx context.Context, orderID uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.mutate(ctx, orderID, func(po *trade.PurchaseOrder) error {
		return po.Submit()
	})
}

// ApprovePurchaseOrder approves a submitted order, making it receivable
func (s *PurchaseOrderService) ApprovePurchaseOrder(ctx context.Context, orderID, approverID uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.mutate(ctx, orderID, func(po *trade.PurchaseOrder) error {
		return po.Approve(approverID)
	})
}

// CancelPurchaseOrder cancels an order; illegal once receiving has started
func (s *PurchaseOrderService) CancelPurchaseOrder(ctx context.Context, orderID uuid.UUID, reason string) (*trade.PurchaseOrder, error) {
	return s.mutate(ctx, orderID, func(po *trade.PurchaseOrder) error {
		return po.Cancel(reason)
	})
}

// mutate loads an order, applies a status change and saves it in one transaction
func (s *PurchaseOrderService) mutate(ctx context.Context, orderID uuid.UUID, change func(*trade.PurchaseOrder) error) (*trade.PurchaseOrder, error) {
	var order *trade.PurchaseOrder

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		po, err := repos.PurchaseOrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := change(po); err != nil {
			return err
		}
		if err := repos.PurchaseOrderRepo().Save(ctx, po); err != nil {
			return err
		}

		order = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetPurchaseOrder returns one purchase order with its items
func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.purchaseOrderRepo.FindByID(ctx, id)
}

// ListPurchaseOrders lists purchase orders matching the filter
func (s *PurchaseOrderService) ListPurchaseOrders(ctx context.Context, filter shared.Filter) (shared.Paginated[trade.PurchaseOrder], error) {
	items, err := s.purchaseOrderRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[trade.PurchaseOrder]{}, err
	}
	total, err := s.purchaseOrderRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[trade.PurchaseOrder]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
