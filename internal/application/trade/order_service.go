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

// OrderService manages the stock-neutral part of the sales order lifecycle:
// creation and confirmation. Completion, cancellation and refund go through
// the FulfillmentService because they touch the ledger.
type OrderService struct {
	scope     invapp.TransactionScope
	numbers   *numbering.Generator
	orderRepo trade.OrderRepository
	logger    *zap.Logger
}

// NewOrderService creates an order service
func NewOrderService(
	scope invapp.TransactionScope,
	numbers *numbering.Generator,
	orderRepo trade.OrderRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		scope:     scope,
		numbers:   numbers,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// CreateOrder creates a sales order in PENDING status with price and cost
// snapshots frozen at order time
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*trade.Order, error) {
	var order *trade.Order

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		number, err := s.numbers.Next(ctx, repos.NumberingRepo(), numbering.DocTypeOrder)
		if err != nil {
			return err
		}

		o, err := trade.NewOrder(number, req.CustomerID, req.Notes)
		if err != nil {
			return err
		}
		for _, item := range req.Items {
			if err := o.AddItem(item.ProductID, item.Quantity, item.UnitPrice, item.UnitCost); err != nil {
				return err
			}
		}
		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Int("item_count", len(order.Items)),
	)

	return order, nil
}

// ConfirmOrder moves a pending order to CONFIRMED; pure status change
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*trade.Order, error) {
	var order *trade.Order

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := o.TransitionTo(trade.OrderStatusConfirmed); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrder returns one order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// GetOrderByNumber returns one order by its document number
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	return s.orderRepo.FindByNumber(ctx, orderNumber)
}

// ListOrders lists orders matching the filter
func (s *OrderService) ListOrders(ctx context.Context, filter shared.Filter) (shared.Paginated[trade.Order], error) {
	items, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[trade.Order]{}, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[trade.Order]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
