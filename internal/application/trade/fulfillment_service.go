package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	invapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// fulfillmentIdempotencyTTL is how long a processed fulfillment request is
// remembered for duplicate suppression
const fulfillmentIdempotencyTTL = 24 * time.Hour

// FulfillmentService couples sales order status changes with the ledger.
// Stock leaves on the first transition into COMPLETED and comes back when a
// completed order is cancelled or refunded; every other transition is a pure
// status change. The transition table forbids COMPLETED -> COMPLETED, so a
// replayed completion can never double-deduct.
type FulfillmentService struct {
	scope              invapp.TransactionScope
	ledger             *invapp.LedgerService
	orderRepo          trade.OrderRepository
	idempotency        shared.IdempotencyStore
	blockNegativeSales bool
	eventPublisher     shared.EventPublisher
	logger             *zap.Logger
}

// NewFulfillmentService creates a fulfillment service. idempotency may be nil
// to disable duplicate-request suppression; blockNegativeSales mirrors the
// inventory.block_negative_sales config flag.
func NewFulfillmentService(
	scope invapp.TransactionScope,
	ledger *invapp.LedgerService,
	orderRepo trade.OrderRepository,
	idempotency shared.IdempotencyStore,
	blockNegativeSales bool,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *FulfillmentService {
	return &FulfillmentService{
		scope:              scope,
		ledger:             ledger,
		orderRepo:          orderRepo,
		idempotency:        idempotency,
		blockNegativeSales: blockNegativeSales,
		eventPublisher:     eventPublisher,
		logger:             logger,
	}
}

// CompleteOrder deducts stock for every line item and marks the order
// COMPLETED. Sales may drive stock negative unless the process is configured
// to block that.
func (s *FulfillmentService) CompleteOrder(ctx context.Context, orderID, warehouseID, actorID uuid.UUID) (*trade.Order, error) {
	if done, err := s.alreadyProcessed(ctx, "order:complete:"+orderID.String()); err != nil {
		return nil, err
	} else if done {
		return s.orderRepo.FindByID(ctx, orderID)
	}

	var order *trade.Order

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := o.TransitionTo(trade.OrderStatusCompleted); err != nil {
			return err
		}

		for _, item := range o.Items {
			if _, err := s.ledger.Apply(ctx, repos, invapp.MovementRequest{
				ProductID:          item.ProductID,
				WarehouseID:        warehouseID,
				Kind:               inventory.MovementKindOut,
				Quantity:           -item.Quantity,
				ReferenceType:      numbering.DocTypeOrder,
				ReferenceNumber:    o.OrderNumber,
				ActorID:            actorID,
				RequireNonNegative: s.blockNegativeSales,
			}); err != nil {
				return err
			}
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

	s.markProcessed(ctx, "order:complete:"+orderID.String())
	s.publish(ctx, trade.NewOrderCompletedEvent(order, warehouseID))

	s.logger.Info("order completed, stock deducted",
		zap.String("order_number", order.OrderNumber),
		zap.String("warehouse_id", warehouseID.String()),
	)

	return order, nil
}

// CancelOrder cancels an order. When the order was completed its stock is
// restored first, in the same transaction as the status change.
func (s *FulfillmentService) CancelOrder(ctx context.Context, orderID, warehouseID, actorID uuid.UUID) (*trade.Order, error) {
	return s.reverse(ctx, orderID, warehouseID, actorID, trade.OrderStatusCancelled)
}

// RefundOrder refunds a completed order, restoring its stock
func (s *FulfillmentService) RefundOrder(ctx context.Context, orderID, warehouseID, actorID uuid.UUID) (*trade.Order, error) {
	return s.reverse(ctx, orderID, warehouseID, actorID, trade.OrderStatusRefunded)
}

// reverse moves an order to a terminal status, restocking when the order had
// already deducted stock
func (s *FulfillmentService) reverse(ctx context.Context, orderID, warehouseID, actorID uuid.UUID, target trade.OrderStatus) (*trade.Order, error) {
	var order *trade.Order

	err := s.scope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		wasCompleted := o.IsCompleted()

		if err := o.TransitionTo(target); err != nil {
			return err
		}

		if wasCompleted {
			for _, item := range o.Items {
				if _, err := s.ledger.Apply(ctx, repos, invapp.MovementRequest{
					ProductID:       item.ProductID,
					WarehouseID:     warehouseID,
					Kind:            inventory.MovementKindIn,
					Quantity:        item.Quantity,
					ReferenceType:   numbering.DocTypeOrder,
					ReferenceNumber: o.OrderNumber,
					ActorID:         actorID,
				}); err != nil {
					return err
				}
			}
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

	if order.Status == target && order.CompletedAt != nil {
		s.publish(ctx, trade.NewOrderRestockedEvent(order, warehouseID))
	}

	s.logger.Info("order reversed",
		zap.String("order_number", order.OrderNumber),
		zap.String("new_status", order.Status.String()),
	)

	return order, nil
}

// alreadyProcessed reports whether a fulfillment key was handled before
func (s *FulfillmentService) alreadyProcessed(ctx context.Context, key string) (bool, error) {
	if s.idempotency == nil {
		return false, nil
	}
	return s.idempotency.IsProcessed(ctx, key)
}

// markProcessed remembers a fulfillment key after the transaction committed
func (s *FulfillmentService) markProcessed(ctx context.Context, key string) {
	if s.idempotency == nil {
		return
	}
	if _, err := s.idempotency.MarkProcessed(ctx, key, fulfillmentIdempotencyTTL); err != nil {
		s.logger.Warn("failed to record fulfillment idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *FulfillmentService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish fulfillment event", zap.Error(err))
	}
}
