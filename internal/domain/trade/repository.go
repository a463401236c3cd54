package trade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// OrderRepository defines the interface for sales order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
	// Save persists the order header and its items
	Save(ctx context.Context, order *Order) error
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)
	// Save persists the order header and its items
	Save(ctx context.Context, order *PurchaseOrder) error
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ReceiptDayStats summarizes receiving activity for one day
type ReceiptDayStats struct {
	ReceiptCount  int64
	TotalQuantity int64
}

// ReceiptRepository defines the interface for purchase receipt persistence
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *PurchaseReceipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseReceipt, error)
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]PurchaseReceipt, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseReceipt, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// StatsForDay returns receipt count and total received quantity for the
	// day containing the given time
	StatsForDay(ctx context.Context, day time.Time) (*ReceiptDayStats, error)
}

// ReturnRepository defines the interface for purchase return persistence
type ReturnRepository interface {
	Create(ctx context.Context, ret *PurchaseReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseReturn, error)
	// Save persists the return header and its items
	Save(ctx context.Context, ret *PurchaseReturn) error
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseReturn, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
