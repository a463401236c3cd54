package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// COMPLETED -> COMPLETED is rejected so fulfillment can never double-deduct.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusCompleted:
		return target == OrderStatusCancelled || target == OrderStatusRefunded
	case OrderStatusCancelled, OrderStatusRefunded:
		return false // Terminal states
	}
	return false
}

// OrderItem represents a line item in a sales order
type OrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_order_item_order"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Selling price snapshot at order time
	UnitCost  decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Cost snapshot at order time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal returns quantity times unit price
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Order represents a sales order. Fulfillment deducts stock on the first
// transition into COMPLETED and restores it when a completed order is
// cancelled or refunded.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null"`
	CustomerID  *uuid.UUID      `gorm:"type:uuid;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes       string          `gorm:"type:varchar(255)"`
	CompletedAt *time.Time
	Items       []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an order in PENDING status
func NewOrder(orderNumber string, customerID *uuid.UUID, notes string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Order number cannot be empty")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Status:            OrderStatusPending,
		CustomerID:        customerID,
		TotalAmount:       decimal.Zero,
		Notes:             notes,
		Items:             make([]OrderItem, 0),
	}, nil
}

// AddItem adds a line item with price and cost snapshots; only legal in PENDING status
func (o *Order) AddItem(productID uuid.UUID, quantity int64, unitPrice, unitCost decimal.Decimal) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Can only add items in PENDING status")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_FAILURE", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Order quantity must be positive")
	}
	if unitPrice.IsNegative() || unitCost.IsNegative() {
		return shared.NewDomainError("VALIDATION_FAILURE", "Prices cannot be negative")
	}

	o.Items = append(o.Items, OrderItem{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		UnitCost:   unitCost,
	})
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// recalculateTotal recomputes the order total from line items
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.TotalAmount = total
}

// TransitionTo moves the order to the target status if the transition is legal
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("VALIDATION_FAILURE", "Invalid order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}

	now := time.Now()
	o.Status = target
	if target == OrderStatusCompleted {
		o.CompletedAt = &now
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// IsCompleted returns true if the order is in COMPLETED status
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}
