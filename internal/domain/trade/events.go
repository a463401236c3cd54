package trade

import (
	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Event types for the trade domain
const (
	EventTypeOrderCompleted          = "trade.order_completed"
	EventTypeOrderRestocked          = "trade.order_restocked"
	EventTypePurchaseReceiptCreated  = "trade.purchase_receipt_created"
	EventTypePurchaseReturnConfirmed = "trade.purchase_return_confirmed"
)

// OrderCompletedEvent is emitted when fulfillment deducts stock for an order
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ItemCount   int       `json:"item_count"`
}

// NewOrderCompletedEvent creates an order completed event
func NewOrderCompletedEvent(o *Order, warehouseID uuid.UUID) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, "Order", o.ID),
		OrderNumber:     o.OrderNumber,
		WarehouseID:     warehouseID,
		ItemCount:       len(o.Items),
	}
}

// OrderRestockedEvent is emitted when a completed order is cancelled or
// refunded and its stock is returned
type OrderRestockedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string      `json:"order_number"`
	WarehouseID uuid.UUID   `json:"warehouse_id"`
	NewStatus   OrderStatus `json:"new_status"`
}

// NewOrderRestockedEvent creates an order restocked event
func NewOrderRestockedEvent(o *Order, warehouseID uuid.UUID) *OrderRestockedEvent {
	return &OrderRestockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRestocked, "Order", o.ID),
		OrderNumber:     o.OrderNumber,
		WarehouseID:     warehouseID,
		NewStatus:       o.Status,
	}
}

// PurchaseReceiptCreatedEvent is emitted when a receipt books stock in
type PurchaseReceiptCreatedEvent struct {
	shared.BaseDomainEvent
	ReceiptNumber   string    `json:"receipt_number"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	TotalQuantity   int64     `json:"total_quantity"`
}

// NewPurchaseReceiptCreatedEvent creates a purchase receipt created event
func NewPurchaseReceiptCreatedEvent(r *PurchaseReceipt) *PurchaseReceiptCreatedEvent {
	return &PurchaseReceiptCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReceiptCreated, "PurchaseReceipt", r.ID),
		ReceiptNumber:   r.ReceiptNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		WarehouseID:     r.WarehouseID,
		TotalQuantity:   r.TotalQuantity(),
	}
}

// PurchaseReturnConfirmedEvent is emitted when a return deducts stock
type PurchaseReturnConfirmedEvent struct {
	shared.BaseDomainEvent
	ReturnNumber  string    `json:"return_number"`
	SupplierID    uuid.UUID `json:"supplier_id"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	TotalQuantity int64     `json:"total_quantity"`
}

// NewPurchaseReturnConfirmedEvent creates a purchase return confirmed event
func NewPurchaseReturnConfirmedEvent(pr *PurchaseReturn) *PurchaseReturnConfirmedEvent {
	return &PurchaseReturnConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReturnConfirmed, "PurchaseReturn", pr.ID),
		ReturnNumber:    pr.ReturnNumber,
		SupplierID:      pr.SupplierID,
		WarehouseID:     pr.WarehouseID,
		TotalQuantity:   pr.TotalQuantity(),
	}
}
