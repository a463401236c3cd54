package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one line of a sales order with price snapshots
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreateOrderRequest creates a sales order in PENDING status
type CreateOrderRequest struct {
	CustomerID *uuid.UUID         `json:"customer_id"`
	Notes      string             `json:"notes"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PurchaseOrderItemRequest is one line of a purchase order
type PurchaseOrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest creates a purchase order in DRAFT status
type CreatePurchaseOrderRequest struct {
	SupplierID  uuid.UUID                  `json:"supplier_id" binding:"required"`
	WarehouseID uuid.UUID                  `json:"warehouse_id" binding:"required"`
	Notes       string                     `json:"notes"`
	Items       []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReceiptItemRequest books a received quantity against a purchase order line
type ReceiptItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
	Notes     string    `json:"notes"`
}

// CreateReceiptRequest records one receiving event against a purchase order.
// WarehouseID defaults to the order's receiving warehouse when omitted.
type CreateReceiptRequest struct {
	PurchaseOrderID uuid.UUID            `json:"purchase_order_id" binding:"required"`
	WarehouseID     *uuid.UUID           `json:"warehouse_id"`
	Notes           string               `json:"notes"`
	Items           []ReceiptItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReturnItemRequest is one line of a purchase return
type ReturnItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes"`
}

// CreateReturnRequest creates a purchase return in PENDING status
type CreateReturnRequest struct {
	SupplierID  uuid.UUID           `json:"supplier_id" binding:"required"`
	WarehouseID uuid.UUID           `json:"warehouse_id" binding:"required"`
	Reason      string              `json:"reason" binding:"required"`
	Items       []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}
