package inventory

import (
	"time"

	"github.com/google/uuid"
)

// AdjustmentItemRequest supplies the target quantity for one product
type AdjustmentItemRequest struct {
	ProductID     uuid.UUID `json:"product_id" binding:"required"`
	AfterQuantity int64     `json:"after_quantity"`
	Notes         string    `json:"notes"`
}

// CreateAdjustmentRequest re-bases balances in one warehouse
type CreateAdjustmentRequest struct {
	WarehouseID uuid.UUID               `json:"warehouse_id" binding:"required"`
	Reason      string                  `json:"reason" binding:"required"`
	Items       []AdjustmentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateCountRequest opens a stock count for a warehouse
type CreateCountRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id" binding:"required"`
	Notes       string    `json:"notes"`
}

// RecordCountRequest records the physical count for one count item
type RecordCountRequest struct {
	ActualQuantity int64  `json:"actual_quantity" binding:"min=0"`
	Reason         string `json:"reason"`
}

// TransferItemRequest is one line of a transfer
type TransferItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
	Notes     string    `json:"notes"`
}

// CreateTransferRequest opens a transfer between two warehouses
type CreateTransferRequest struct {
	SourceID      uuid.UUID             `json:"source_id" binding:"required"`
	DestinationID uuid.UUID             `json:"destination_id" binding:"required"`
	Notes         string                `json:"notes"`
	Items         []TransferItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SearchMovementsRequest filters the movement ledger
type SearchMovementsRequest struct {
	ProductID   *uuid.UUID `form:"product_id"`
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	Kind        string     `form:"kind"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Page        int        `form:"page,default=1" binding:"min=0"`
	PageSize    int        `form:"page_size,default=20" binding:"min=0,max=200"`
}

// UpdateSafetyStockRequest sets the low-stock threshold on a balance
type UpdateSafetyStockRequest struct {
	SafetyStock int64 `json:"safety_stock" binding:"min=0"`
}

// ReservationRequest reserves or releases stock for a pending order
type ReservationRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" binding:"required"`
	Quantity    int64     `json:"quantity" binding:"required,min=1"`
}
