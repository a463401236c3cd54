package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// StockAdjustmentItem represents one re-based product in an adjustment
type StockAdjustmentItem struct {
	shared.BaseEntity
	AdjustmentID   uuid.UUID `gorm:"type:uuid;not null;index:idx_stock_adjustment_item_adjustment"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null"`
	BeforeQuantity int64     `gorm:"not null"` // Balance quantity at apply time
	AfterQuantity  int64     `gorm:"not null"` // Target quantity supplied by the operator
	Notes          string    `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (StockAdjustmentItem) TableName() string {
	return "stock_adjustment_items"
}

// Difference returns the signed delta the adjustment applied
func (i *StockAdjustmentItem) Difference() int64 {
	return i.AfterQuantity - i.BeforeQuantity
}

// StockAdjustment re-bases balances to operator-supplied quantities.
// It is applied immediately on creation; there is no draft lifecycle.
type StockAdjustment struct {
	shared.BaseAggregateRoot
	AdjustmentNumber string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	WarehouseID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Reason           string     `gorm:"type:varchar(255);not null"`
	ActorID          *uuid.UUID `gorm:"type:uuid"`
	Items            []StockAdjustmentItem `gorm:"foreignKey:AdjustmentID;references:ID"`
}

// TableName returns the table name for GORM
func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}

// NewStockAdjustment creates an adjustment document
func NewStockAdjustment(adjustmentNumber string, warehouseID uuid.UUID, reason string, actorID uuid.UUID) (*StockAdjustment, error) {
	if adjustmentNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Adjustment number cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Warehouse ID cannot be empty")
	}
	if reason == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Adjustment reason is required")
	}

	adj := &StockAdjustment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AdjustmentNumber:  adjustmentNumber,
		WarehouseID:       warehouseID,
		Reason:            reason,
		Items:             make([]StockAdjustmentItem, 0),
	}
	if actorID != uuid.Nil {
		adj.ActorID = &actorID
	}

	return adj, nil
}

// AddItem records a target quantity for one product. BeforeQuantity is filled
// in from the balance when the adjustment is applied.
func (a *StockAdjustment) AddItem(productID uuid.UUID, afterQuantity int64, notes string) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_FAILURE", "Product ID cannot be empty")
	}
	for _, item := range a.Items {
		if item.ProductID == productID {
			return shared.NewDomainError("VALIDATION_FAILURE", "Product already exists in adjustment")
		}
	}

	a.Items = append(a.Items, StockAdjustmentItem{
		BaseEntity:    shared.NewBaseEntity(),
		AdjustmentID:  a.ID,
		ProductID:     productID,
		AfterQuantity: afterQuantity,
		Notes:         notes,
	})
	a.UpdatedAt = time.Now()

	return nil
}
