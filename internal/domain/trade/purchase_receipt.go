package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// PurchaseReceiptItem represents one received line, referencing the purchase
// order line it books against
type PurchaseReceiptItem struct {
	shared.BaseEntity
	ReceiptID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_purchase_receipt_item_receipt"`
	PurchaseOrderItemID uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity            int64           `gorm:"not null"` // Quantity actually booked after policy
	UnitCost            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes               string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (PurchaseReceiptItem) TableName() string {
	return "purchase_receipt_items"
}

// PurchaseReceipt records one receiving event against a purchase order.
// Receipts have no lifecycle: they are created complete, inside the same
// transaction that writes the inbound movements and updates the parent order.
type PurchaseReceipt struct {
	shared.BaseAggregateRoot
	ReceiptNumber   string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID  `gorm:"type:uuid;not null;index"`
	WarehouseID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ReceivedBy      *uuid.UUID `gorm:"type:uuid"`
	ReceivedAt      time.Time  `gorm:"type:timestamptz;not null"`
	Notes           string     `gorm:"type:varchar(255)"`
	Items           []PurchaseReceiptItem `gorm:"foreignKey:ReceiptID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseReceipt) TableName() string {
	return "purchase_receipts"
}

// NewPurchaseReceipt creates a receipt header
func NewPurchaseReceipt(receiptNumber string, purchaseOrderID, warehouseID uuid.UUID, receivedBy uuid.UUID, notes string) (*PurchaseReceipt, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Receipt number cannot be empty")
	}
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Purchase order ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Warehouse ID cannot be empty")
	}

	r := &PurchaseReceipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     receiptNumber,
		PurchaseOrderID:   purchaseOrderID,
		WarehouseID:       warehouseID,
		ReceivedAt:        time.Now(),
		Notes:             notes,
		Items:             make([]PurchaseReceiptItem, 0),
	}
	if receivedBy != uuid.Nil {
		r.ReceivedBy = &receivedBy
	}

	return r, nil
}

// AddItem records one received line
func (r *PurchaseReceipt) AddItem(poItemID, productID uuid.UUID, quantity int64, unitCost decimal.Decimal, notes string) error {
	if poItemID == uuid.Nil || productID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_FAILURE", "Receipt item references are required")
	}
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Received quantity must be positive")
	}

	r.Items = append(r.Items, PurchaseReceiptItem{
		BaseEntity:          shared.NewBaseEntity(),
		ReceiptID:           r.ID,
		PurchaseOrderItemID: poItemID,
		ProductID:           productID,
		Quantity:            quantity,
		UnitCost:            unitCost,
		Notes:               notes,
	})
	r.UpdatedAt = time.Now()

	return nil
}

// TotalQuantity returns the sum of received line quantities
func (r *PurchaseReceipt) TotalQuantity() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.Quantity
	}
	return total
}
