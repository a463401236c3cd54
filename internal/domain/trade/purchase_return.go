package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// PurchaseReturnStatus represents the status of a purchase return
type PurchaseReturnStatus string

const (
	PurchaseReturnStatusPending   PurchaseReturnStatus = "PENDING"   // Created, stock not yet deducted
	PurchaseReturnStatusConfirmed PurchaseReturnStatus = "CONFIRMED" // Stock deducted, awaiting supplier settlement
	PurchaseReturnStatusReturned  PurchaseReturnStatus = "RETURNED"  // Supplier confirmed the return
	PurchaseReturnStatusCancelled PurchaseReturnStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseReturnStatus
func (s PurchaseReturnStatus) IsValid() bool {
	switch s {
	case PurchaseReturnStatusPending, PurchaseReturnStatusConfirmed,
		PurchaseReturnStatusReturned, PurchaseReturnStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseReturnStatus
func (s PurchaseReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseReturnStatus) CanTransitionTo(target PurchaseReturnStatus) bool {
	switch s {
	case PurchaseReturnStatusPending:
		return target == PurchaseReturnStatusConfirmed || target == PurchaseReturnStatusCancelled
	case PurchaseReturnStatusConfirmed:
		return target == PurchaseReturnStatusReturned || target == PurchaseReturnStatusCancelled
	case PurchaseReturnStatusReturned, PurchaseReturnStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PurchaseReturnItem represents a line item in a purchase return
type PurchaseReturnItem struct {
	shared.BaseEntity
	ReturnID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_purchase_return_item_return"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int64           `gorm:"not null"` // Always positive
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes     string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (PurchaseReturnItem) TableName() string {
	return "purchase_return_items"
}

// PurchaseReturn sends goods back to a supplier. Stock leaves the warehouse
// when the return is confirmed; cancelling a confirmed return puts it back.
type PurchaseReturn struct {
	shared.BaseAggregateRoot
	ReturnNumber string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	WarehouseID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status       PurchaseReturnStatus `gorm:"type:varchar(20);not null"`
	Reason       string               `gorm:"type:varchar(255)"`
	ConfirmedBy  *uuid.UUID           `gorm:"type:uuid"`
	ConfirmedAt  *time.Time
	CompletedAt  *time.Time
	Items        []PurchaseReturnItem `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseReturn) TableName() string {
	return "purchase_returns"
}

// NewPurchaseReturn creates a purchase return in PENDING status
func NewPurchaseReturn(returnNumber string, supplierID, warehouseID uuid.UUID, reason string) (*PurchaseReturn, error) {
	if returnNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Return number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Supplier ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Warehouse ID cannot be empty")
	}

	return &PurchaseReturn{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReturnNumber:      returnNumber,
		SupplierID:        supplierID,
		WarehouseID:       warehouseID,
		Status:            PurchaseReturnStatusPending,
		Reason:            reason,
		Items:             make([]PurchaseReturnItem, 0),
	}, nil
}

// AddItem adds a line item; only legal in PENDING status
func (pr *PurchaseReturn) AddItem(productID uuid.UUID, quantity int64, unitPrice decimal.Decimal, notes string) error {
	if pr.Status != PurchaseReturnStatusPending {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Can only add items in PENDING status")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_FAILURE", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Return quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("VALIDATION_FAILURE", "Unit price cannot be negative")
	}
	for _, item := range pr.Items {
		if item.ProductID == productID {
			return shared.NewDomainError("VALIDATION_FAILURE", "Product already exists in purchase return")
		}
	}

	pr.Items = append(pr.Items, PurchaseReturnItem{
		BaseEntity: shared.NewBaseEntity(),
		ReturnID:   pr.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Notes:      notes,
	})
	pr.UpdatedAt = time.Now()
	pr.IncrementVersion()

	return nil
}

// MarkConfirmed records confirmation; the caller has already deducted stock
// in the same transaction
func (pr *PurchaseReturn) MarkConfirmed(actorID uuid.UUID) error {
	if !pr.Status.CanTransitionTo(PurchaseReturnStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot confirm purchase return from %s", pr.Status))
	}
	if len(pr.Items) == 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Cannot confirm a purchase return with no items")
	}

	now := time.Now()
	pr.Status = PurchaseReturnStatusConfirmed
	if actorID != uuid.Nil {
		pr.ConfirmedBy = &actorID
	}
	pr.ConfirmedAt = &now
	pr.UpdatedAt = now
	pr.IncrementVersion()

	return nil
}

// MarkReturned completes the return; pure status change, stock already left
// at confirmation
func (pr *PurchaseReturn) MarkReturned() error {
	if !pr.Status.CanTransitionTo(PurchaseReturnStatusReturned) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot complete purchase return from %s", pr.Status))
	}

	now := time.Now()
	pr.Status = PurchaseReturnStatusReturned
	pr.CompletedAt = &now
	pr.UpdatedAt = now
	pr.IncrementVersion()

	return nil
}

// MarkCancelled cancels the return. When cancelling from CONFIRMED the caller
// has already applied compensating inbound movements in the same transaction.
func (pr *PurchaseReturn) MarkCancelled(reason string) error {
	if !pr.Status.CanTransitionTo(PurchaseReturnStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot cancel purchase return from %s", pr.Status))
	}

	pr.Status = PurchaseReturnStatusCancelled
	if reason != "" {
		pr.Reason = reason
	}
	pr.UpdatedAt = time.Now()
	pr.IncrementVersion()

	return nil
}

// TotalQuantity returns the sum of line item quantities
func (pr *PurchaseReturn) TotalQuantity() int64 {
	var total int64
	for _, item := range pr.Items {
		total += item.Quantity
	}
	return total
}
