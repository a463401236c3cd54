package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft           PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusPendingApproval PurchaseOrderStatus = "PENDING_APPROVAL"
	PurchaseOrderStatusApproved        PurchaseOrderStatus = "APPROVED"
	PurchaseOrderStatusPartialReceived PurchaseOrderStatus = "PARTIAL_RECEIVED"
	PurchaseOrderStatusCompleted       PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled       PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusPendingApproval, PurchaseOrderStatusApproved,
		PurchaseOrderStatusPartialReceived, PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// PARTIAL_RECEIVED and COMPLETED are reached through receiving, not through
// explicit transitions.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusPendingApproval || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPendingApproval:
		return target == PurchaseOrderStatusApproved || target == PurchaseOrderStatusDraft || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusApproved:
		return target == PurchaseOrderStatusPartialReceived || target == PurchaseOrderStatusCompleted || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartialReceived:
		return target == PurchaseOrderStatusCompleted
	case PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceive returns true if receipts may be booked against this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusApproved || s == PurchaseOrderStatusPartialReceived
}

// OverReceiptPolicy decides what happens when a receipt would push a line
// past its ordered quantity
type OverReceiptPolicy string

const (
	// OverReceiptReject fails the whole receipt
	OverReceiptReject OverReceiptPolicy = "reject"
	// OverReceiptClamp books only the remaining open quantity
	OverReceiptClamp OverReceiptPolicy = "clamp"
)

// IsValid checks if the policy is a valid OverReceiptPolicy
func (p OverReceiptPolicy) IsValid() bool {
	return p == OverReceiptReject || p == OverReceiptClamp
}

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	shared.BaseEntity
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_purchase_order_item_po"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	OrderedQuantity  int64           `gorm:"not null"`
	ReceivedQuantity int64           `gorm:"not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Agreed purchase price
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// RemainingQuantity returns the open quantity still to be received
func (i *PurchaseOrderItem) RemainingQuantity() int64 {
	return i.OrderedQuantity - i.ReceivedQuantity
}

// IsFullyReceived returns true once the received quantity covers the order
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.ReceivedQuantity >= i.OrderedQuantity
}

// AddReceivedQuantity books a received quantity onto the line, applying the
// over-receipt policy. Returns the quantity actually booked.
func (i *PurchaseOrderItem) AddReceivedQuantity(quantity int64, policy OverReceiptPolicy) (int64, error) {
	if quantity <= 0 {
		return 0, shared.NewDomainError("VALIDATION_FAILURE", "Received quantity must be positive")
	}

	if i.ReceivedQuantity+quantity > i.OrderedQuantity {
		switch policy {
		case OverReceiptClamp:
			quantity = i.RemainingQuantity()
			if quantity <= 0 {
				return 0, shared.NewDomainError("VALIDATION_FAILURE", "Purchase order line is already fully received")
			}
		default:
			return 0, shared.NewDomainError("VALIDATION_FAILURE",
				fmt.Sprintf("Received quantity exceeds ordered quantity (%d/%d)", i.ReceivedQuantity+quantity, i.OrderedQuantity))
		}
	}

	i.ReceivedQuantity += quantity
	i.UpdatedAt = time.Now()

	return quantity, nil
}

// PurchaseOrder represents an order placed with a supplier. Receiving is
// booked through purchase receipts which propagate received quantities back
// onto the order lines.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID           `gorm:"type:uuid;not null;index"` // Default receiving warehouse
	Status      PurchaseOrderStatus `gorm:"type:varchar(20);not null"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Notes       string              `gorm:"type:varchar(255)"`
	ApprovedBy  *uuid.UUID          `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	Items       []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a purchase order in DRAFT status
func NewPurchaseOrder(orderNumber string, supplierID, warehouseID uuid.UUID, notes string) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Supplier ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Warehouse ID cannot be empty")
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		WarehouseID:       warehouseID,
		Status:            PurchaseOrderStatusDraft,
		TotalAmount:       decimal.Zero,
		Notes:             notes,
		Items:             make([]PurchaseOrderItem, 0),
	}, nil
}

// AddItem adds a line item; only legal in DRAFT status
func (po *PurchaseOrder) AddItem(productID uuid.UUID, orderedQuantity int64, unitPrice decimal.Decimal) error {
	if po.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Can only add items in DRAFT status")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_FAILURE", "Product ID cannot be empty")
	}
	if orderedQuantity <= 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Ordered quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("VALIDATION_FAILURE", "Unit price cannot be negative")
	}
	for _, item := range po.Items {
		if item.ProductID == productID {
			return shared.NewDomainError("VALIDATION_FAILURE", "Product already exists in purchase order")
		}
	}

	po.Items = append(po.Items, PurchaseOrderItem{
		BaseEntity:      shared.NewBaseEntity(),
		PurchaseOrderID: po.ID,
		ProductID:       productID,
		OrderedQuantity: orderedQuantity,
		UnitPrice:       unitPrice,
	})
	po.recalculateTotal()
	po.UpdatedAt = time.Now()
	po.IncrementVersion()

	return nil
}

// recalculateTotal recomputes the order total from line items
func (po *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range po.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.OrderedQuantity)))
	}
	po.TotalAmount = total
}

// Submit sends the order for approval
func (po *PurchaseOrder) Submit() error {
	if !po.Status.CanTransitionTo(PurchaseOrderStatusPendingApproval) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot submit purchase order from %s", po.Status))
	}
	if len(po.Items) == 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Cannot submit a purchase order with no items")
	}

	po.Status = PurchaseOrderStatusPendingApproval
	po.UpdatedAt = time.Now()
	po.IncrementVersion()

	return nil
}

// Approve approves the order, making it receivable
func (po *PurchaseOrder) Approve(approverID uuid.UUID) error {
	if !po.Status.CanTransitionTo(PurchaseOrderStatusApproved) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot approve purchase order from %s", po.Status))
	}

	now := time.Now()
	po.Status = PurchaseOrderStatusApproved
	if approverID != uuid.Nil {
		po.ApprovedBy = &approverID
	}
	po.ApprovedAt = &now
	po.UpdatedAt = now
	po.IncrementVersion()

	return nil
}

// Cancel cancels the order; illegal once receiving has started
func (po *PurchaseOrder) Cancel(reason string) error {
	if !po.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot cancel purchase order from %s", po.Status))
	}

	po.Status = PurchaseOrderStatusCancelled
	if reason != "" {
		po.Notes = reason
	}
	po.UpdatedAt = time.Now()
	po.IncrementVersion()

	return nil
}

// FindItem returns the line item for a product, or nil
func (po *PurchaseOrder) FindItem(productID uuid.UUID) *PurchaseOrderItem {
	for i := range po.Items {
		if po.Items[i].ProductID == productID {
			return &po.Items[i]
		}
	}
	return nil
}

// RecalculateReceivingStatus derives the receiving status from line progress:
// COMPLETED when every line is fully received, PARTIAL_RECEIVED when anything
// arrived, otherwise the status is left unchanged.
func (po *PurchaseOrder) RecalculateReceivingStatus() {
	allReceived := len(po.Items) > 0
	anyReceived := false
	for _, item := range po.Items {
		if !item.IsFullyReceived() {
			allReceived = false
		}
		if item.ReceivedQuantity > 0 {
			anyReceived = true
		}
	}

	switch {
	case allReceived:
		po.Status = PurchaseOrderStatusCompleted
	case anyReceived:
		po.Status = PurchaseOrderStatusPartialReceived
	}
	po.UpdatedAt = time.Now()
}

// IsFullyReceived returns true if every line is fully received
func (po *PurchaseOrder) IsFullyReceived() bool {
	for _, item := range po.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return len(po.Items) > 0
}
