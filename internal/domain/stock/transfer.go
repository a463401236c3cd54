package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// TransferStatus represents the status of a stock transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusShipped   TransferStatus = "SHIPPED"
	TransferStatusReceived  TransferStatus = "RECEIVED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TransferStatus
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusShipped, TransferStatusReceived, TransferStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return target == TransferStatusShipped || target == TransferStatusCancelled
	case TransferStatusShipped:
		return target == TransferStatusReceived
	case TransferStatusReceived, TransferStatusCancelled:
		return false // Terminal states
	}
	return false
}

// TransferItem represents a line item in a stock transfer
type TransferItem struct {
	shared.BaseEntity
	TransferID uuid.UUID `gorm:"type:uuid;not null;index:idx_stock_transfer_item_transfer"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null"`
	Quantity   int64     `gorm:"not null"` // Always positive
	Notes      string    `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (TransferItem) TableName() string {
	return "stock_transfer_items"
}

// StockTransfer moves stock between two warehouses in two phases: shipping
// deducts the source, receiving credits the destination. The two phases run
// in separate transactions; in-transit stock belongs to neither balance.
type StockTransfer struct {
	shared.BaseAggregateRoot
	TransferNumber string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	SourceID       uuid.UUID      `gorm:"type:uuid;not null;index"` // Source warehouse
	DestinationID  uuid.UUID      `gorm:"type:uuid;not null;index"` // Destination warehouse
	Status         TransferStatus `gorm:"type:varchar(20);not null"`
	Notes          string         `gorm:"type:varchar(255)"`
	CreatedBy      *uuid.UUID     `gorm:"type:uuid"`
	ShippedBy      *uuid.UUID     `gorm:"type:uuid"`
	ShippedAt      *time.Time
	ReceivedBy     *uuid.UUID `gorm:"type:uuid"`
	ReceivedAt     *time.Time
	Items          []TransferItem `gorm:"foreignKey:TransferID;references:ID"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewStockTransfer creates a transfer in PENDING status
func NewStockTransfer(transferNumber string, sourceID, destinationID uuid.UUID, notes string, createdBy uuid.UUID) (*StockTransfer, error) {
	if transferNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Transfer number cannot be empty")
	}
	if sourceID == uuid.Nil || destinationID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Source and destination warehouses are required")
	}
	if sourceID == destinationID {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Source and destination warehouses must differ")
	}

	t := &StockTransfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransferNumber:    transferNumber,
		SourceID:          sourceID,
		DestinationID:     destinationID,
		Status:            TransferStatusPending,
		Notes:             notes,
		Items:             make([]TransferItem, 0),
	}
	if createdBy != uuid.Nil {
		t.CreatedBy = &createdBy
	}

	return t, nil
}

// AddItem adds a line item; only legal in PENDING status
func (t *StockTransfer) AddItem(productID uuid.UUID, quantity int64, notes string) error {
	if t.Status != TransferStatusPending {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Can only add items in PENDING status")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_FAILURE", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Transfer quantity must be positive")
	}
	for _, item := range t.Items {
		if item.ProductID == productID {
			return shared.NewDomainError("VALIDATION_FAILURE", "Product already exists in transfer")
		}
	}

	t.Items = append(t.Items, TransferItem{
		BaseEntity: shared.NewBaseEntity(),
		TransferID: t.ID,
		ProductID:  productID,
		Quantity:   quantity,
		Notes:      notes,
	})
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// MarkShipped records the shipping phase; the caller has already deducted
// source balances in the same transaction
func (t *StockTransfer) MarkShipped(actorID uuid.UUID) error {
	if !t.Status.CanTransitionTo(TransferStatusShipped) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot transition from %s to SHIPPED", t.Status))
	}
	if len(t.Items) == 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Cannot ship a transfer with no items")
	}

	now := time.Now()
	t.Status = TransferStatusShipped
	t.ShippedAt = &now
	if actorID != uuid.Nil {
		t.ShippedBy = &actorID
	}
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferShippedEvent(t))

	return nil
}

// MarkReceived records the receiving phase; the caller has already credited
// destination balances in the same transaction
func (t *StockTransfer) MarkReceived(actorID uuid.UUID) error {
	if !t.Status.CanTransitionTo(TransferStatusReceived) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot transition from %s to RECEIVED", t.Status))
	}

	now := time.Now()
	t.Status = TransferStatusReceived
	t.ReceivedAt = &now
	if actorID != uuid.Nil {
		t.ReceivedBy = &actorID
	}
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferReceivedEvent(t))

	return nil
}

// Cancel cancels the transfer; only legal before shipping, so no
// compensating movements are ever needed
func (t *StockTransfer) Cancel(reason string) error {
	if !t.Status.CanTransitionTo(TransferStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot transition from %s to CANCELLED", t.Status))
	}

	t.Status = TransferStatusCancelled
	if reason != "" {
		t.Notes = reason
	}
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// TotalQuantity returns the sum of line item quantities
func (t *StockTransfer) TotalQuantity() int64 {
	var total int64
	for _, item := range t.Items {
		total += item.Quantity
	}
	return total
}
