package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// MovementKind classifies a stock movement
type MovementKind string

const (
	// MovementKindIn represents stock entering a warehouse (receiving, order restock)
	MovementKindIn MovementKind = "IN"
	// MovementKindOut represents stock leaving a warehouse (fulfillment, purchase return)
	MovementKindOut MovementKind = "OUT"
	// MovementKindTransferIn represents stock arriving from another warehouse
	MovementKindTransferIn MovementKind = "TRANSFER_IN"
	// MovementKindTransferOut represents stock departing to another warehouse
	MovementKindTransferOut MovementKind = "TRANSFER_OUT"
	// MovementKindAdjustment represents a re-base from an adjustment or a count
	MovementKindAdjustment MovementKind = "ADJUSTMENT"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid returns true if the movement kind is valid
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindIn, MovementKindOut, MovementKindTransferIn, MovementKindTransferOut, MovementKindAdjustment:
		return true
	}
	return false
}

// Movement is an immutable ledger entry recording a single balance change.
// Once created a movement is never modified; corrections are made with new
// compensating movements. The invariant AfterQuantity = BeforeQuantity + Quantity
// is enforced at construction.
type Movement struct {
	shared.BaseEntity
	BalanceID       uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_movement_balance"`
	ProductID       uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_movement_product"`
	WarehouseID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_movement_warehouse"`
	Kind            MovementKind `gorm:"type:varchar(20);not null;index:idx_stock_movement_kind"`
	Quantity        int64        `gorm:"not null"` // Signed delta applied to the balance
	BeforeQuantity  int64        `gorm:"not null"`
	AfterQuantity   int64        `gorm:"not null"`
	ReferenceType   string       `gorm:"type:varchar(30);not null;index:idx_stock_movement_reference,priority:1"` // Originating document type
	ReferenceNumber string       `gorm:"type:varchar(50);not null;index:idx_stock_movement_reference,priority:2"` // Originating document number
	Notes           string       `gorm:"type:varchar(255)"`
	ActorID         *uuid.UUID   `gorm:"type:uuid"` // User who triggered the movement
	OccurredAt      time.Time    `gorm:"type:timestamptz;not null;index:idx_stock_movement_occurred"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a movement recording a balance change. The quantity is a
// signed delta; before and after are the balance snapshots around the change.
func NewMovement(
	balanceID uuid.UUID,
	productID uuid.UUID,
	warehouseID uuid.UUID,
	kind MovementKind,
	quantity int64,
	beforeQuantity int64,
	afterQuantity int64,
	referenceType string,
	referenceNumber string,
) (*Movement, error) {
	if balanceID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Balance ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Warehouse ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Invalid movement kind")
	}
	if referenceType == "" || referenceNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Movement reference is required")
	}
	if afterQuantity != beforeQuantity+quantity {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Movement quantities do not balance")
	}

	return &Movement{
		BaseEntity:      shared.NewBaseEntity(),
		BalanceID:       balanceID,
		ProductID:       productID,
		WarehouseID:     warehouseID,
		Kind:            kind,
		Quantity:        quantity,
		BeforeQuantity:  beforeQuantity,
		AfterQuantity:   afterQuantity,
		ReferenceType:   referenceType,
		ReferenceNumber: referenceNumber,
		OccurredAt:      time.Now(),
	}, nil
}

// WithNotes sets the free-form notes for the movement
func (m *Movement) WithNotes(notes string) *Movement {
	m.Notes = notes
	return m
}

// WithActorID sets the user who triggered the movement
func (m *Movement) WithActorID(actorID uuid.UUID) *Movement {
	m.ActorID = &actorID
	return m
}

// WithOccurredAt overrides the movement timestamp
func (m *Movement) WithOccurredAt(t time.Time) *Movement {
	m.OccurredAt = t
	return m
}

// IsInbound returns true if the movement increased the balance
func (m *Movement) IsInbound() bool {
	return m.Quantity > 0
}

// IsOutbound returns true if the movement decreased the balance
func (m *Movement) IsOutbound() bool {
	return m.Quantity < 0
}
