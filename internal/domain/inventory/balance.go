package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Balance represents the current stock level of a product at a warehouse.
// It is the aggregate root of the ledger: every change to Quantity must be
// accompanied by an immutable Movement row written in the same transaction.
// The composite identifier is ProductID + WarehouseID.
type Balance struct {
	shared.BaseAggregateRoot
	ProductID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_product_warehouse,priority:1"`
	WarehouseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_product_warehouse,priority:2"`
	Quantity         int64     `gorm:"not null;default:0"` // On-hand quantity, may be negative depending on policy
	ReservedQuantity int64     `gorm:"not null;default:0"` // Earmarked for pending orders
	SafetyStock      int64     `gorm:"not null;default:0"` // Low-stock alert threshold, 0 disables alerts
}

// TableName returns the table name for GORM
func (Balance) TableName() string {
	return "stock_balances"
}

// NewBalance creates a zero-quantity balance for a product-warehouse combination
func NewBalance(productID, warehouseID uuid.UUID) (*Balance, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Warehouse ID cannot be empty")
	}

	return &Balance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
	}, nil
}

// AvailableQuantity returns on-hand quantity minus reservations
func (b *Balance) AvailableQuantity() int64 {
	return b.Quantity - b.ReservedQuantity
}

// ApplyDelta shifts the on-hand quantity by a signed delta and returns the
// before/after snapshot pair the accompanying movement must record.
// No sufficiency check happens here; callers decide whether negative stock
// is acceptable before applying.
func (b *Balance) ApplyDelta(delta int64) (before, after int64) {
	before = b.Quantity
	b.Quantity += delta
	after = b.Quantity
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	if b.SafetyStock > 0 && b.Quantity < b.SafetyStock {
		b.AddDomainEvent(NewLowStockEvent(b))
	}
	return before, after
}

// Rebase sets the on-hand quantity to a target value and returns the
// before snapshot and the signed delta the movement must record.
// Used by stock adjustments and stock counts.
func (b *Balance) Rebase(target int64) (before, delta int64) {
	before = b.Quantity
	delta = target - before
	b.Quantity = target
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	if b.SafetyStock > 0 && b.Quantity < b.SafetyStock {
		b.AddDomainEvent(NewLowStockEvent(b))
	}
	return before, delta
}

// Reserve earmarks quantity for a pending order
func (b *Balance) Reserve(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Reserve quantity must be positive")
	}
	if b.AvailableQuantity() < quantity {
		return shared.ErrInsufficientStock
	}
	b.ReservedQuantity += quantity
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Release returns previously reserved quantity to the available pool
func (b *Balance) Release(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Release quantity must be positive")
	}
	if b.ReservedQuantity < quantity {
		return shared.NewDomainError("VALIDATION_FAILURE", "Release quantity exceeds reserved quantity")
	}
	b.ReservedQuantity -= quantity
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// SetSafetyStock sets the low-stock alert threshold
func (b *Balance) SetSafetyStock(quantity int64) error {
	if quantity < 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Safety stock cannot be negative")
	}
	b.SafetyStock = quantity
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// IsBelowSafetyStock returns true if the threshold is set and breached
func (b *Balance) IsBelowSafetyStock() bool {
	return b.SafetyStock > 0 && b.Quantity < b.SafetyStock
}

// CanFulfill returns true if on-hand quantity covers the requested quantity
func (b *Balance) CanFulfill(quantity int64) bool {
	return b.Quantity >= quantity
}
