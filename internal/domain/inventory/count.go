package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// CountStatus represents the status of a stock count document
type CountStatus string

const (
	CountStatusDraft      CountStatus = "DRAFT"
	CountStatusInProgress CountStatus = "IN_PROGRESS"
	CountStatusCompleted  CountStatus = "COMPLETED"
	CountStatusCancelled  CountStatus = "CANCELLED"
)

// IsValid checks if the status is a valid CountStatus
func (s CountStatus) IsValid() bool {
	switch s {
	case CountStatusDraft, CountStatusInProgress, CountStatusCompleted, CountStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of CountStatus
func (s CountStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s CountStatus) CanTransitionTo(target CountStatus) bool {
	switch s {
	case CountStatusDraft:
		return target == CountStatusInProgress || target == CountStatusCancelled
	case CountStatusInProgress:
		return target == CountStatusCompleted || target == CountStatusCancelled
	case CountStatusCompleted, CountStatusCancelled:
		return false // Terminal states
	}
	return false
}

// StockCountItem represents a line item in a stock count
type StockCountItem struct {
	shared.BaseEntity
	CountID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_stock_count_item_count"`
	ProductID      uuid.UUID  `gorm:"type:uuid;not null"`
	SystemQuantity int64      `gorm:"not null"` // Balance quantity snapshotted at initialization
	ActualQuantity *int64     // Physical count, nil until counted
	Difference     int64      `gorm:"not null;default:0"` // Actual - System
	Counted        bool       `gorm:"not null;default:false"`
	Reason         string     `gorm:"type:varchar(255)"`
	CountedBy      *uuid.UUID `gorm:"type:uuid"`
	CountedAt      *time.Time
}

// TableName returns the table name for GORM
func (StockCountItem) TableName() string {
	return "stock_count_items"
}

// RecordCount records the physical count for this item
func (i *StockCountItem) RecordCount(actualQty int64, actorID uuid.UUID, reason string) error {
	if actualQty < 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Actual quantity cannot be negative")
	}

	now := time.Now()
	i.ActualQuantity = &actualQty
	i.Difference = actualQty - i.SystemQuantity
	i.Counted = true
	i.Reason = reason
	i.CountedBy = &actorID
	i.CountedAt = &now
	i.UpdatedAt = now

	return nil
}

// HasDifference returns true if the physical count deviates from the system quantity
func (i *StockCountItem) HasDifference() bool {
	return i.Counted && i.Difference != 0
}

// CountSnapshot carries a balance snapshot used to initialize count items
type CountSnapshot struct {
	ProductID uuid.UUID
	Quantity  int64
}

// StockCount represents a physical inventory count for one warehouse.
// It is the aggregate root for counting operations.
type StockCount struct {
	shared.BaseAggregateRoot
	CountNumber   string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	WarehouseID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status        CountStatus `gorm:"type:varchar(20);not null"`
	TotalItems    int         `gorm:"not null;default:0"`
	CountedItems  int         `gorm:"not null;default:0"`
	TotalSurplus  int64       `gorm:"not null;default:0"` // Sum of positive differences
	TotalShortage int64       `gorm:"not null;default:0"` // Absolute sum of negative differences
	Notes         string      `gorm:"type:varchar(255)"`
	CreatedBy     *uuid.UUID  `gorm:"type:uuid"`
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CompletedBy   *uuid.UUID       `gorm:"type:uuid"`
	Items         []StockCountItem `gorm:"foreignKey:CountID;references:ID"`
}

// TableName returns the table name for GORM
func (StockCount) TableName() string {
	return "stock_counts"
}

// NewStockCount creates a stock count in DRAFT status
func NewStockCount(countNumber string, warehouseID uuid.UUID, notes string, createdBy uuid.UUID) (*StockCount, error) {
	if countNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Count number cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Warehouse ID cannot be empty")
	}

	sc := &StockCount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CountNumber:       countNumber,
		WarehouseID:       warehouseID,
		Status:            CountStatusDraft,
		Notes:             notes,
		Items:             make([]StockCountItem, 0),
	}
	if createdBy != uuid.Nil {
		sc.CreatedBy = &createdBy
	}

	return sc, nil
}

// InitializeItems snapshots balances as count items and starts counting.
// Only legal in DRAFT status; the snapshots come from balances with
// quantity > 0 in the count's warehouse.
func (sc *StockCount) InitializeItems(snapshots []CountSnapshot, actorID uuid.UUID) error {
	if sc.Status != CountStatusDraft {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot initialize items from %s status", sc.Status))
	}
	if len(snapshots) == 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "No stock to count in this warehouse")
	}

	now := time.Now()
	for _, snap := range snapshots {
		item := StockCountItem{
			BaseEntity:     shared.NewBaseEntity(),
			CountID:        sc.ID,
			ProductID:      snap.ProductID,
			SystemQuantity: snap.Quantity,
		}
		sc.Items = append(sc.Items, item)
	}
	sc.TotalItems = len(sc.Items)
	sc.Status = CountStatusInProgress
	sc.StartedAt = &now
	sc.UpdatedAt = now
	sc.IncrementVersion()

	sc.AddDomainEvent(NewStockCountStartedEvent(sc))

	return nil
}

// RecordItemCount records the physical count for one item
func (sc *StockCount) RecordItemCount(itemID uuid.UUID, actualQty int64, actorID uuid.UUID, reason string) error {
	if sc.Status != CountStatusInProgress {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Can only record counts in IN_PROGRESS status")
	}

	for i := range sc.Items {
		if sc.Items[i].ID == itemID {
			wasCounted := sc.Items[i].Counted

			if err := sc.Items[i].RecordCount(actualQty, actorID, reason); err != nil {
				return err
			}

			if !wasCounted {
				sc.CountedItems++
			}

			sc.recalculateTotals()
			sc.UpdatedAt = time.Now()
			sc.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("NOT_FOUND", "Count item not found")
}

// recalculateTotals recalculates surplus/shortage aggregates after a count is recorded
func (sc *StockCount) recalculateTotals() {
	sc.TotalSurplus = 0
	sc.TotalShortage = 0

	for _, item := range sc.Items {
		if !item.Counted {
			continue
		}
		if item.Difference > 0 {
			sc.TotalSurplus += item.Difference
		} else if item.Difference < 0 {
			sc.TotalShortage += -item.Difference
		}
	}
}

// Complete finishes the count. Every item must be counted; the caller re-bases
// balances for the items returned by GetItemsWithDifference.
func (sc *StockCount) Complete(actorID uuid.UUID) error {
	if !sc.Status.CanTransitionTo(CountStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot transition from %s to COMPLETED", sc.Status))
	}
	if sc.CountedItems != sc.TotalItems {
		return shared.NewDomainError("INCOMPLETE_COUNT", fmt.Sprintf("Not all items have been counted (%d/%d)", sc.CountedItems, sc.TotalItems))
	}

	now := time.Now()
	sc.Status = CountStatusCompleted
	sc.CompletedAt = &now
	if actorID != uuid.Nil {
		sc.CompletedBy = &actorID
	}
	sc.UpdatedAt = now
	sc.IncrementVersion()

	sc.AddDomainEvent(NewStockCountCompletedEvent(sc))

	return nil
}

// Cancel cancels the count; legal from any non-terminal status
func (sc *StockCount) Cancel(reason string) error {
	if !sc.Status.CanTransitionTo(CountStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Cannot transition from %s to CANCELLED", sc.Status))
	}

	sc.Status = CountStatusCancelled
	if reason != "" {
		sc.Notes = reason
	}
	sc.UpdatedAt = time.Now()
	sc.IncrementVersion()

	return nil
}

// IsComplete returns true if all items have been counted
func (sc *StockCount) IsComplete() bool {
	return sc.TotalItems > 0 && sc.CountedItems == sc.TotalItems
}

// GetItemsWithDifference returns counted items whose actual quantity deviates
// from the system quantity
func (sc *StockCount) GetItemsWithDifference() []StockCountItem {
	result := make([]StockCountItem, 0)
	for _, item := range sc.Items {
		if item.HasDifference() {
			result = append(result, item)
		}
	}
	return result
}

// GetUncountedItems returns items that have not been counted yet
func (sc *StockCount) GetUncountedItems() []StockCountItem {
	result := make([]StockCountItem, 0)
	for _, item := range sc.Items {
		if !item.Counted {
			result = append(result, item)
		}
	}
	return result
}
