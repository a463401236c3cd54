package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Event types for the inventory domain
const (
	EventTypeMovementRecorded   = "inventory.movement_recorded"
	EventTypeLowStock           = "inventory.low_stock"
	EventTypeStockCountStarted  = "inventory.stock_count_started"
	EventTypeStockCountComplete = "inventory.stock_count_completed"
)

// MovementRecordedEvent is emitted for every ledger entry; it is the raw
// material for downstream stock feeds
type MovementRecordedEvent struct {
	shared.BaseDomainEvent
	MovementID      uuid.UUID    `json:"movement_id"`
	ProductID       uuid.UUID    `json:"product_id"`
	WarehouseID     uuid.UUID    `json:"warehouse_id"`
	Kind            MovementKind `json:"kind"`
	Quantity        int64        `json:"quantity"`
	BeforeQuantity  int64        `json:"before_quantity"`
	AfterQuantity   int64        `json:"after_quantity"`
	ReferenceType   string       `json:"reference_type"`
	ReferenceNumber string       `json:"reference_number"`
	OccurredOn      time.Time    `json:"occurred_on"`
}

// NewMovementRecordedEvent creates a movement recorded event
func NewMovementRecordedEvent(m *Movement) *MovementRecordedEvent {
	return &MovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementRecorded, "Balance", m.BalanceID),
		MovementID:      m.ID,
		ProductID:       m.ProductID,
		WarehouseID:     m.WarehouseID,
		Kind:            m.Kind,
		Quantity:        m.Quantity,
		BeforeQuantity:  m.BeforeQuantity,
		AfterQuantity:   m.AfterQuantity,
		ReferenceType:   m.ReferenceType,
		ReferenceNumber: m.ReferenceNumber,
		OccurredOn:      m.OccurredAt,
	}
}

// LowStockEvent is emitted when a balance drops below its safety stock
type LowStockEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	SafetyStock int64     `json:"safety_stock"`
}

// NewLowStockEvent creates a low stock event
func NewLowStockEvent(b *Balance) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, "Balance", b.ID),
		ProductID:       b.ProductID,
		WarehouseID:     b.WarehouseID,
		Quantity:        b.Quantity,
		SafetyStock:     b.SafetyStock,
	}
}

// StockCountStartedEvent is emitted when a count's items are initialized
type StockCountStartedEvent struct {
	shared.BaseDomainEvent
	CountNumber string    `json:"count_number"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	TotalItems  int       `json:"total_items"`
}

// NewStockCountStartedEvent creates a stock count started event
func NewStockCountStartedEvent(sc *StockCount) *StockCountStartedEvent {
	return &StockCountStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCountStarted, "StockCount", sc.ID),
		CountNumber:     sc.CountNumber,
		WarehouseID:     sc.WarehouseID,
		TotalItems:      sc.TotalItems,
	}
}

// StockCountCompletedEvent is emitted when a count completes and balances are re-based
type StockCountCompletedEvent struct {
	shared.BaseDomainEvent
	CountNumber   string    `json:"count_number"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	TotalSurplus  int64     `json:"total_surplus"`
	TotalShortage int64     `json:"total_shortage"`
}

// NewStockCountCompletedEvent creates a stock count completed event
func NewStockCountCompletedEvent(sc *StockCount) *StockCountCompletedEvent {
	return &StockCountCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCountComplete, "StockCount", sc.ID),
		CountNumber:     sc.CountNumber,
		WarehouseID:     sc.WarehouseID,
		TotalSurplus:    sc.TotalSurplus,
		TotalShortage:   sc.TotalShortage,
	}
}
