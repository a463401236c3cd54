package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// BalanceRepository defines the interface for stock balance persistence
type BalanceRepository interface {
	// FindByID finds a balance by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Balance, error)

	// FindByProductAndWarehouse finds the balance for a product-warehouse pair
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*Balance, error)

	// GetOrCreate returns the balance for the product-warehouse pair, lazily
	// creating a zero-quantity row when none exists
	GetOrCreate(ctx context.Context, productID, warehouseID uuid.UUID) (*Balance, error)

	// FindByWarehouse finds all balances in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]Balance, error)

	// FindPositiveByWarehouse finds balances with quantity > 0, used to
	// initialize stock count items
	FindPositiveByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]Balance, error)

	// FindBelowSafetyStock finds balances below their safety stock threshold
	FindBelowSafetyStock(ctx context.Context) ([]Balance, error)

	// Save persists the balance without a version check
	Save(ctx context.Context, balance *Balance) error

	// SaveWithLock persists the balance with an optimistic version check and
	// returns shared.ErrConcurrencyConflict when the row moved underneath us
	SaveWithLock(ctx context.Context, balance *Balance) error
}

// MovementQuery filters ledger listings
type MovementQuery struct {
	ProductID       *uuid.UUID
	WarehouseID     *uuid.UUID
	Kind            *MovementKind
	ReferenceType   string
	ReferenceNumber string
	From            *time.Time
	To              *time.Time
	Page            int
	PageSize        int
}

// MovementRepository defines the interface for the append-only movement ledger
type MovementRepository interface {
	// Create appends a movement; movements are never updated or deleted
	Create(ctx context.Context, movement *Movement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// Search lists movements matching the query, newest first
	Search(ctx context.Context, query MovementQuery) (shared.Paginated[Movement], error)

	// SumQuantity returns the sum of signed deltas for a product-warehouse
	// pair; it equals the balance quantity at all times
	SumQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int64, error)
}

// AdjustmentRepository defines the interface for stock adjustment persistence
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *StockAdjustment) error
	FindByID(ctx context.Context, id uuid.UUID) (*StockAdjustment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]StockAdjustment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// CountRepository defines the interface for stock count persistence
type CountRepository interface {
	Create(ctx context.Context, count *StockCount) error
	FindByID(ctx context.Context, id uuid.UUID) (*StockCount, error)
	// Save persists the count header and its items
	Save(ctx context.Context, count *StockCount) error
	FindAll(ctx context.Context, filter shared.Filter) ([]StockCount, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
