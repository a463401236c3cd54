package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormBalanceRepository implements BalanceRepository using GORM
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// FindByID finds a balance by its ID
func (r *GormBalanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Balance, error) {
	var balance inventory.Balance
	if err := r.db.WithContext(ctx).First(&balance, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByProductAndWarehouse finds the balance for a product-warehouse pair
func (r *GormBalanceRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.Balance, error) {
	var balance inventory.Balance
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// GetOrCreate returns the balance for the product-warehouse pair, lazily
// creating a zero-quantity row when none exists
func (r *GormBalanceRepository) GetOrCreate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.Balance, error) {
	balance, err := r.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	balance, err = inventory.NewBalance(productID, warehouseID)
	if err != nil {
		return nil, err
	}

	// ON CONFLICT DO NOTHING handles the race where two transactions create
	// the same pair concurrently
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
			DoNothing: true,
		}).
		Create(balance)
	if result.Error != nil {
		return nil, result.Error
	}

	// Lost the race: fetch the row the other transaction created
	if result.RowsAffected == 0 {
		return r.FindByProductAndWarehouse(ctx, productID, warehouseID)
	}

	return balance, nil
}

// FindByWarehouse finds all balances in a warehouse
func (r *GormBalanceRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]inventory.Balance, error) {
	var balances []inventory.Balance
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Order("product_id ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// FindPositiveByWarehouse finds balances with quantity > 0
func (r *GormBalanceRepository) FindPositiveByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]inventory.Balance, error) {
	var balances []inventory.Balance
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND quantity > 0", warehouseID).
		Order("product_id ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// FindBelowSafetyStock finds balances below their safety stock threshold
func (r *GormBalanceRepository) FindBelowSafetyStock(ctx context.Context) ([]inventory.Balance, error) {
	var balances []inventory.Balance
	if err := r.db.WithContext(ctx).
		Where("safety_stock > 0 AND quantity < safety_stock").
		Order("warehouse_id ASC, product_id ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// Save persists the balance without a version check
func (r *GormBalanceRepository) Save(ctx context.Context, balance *inventory.Balance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormBalanceRepository) SaveWithLock(ctx context.Context, balance *inventory.Balance) error {
	result := r.db.WithContext(ctx).
		Model(balance).
		Where("id = ? AND version = ?", balance.ID, balance.Version-1).
		Updates(map[string]interface{}{
			"quantity":          balance.Quantity,
			"reserved_quantity": balance.ReservedQuantity,
			"safety_stock":      balance.SafetyStock,
			"version":           balance.Version,
			"updated_at":        balance.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormBalanceRepository implements BalanceRepository
var _ inventory.BalanceRepository = (*GormBalanceRepository)(nil)
