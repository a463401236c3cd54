package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormCountRepository implements CountRepository using GORM
type GormCountRepository struct {
	db *gorm.DB
}

// NewGormCountRepository creates a new GormCountRepository
func NewGormCountRepository(db *gorm.DB) *GormCountRepository {
	return &GormCountRepository{db: db}
}

// Create persists a new stock count
func (r *GormCountRepository) Create(ctx context.Context, count *inventory.StockCount) error {
	return r.db.WithContext(ctx).Create(count).Error
}

// FindByID finds a stock count by its ID, preloading items
func (r *GormCountRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockCount, error) {
	var count inventory.StockCount
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&count, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// Save persists the count header and its items
func (r *GormCountRepository) Save(ctx context.Context, count *inventory.StockCount) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(count).Error
}

// FindAll lists stock counts matching the filter
func (r *GormCountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockCount, error) {
	var counts []inventory.StockCount
	query := r.applyFilters(r.db.WithContext(ctx).Model(&inventory.StockCount{}), filter)
	query = applyListOptions(query, filter, CountSortFields)

	if err := query.Find(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// Count counts stock counts matching the filter
func (r *GormCountRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&inventory.StockCount{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCountRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "count_number":
			query = query.Where("count_number = ?", value)
		}
	}
	return query
}

// Ensure GormCountRepository implements CountRepository
var _ inventory.CountRepository = (*GormCountRepository)(nil)
