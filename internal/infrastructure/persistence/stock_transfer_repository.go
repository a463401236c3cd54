package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// Create persists a new stock transfer
func (r *GormTransferRepository) Create(ctx context.Context, transfer *stock.StockTransfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

// FindByID finds a transfer by its ID, preloading items
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockTransfer, error) {
	var transfer stock.StockTransfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindByNumber finds a transfer by its document number
func (r *GormTransferRepository) FindByNumber(ctx context.Context, transferNumber string) (*stock.StockTransfer, error) {
	var transfer stock.StockTransfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&transfer, "transfer_number = ?", transferNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// Save persists the transfer header and its items
func (r *GormTransferRepository) Save(ctx context.Context, transfer *stock.StockTransfer) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(transfer).Error
}

// FindAll lists transfers matching the filter
func (r *GormTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.StockTransfer, error) {
	var transfers []stock.StockTransfer
	query := r.applyFilters(r.db.WithContext(ctx).Model(&stock.StockTransfer{}), filter)
	query = applyListOptions(query, filter, TransferSortFields)

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Count counts transfers matching the filter
func (r *GormTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&stock.StockTransfer{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTransferRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "source_id":
			query = query.Where("source_id = ?", value)
		case "destination_id":
			query = query.Where("destination_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "transfer_number":
			query = query.Where("transfer_number = ?", value)
		}
	}
	return query
}

// Ensure GormTransferRepository implements TransferRepository
var _ stock.TransferRepository = (*GormTransferRepository)(nil)
