package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// GormReceiptRepository implements ReceiptRepository using GORM.
// Receipts are immutable once written, so there is no Save.
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// Create persists a new receipt with its items
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *trade.PurchaseReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// FindByID finds a receipt by its ID, preloading items
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseReceipt, error) {
	var receipt trade.PurchaseReceipt
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&receipt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByPurchaseOrder lists all receipts booked against a purchase order
func (r *GormReceiptRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]trade.PurchaseReceipt, error) {
	var receipts []trade.PurchaseReceipt
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("received_at ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// FindAll lists receipts matching the filter
func (r *GormReceiptRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseReceipt, error) {
	var receipts []trade.PurchaseReceipt
	query := r.applyFilters(r.db.WithContext(ctx).Model(&trade.PurchaseReceipt{}), filter)
	query = applyListOptions(query, filter, ReceiptSortFields)

	if err := query.Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// Count counts receipts matching the filter
func (r *GormReceiptRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&trade.PurchaseReceipt{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// StatsForDay returns receipt count and total received quantity for the day
// containing the given time
func (r *GormReceiptRepository) StatsForDay(ctx context.Context, day time.Time) (*trade.ReceiptDayStats, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var result struct {
		ReceiptCount  int64
		TotalQuantity int64
	}
	if err := r.db.WithContext(ctx).
		Model(&trade.PurchaseReceipt{}).
		Select("COUNT(DISTINCT purchase_receipts.id) as receipt_count, COALESCE(SUM(purchase_receipt_items.quantity), 0) as total_quantity").
		Joins("LEFT JOIN purchase_receipt_items ON purchase_receipt_items.receipt_id = purchase_receipts.id").
		Where("purchase_receipts.received_at >= ? AND purchase_receipts.received_at < ?", start, end).
		Scan(&result).Error; err != nil {
		return nil, err
	}

	return &trade.ReceiptDayStats{
		ReceiptCount:  result.ReceiptCount,
		TotalQuantity: result.TotalQuantity,
	}, nil
}

func (r *GormReceiptRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "purchase_order_id":
			query = query.Where("purchase_order_id = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "receipt_number":
			query = query.Where("receipt_number = ?", value)
		}
	}
	return query
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ trade.ReceiptRepository = (*GormReceiptRepository)(nil)
