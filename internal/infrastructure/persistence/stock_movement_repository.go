package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormMovementRepository implements MovementRepository using GORM.
// The ledger is append-only: there is deliberately no Save or Delete.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends a movement to the ledger
func (r *GormMovementRepository) Create(ctx context.Context, movement *inventory.Movement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Movement, error) {
	var movement inventory.Movement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// Search lists movements matching the query, newest first
func (r *GormMovementRepository) Search(ctx context.Context, query inventory.MovementQuery) (shared.Paginated[inventory.Movement], error) {
	base := r.db.WithContext(ctx).Model(&inventory.Movement{})
	base = r.applyQuery(base, query)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return shared.Paginated[inventory.Movement]{}, err
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var movements []inventory.Movement
	if err := base.
		Order("occurred_at DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&movements).Error; err != nil {
		return shared.Paginated[inventory.Movement]{}, err
	}

	return shared.NewPaginated(movements, total, page, pageSize), nil
}

// SumQuantity returns the sum of signed deltas for a product-warehouse pair
func (r *GormMovementRepository) SumQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int64, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.Movement{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// applyQuery translates a MovementQuery into WHERE clauses
func (r *GormMovementRepository) applyQuery(db *gorm.DB, query inventory.MovementQuery) *gorm.DB {
	if query.ProductID != nil {
		db = db.Where("product_id = ?", *query.ProductID)
	}
	if query.WarehouseID != nil {
		db = db.Where("warehouse_id = ?", *query.WarehouseID)
	}
	if query.Kind != nil {
		db = db.Where("kind = ?", *query.Kind)
	}
	if query.ReferenceType != "" {
		db = db.Where("reference_type = ?", query.ReferenceType)
	}
	if query.ReferenceNumber != "" {
		db = db.Where("reference_number = ?", query.ReferenceNumber)
	}
	if query.From != nil {
		db = db.Where("occurred_at >= ?", *query.From)
	}
	if query.To != nil {
		db = db.Where("occurred_at < ?", *query.To)
	}
	return db
}

// Ensure GormMovementRepository implements MovementRepository
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
