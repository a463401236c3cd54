package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// StockService covers the read side of the ledger plus the balance-level
// operations that don't write movements: safety stock thresholds and
// order reservations
type StockService struct {
	balanceRepo  inventory.BalanceRepository
	movementRepo inventory.MovementRepository
	logger       *zap.Logger
}

// NewStockService creates a stock service
func NewStockService(balanceRepo inventory.BalanceRepository, movementRepo inventory.MovementRepository, logger *zap.Logger) *StockService {
	return &StockService{
		balanceRepo:  balanceRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// GetBalance returns the balance for a product-warehouse pair; a missing row
// reads as zero stock rather than an error
func (s *StockService) GetBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.Balance, error) {
	balance, err := s.balanceRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return inventory.NewBalance(productID, warehouseID)
		}
		return nil, err
	}
	return balance, nil
}

// ListWarehouseBalances returns all balances in a warehouse
func (s *StockService) ListWarehouseBalances(ctx context.Context, warehouseID uuid.UUID) ([]inventory.Balance, error) {
	return s.balanceRepo.FindByWarehouse(ctx, warehouseID)
}

// ListLowStock returns balances below their safety stock threshold
func (s *StockService) ListLowStock(ctx context.Context) ([]inventory.Balance, error) {
	return s.balanceRepo.FindBelowSafetyStock(ctx)
}

// SearchMovements lists ledger entries matching the request, newest first
func (s *StockService) SearchMovements(ctx context.Context, req SearchMovementsRequest) (shared.Paginated[inventory.Movement], error) {
	query := inventory.MovementQuery{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		From:        req.From,
		To:          req.To,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	if req.Kind != "" {
		kind := inventory.MovementKind(req.Kind)
		if !kind.IsValid() {
			return shared.Paginated[inventory.Movement]{}, shared.NewDomainError("VALIDATION_FAILURE", "Invalid movement kind")
		}
		query.Kind = &kind
	}
	return s.movementRepo.Search(ctx, query)
}

// UpdateSafetyStock sets the low-stock threshold on a balance, lazily
// creating the row so thresholds can be set before any stock arrives
func (s *StockService) UpdateSafetyStock(ctx context.Context, productID, warehouseID uuid.UUID, req UpdateSafetyStockRequest) (*inventory.Balance, error) {
	balance, err := s.balanceRepo.GetOrCreate(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if err := balance.SetSafetyStock(req.SafetyStock); err != nil {
		return nil, err
	}
	if err := s.balanceRepo.SaveWithLock(ctx, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// ReserveStock earmarks quantity for a pending order under the usual
// optimistic version check
func (s *StockService) ReserveStock(ctx context.Context, req ReservationRequest) (*inventory.Balance, error) {
	return s.mutateReservation(ctx, req, func(b *inventory.Balance) error {
		return b.Reserve(req.Quantity)
	})
}

// ReleaseStock returns reserved quantity to the available pool
func (s *StockService) ReleaseStock(ctx context.Context, req ReservationRequest) (*inventory.Balance, error) {
	return s.mutateReservation(ctx, req, func(b *inventory.Balance) error {
		return b.Release(req.Quantity)
	})
}

func (s *StockService) mutateReservation(ctx context.Context, req ReservationRequest, mutate func(*inventory.Balance) error) (*inventory.Balance, error) {
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		balance, err := s.balanceRepo.GetOrCreate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return nil, err
		}
		if err := mutate(balance); err != nil {
			return nil, err
		}
		if err := s.balanceRepo.SaveWithLock(ctx, balance); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				s.logger.Debug("reservation version conflict, retrying",
					zap.String("product_id", req.ProductID.String()),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			return nil, err
		}
		return balance, nil
	}
	return nil, shared.ErrConcurrencyConflict
}
