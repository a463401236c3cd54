package stock

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// TransferRepository defines the interface for stock transfer persistence
type TransferRepository interface {
	Create(ctx context.Context, transfer *StockTransfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransfer, error)
	FindByNumber(ctx context.Context, transferNumber string) (*StockTransfer, error)
	// Save persists the transfer header and its items
	Save(ctx context.Context, transfer *StockTransfer) error
	FindAll(ctx context.Context, filter shared.Filter) ([]StockTransfer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
