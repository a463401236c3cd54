package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// TransferService moves stock between warehouses in two phases. Shipping and
// receiving each run in their own transaction, so only one warehouse's
// balance is ever locked at a time and in-transit stock belongs to neither.
type TransferService struct {
	scope          TransactionScope
	ledger         *LedgerService
	numbers        *numbering.Generator
	transferRepo   stock.TransferRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTransferService creates a transfer service
func NewTransferService(
	scope TransactionScope,
	ledger *LedgerService,
	numbers *numbering.Generator,
	transferRepo stock.TransferRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		scope:          scope,
		ledger:         ledger,
		numbers:        numbers,
		transferRepo:   transferRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreateTransfer opens a transfer in PENDING status
func (s *TransferService) CreateTransfer(ctx context.Context, req CreateTransferRequest, actorID uuid.UUID) (*stock.StockTransfer, error) {
	var transfer *stock.StockTransfer

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := s.numbers.Next(ctx, repos.NumberingRepo(), numbering.DocTypeStockTransfer)
		if err != nil {
			return err
		}

		t, err := stock.NewStockTransfer(number, req.SourceID, req.DestinationID, req.Notes, actorID)
		if err != nil {
			return err
		}
		for _, item := range req.Items {
			if err := t.AddItem(item.ProductID, item.Quantity, item.Notes); err != nil {
				return err
			}
		}
		if err := repos.TransferRepo().Create(ctx, t); err != nil {
			return err
		}

		transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transfer, nil
}

// ShipTransfer deducts every item from the source warehouse and marks the
// transfer SHIPPED. Insufficient stock on any line rolls the whole phase back.
func (s *TransferService) ShipTransfer(ctx context.Context, transferID, actorID uuid.UUID) (*stock.StockTransfer, error) {
	var transfer *stock.StockTransfer

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		t, err := repos.TransferRepo().FindByID(ctx, transferID)
		if err != nil {
			return err
		}

		if err := t.MarkShipped(actorID); err != nil {
			return err
		}

		for _, item := range t.Items {
			if _, err := s.ledger.Apply(ctx, repos, MovementRequest{
				ProductID:          item.ProductID,
				WarehouseID:        t.SourceID,
				Kind:               inventory.MovementKindTransferOut,
				Quantity:           -item.Quantity,
				ReferenceType:      numbering.DocTypeStockTransfer,
				ReferenceNumber:    t.TransferNumber,
				Notes:              item.Notes,
				ActorID:            actorID,
				RequireNonNegative: true,
			}); err != nil {
				return err
			}
		}

		if err := repos.TransferRepo().Save(ctx, t); err != nil {
			return err
		}

		transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, transfer)

	s.logger.Info("stock transfer shipped",
		zap.String("transfer_number", transfer.TransferNumber),
		zap.String("source_id", transfer.SourceID.String()),
	)

	return transfer, nil
}

// ReceiveTransfer credits every item to the destination warehouse, lazily
// creating balances, and marks the transfer RECEIVED
func (s *TransferService) ReceiveTransfer(ctx context.Context, transferID, actorID uuid.UUID) (*stock.StockTransfer, error) {
	var transfer *stock.StockTransfer

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		t, err := repos.TransferRepo().FindByID(ctx, transferID)
		if err != nil {
			return err
		}

		if err := t.MarkReceived(actorID); err != nil {
			return err
		}

		for _, item := range t.Items {
			if _, err := s.ledger.Apply(ctx, repos, MovementRequest{
				ProductID:       item.ProductID,
				WarehouseID:     t.DestinationID,
				Kind:            inventory.MovementKindTransferIn,
				Quantity:        item.Quantity,
				ReferenceType:   numbering.DocTypeStockTransfer,
				ReferenceNumber: t.TransferNumber,
				Notes:           item.Notes,
				ActorID:         actorID,
			}); err != nil {
				return err
			}
		}

		if err := repos.TransferRepo().Save(ctx, t); err != nil {
			return err
		}

		transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, transfer)

	s.logger.Info("stock transfer received",
		zap.String("transfer_number", transfer.TransferNumber),
		zap.String("destination_id", transfer.DestinationID.String()),
	)

	return transfer, nil
}

// CancelTransfer cancels a transfer; only legal before shipping
func (s *TransferService) CancelTransfer(ctx context.Context, transferID uuid.UUID, reason string) (*stock.StockTransfer, error) {
	var transfer *stock.StockTransfer

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		t, err := repos.TransferRepo().FindByID(ctx, transferID)
		if err != nil {
			return err
		}

		if err := t.Cancel(reason); err != nil {
			return err
		}
		if err := repos.TransferRepo().Save(ctx, t); err != nil {
			return err
		}

		transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transfer, nil
}

// GetTransfer returns one transfer with its items
func (s *TransferService) GetTransfer(ctx context.Context, id uuid.UUID) (*stock.StockTransfer, error) {
	return s.transferRepo.FindByID(ctx, id)
}

// ListTransfers lists transfers matching the filter
func (s *TransferService) ListTransfers(ctx context.Context, filter shared.Filter) (shared.Paginated[stock.StockTransfer], error) {
	items, err := s.transferRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[stock.StockTransfer]{}, err
	}
	total, err := s.transferRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[stock.StockTransfer]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// publishDomainEvents emits buffered aggregate events after commit
func (s *TransferService) publishDomainEvents(ctx context.Context, transfer *stock.StockTransfer) {
	if s.eventPublisher == nil || transfer == nil {
		return
	}
	events := transfer.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish transfer events", zap.Error(err))
	}
	transfer.ClearDomainEvents()
}
