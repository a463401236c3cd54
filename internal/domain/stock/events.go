package stock

import (
	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Event types for the stock transfer domain
const (
	EventTypeTransferShipped  = "stock.transfer_shipped"
	EventTypeTransferReceived = "stock.transfer_received"
)

// TransferShippedEvent is emitted when source balances have been deducted
type TransferShippedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string    `json:"transfer_number"`
	SourceID       uuid.UUID `json:"source_id"`
	DestinationID  uuid.UUID `json:"destination_id"`
	TotalQuantity  int64     `json:"total_quantity"`
}

// NewTransferShippedEvent creates a transfer shipped event
func NewTransferShippedEvent(t *StockTransfer) *TransferShippedEvent {
	return &TransferShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferShipped, "StockTransfer", t.ID),
		TransferNumber:  t.TransferNumber,
		SourceID:        t.SourceID,
		DestinationID:   t.DestinationID,
		TotalQuantity:   t.TotalQuantity(),
	}
}

// TransferReceivedEvent is emitted when destination balances have been credited
type TransferReceivedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string    `json:"transfer_number"`
	SourceID       uuid.UUID `json:"source_id"`
	DestinationID  uuid.UUID `json:"destination_id"`
	TotalQuantity  int64     `json:"total_quantity"`
}

// NewTransferReceivedEvent creates a transfer received event
func NewTransferReceivedEvent(t *StockTransfer) *TransferReceivedEvent {
	return &TransferReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferReceived, "StockTransfer", t.ID),
		TransferNumber:  t.TransferNumber,
		SourceID:        t.SourceID,
		DestinationID:   t.DestinationID,
		TotalQuantity:   t.TotalQuantity(),
	}
}
