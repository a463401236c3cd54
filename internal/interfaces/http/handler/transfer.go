package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	invapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/domain/stock"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// TransferHandler exposes the two-phase transfer lifecycle
type TransferHandler struct {
	BaseHandler
	transferService *invapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *invapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// RegisterRoutes registers transfer routes
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.CreateTransfer)
		transfers.GET("", h.ListTransfers)
		transfers.GET("/:id", h.GetTransfer)
		transfers.POST("/:id/ship", h.ShipTransfer)
		transfers.POST("/:id/receive", h.ReceiveTransfer)
		transfers.POST("/:id/cancel", h.CancelTransfer)
	}
}

// CancelTransferRequest carries the reason for cancelling a transfer
type CancelTransferRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// TransferItemResponse represents one transfer line in API responses
type TransferItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Notes     string    `json:"notes,omitempty"`
}

// TransferResponse represents a stock transfer in API responses
type TransferResponse struct {
	ID             uuid.UUID              `json:"id"`
	TransferNumber string                 `json:"transfer_number"`
	SourceID       uuid.UUID              `json:"source_id"`
	DestinationID  uuid.UUID              `json:"destination_id"`
	Status         string                 `json:"status"`
	Notes          string                 `json:"notes,omitempty"`
	CreatedBy      *uuid.UUID             `json:"created_by,omitempty"`
	ShippedBy      *uuid.UUID             `json:"shipped_by,omitempty"`
	ShippedAt      *time.Time             `json:"shipped_at,omitempty"`
	ReceivedBy     *uuid.UUID             `json:"received_by,omitempty"`
	ReceivedAt     *time.Time             `json:"received_at,omitempty"`
	Items          []TransferItemResponse `json:"items"`
	CreatedAt      time.Time              `json:"created_at"`
	Version        int                    `json:"version"`
}

func newTransferResponse(transfer *stock.StockTransfer) TransferResponse {
	items := make([]TransferItemResponse, len(transfer.Items))
	for i, item := range transfer.Items {
		items[i] = TransferItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		}
	}

	return TransferResponse{
		ID:             transfer.ID,
		TransferNumber: transfer.TransferNumber,
		SourceID:       transfer.SourceID,
		DestinationID:  transfer.DestinationID,
		Status:         string(transfer.Status),
		Notes:          transfer.Notes,
		CreatedBy:      transfer.CreatedBy,
		ShippedBy:      transfer.ShippedBy,
		ShippedAt:      transfer.ShippedAt,
		ReceivedBy:     transfer.ReceivedBy,
		ReceivedAt:     transfer.ReceivedAt,
		Items:          items,
		CreatedAt:      transfer.CreatedAt,
		Version:        transfer.Version,
	}
}

// CreateTransfer opens a transfer between two warehouses
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req invapp.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	transfer, err := h.transferService.CreateTransfer(c.Request.Context(), req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newTransferResponse(transfer))
}

// ShipTransfer deducts the source warehouse and marks the stock in transit
func (h *TransferHandler) ShipTransfer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transferService.ShipTransfer(c.Request.Context(), id, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTransferResponse(transfer))
}

// ReceiveTransfer credits the destination warehouse and completes the transfer
func (h *TransferHandler) ReceiveTransfer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transferService.ReceiveTransfer(c.Request.Context(), id, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTransferResponse(transfer))
}

// CancelTransfer cancels a pending or shipped transfer. Cancelling after
// shipping returns the in-transit stock to the source warehouse.
func (h *TransferHandler) CancelTransfer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	var req CancelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	transfer, err := h.transferService.CancelTransfer(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTransferResponse(transfer))
}

// GetTransfer returns one transfer with its items
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transferService.GetTransfer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTransferResponse(transfer))
}

// ListTransfers returns a filtered page of transfers
func (h *TransferHandler) ListTransfers(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}

	filter := listReq.ToFilter()
	if sourceID := c.Query("source_id"); sourceID != "" {
		filter.Filters["source_id"] = sourceID
	}
	if destinationID := c.Query("destination_id"); destinationID != "" {
		filter.Filters["destination_id"] = destinationID
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	page, err := h.transferService.ListTransfers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	transfers := make([]TransferResponse, len(page.Items))
	for i := range page.Items {
		transfers[i] = newTransferResponse(&page.Items[i])
	}

	h.SuccessWithMeta(c, transfers, page.Total, page.Page, page.PageSize)
}
