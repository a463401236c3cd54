package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	tradeapp "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// ReceiptHandler exposes goods receiving against approved purchase orders
type ReceiptHandler struct {
	BaseHandler
	receiptService *tradeapp.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *tradeapp.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// RegisterRoutes registers receipt routes
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receipts := rg.Group("/receipts")
	{
		receipts.POST("", h.CreateReceipt)
		receipts.GET("", h.ListReceipts)
		receipts.GET("/stats/today", h.TodayStats)
		receipts.GET("/:id", h.GetReceipt)
	}

	rg.GET("/purchase-orders/:id/receipts", h.ListReceiptsByPurchaseOrder)
}

// ReceiptItemResponse represents one received line in API responses
type ReceiptItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	PurchaseOrderItemID uuid.UUID       `json:"purchase_order_item_id"`
	ProductID           uuid.UUID       `json:"product_id"`
	Quantity            int64           `json:"quantity"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	Notes               string          `json:"notes,omitempty"`
}

// ReceiptResponse represents a purchase receipt in API responses
type ReceiptResponse struct {
	ID              uuid.UUID             `json:"id"`
	ReceiptNumber   string                `json:"receipt_number"`
	PurchaseOrderID uuid.UUID             `json:"purchase_order_id"`
	WarehouseID     uuid.UUID             `json:"warehouse_id"`
	ReceivedBy      *uuid.UUID            `json:"received_by,omitempty"`
	ReceivedAt      time.Time             `json:"received_at"`
	Notes           string                `json:"notes,omitempty"`
	Items           []ReceiptItemResponse `json:"items"`
}

// ReceiptStatsResponse summarizes receiving activity for one day
type ReceiptStatsResponse struct {
	ReceiptCount  int64 `json:"receipt_count"`
	TotalQuantity int64 `json:"total_quantity"`
}

func newReceiptResponse(receipt *trade.PurchaseReceipt) ReceiptResponse {
	items := make([]ReceiptItemResponse, len(receipt.Items))
	for i := range receipt.Items {
		item := &receipt.Items[i]
		items[i] = ReceiptItemResponse{
			ID:                  item.ID,
			PurchaseOrderItemID: item.PurchaseOrderItemID,
			ProductID:           item.ProductID,
			Quantity:            item.Quantity,
			UnitCost:            item.UnitCost,
			Notes:               item.Notes,
		}
	}

	return ReceiptResponse{
		ID:              receipt.ID,
		ReceiptNumber:   receipt.ReceiptNumber,
		PurchaseOrderID: receipt.PurchaseOrderID,
		WarehouseID:     receipt.WarehouseID,
		ReceivedBy:      receipt.ReceivedBy,
		ReceivedAt:      receipt.ReceivedAt,
		Notes:           receipt.Notes,
		Items:           items,
	}
}

// CreateReceipt books received goods against an approved purchase order.
// The receipt, the inbound movements and the parent order update are
// written in one transaction.
func (h *ReceiptHandler) CreateReceipt(c *gin.Context) {
	var req tradeapp.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	receipt, err := h.receiptService.CreateReceipt(c.Request.Context(), req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newReceiptResponse(receipt))
}

// GetReceipt returns one receipt with its items
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newReceiptResponse(receipt))
}

// ListReceiptsByPurchaseOrder returns all receipts booked against one order,
// oldest first
func (h *ReceiptHandler) ListReceiptsByPurchaseOrder(c *gin.Context) {
	purchaseOrderID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	receipts, err := h.receiptService.ListReceiptsByPurchaseOrder(c.Request.Context(), purchaseOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		out[i] = newReceiptResponse(&receipts[i])
	}

	h.Success(c, out)
}

// ListReceipts returns a filtered page of receipts
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}

	filter := listReq.ToFilter()
	if warehouseID := c.Query("warehouse_id"); warehouseID != "" {
		filter.Filters["warehouse_id"] = warehouseID
	}
	if purchaseOrderID := c.Query("purchase_order_id"); purchaseOrderID != "" {
		filter.Filters["purchase_order_id"] = purchaseOrderID
	}

	page, err := h.receiptService.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	receipts := make([]ReceiptResponse, len(page.Items))
	for i := range page.Items {
		receipts[i] = newReceiptResponse(&page.Items[i])
	}

	h.SuccessWithMeta(c, receipts, page.Total, page.Page, page.PageSize)
}

// TodayStats summarizes receiving activity for the current day
func (h *ReceiptHandler) TodayStats(c *gin.Context) {
	stats, err := h.receiptService.TodayStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ReceiptStatsResponse{
		ReceiptCount:  stats.ReceiptCount,
		TotalQuantity: stats.TotalQuantity,
	})
}
