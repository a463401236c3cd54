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

// PurchaseOrderHandler exposes the purchase order lifecycle up to receiving
type PurchaseOrderHandler struct {
	BaseHandler
	purchaseOrderService *tradeapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(purchaseOrderService *tradeapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{purchaseOrderService: purchaseOrderService}
}

// RegisterRoutes registers purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", h.CreatePurchaseOrder)
		orders.GET("", h.ListPurchaseOrders)
		orders.GET("/:id", h.GetPurchaseOrder)
		orders.POST("/:id/submit", h.SubmitPurchaseOrder)
		orders.POST("/:id/approve", h.ApprovePurchaseOrder)
		orders.POST("/:id/cancel", h.CancelPurchaseOrder)
	}
}

// CancelPurchaseOrderRequest carries the reason for cancelling an order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// PurchaseOrderItemResponse represents one purchase order line in API responses
type PurchaseOrderItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	OrderedQuantity   int64           `json:"ordered_quantity"`
	ReceivedQuantity  int64           `json:"received_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID          uuid.UUID                   `json:"id"`
	OrderNumber string                      `json:"order_number"`
	SupplierID  uuid.UUID                   `json:"supplier_id"`
	WarehouseID uuid.UUID                   `json:"warehouse_id"`
	Status      string                      `json:"status"`
	TotalAmount decimal.Decimal             `json:"total_amount"`
	Notes       string                      `json:"notes,omitempty"`
	ApprovedBy  *uuid.UUID                  `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time                  `json:"approved_at,omitempty"`
	Items       []PurchaseOrderItemResponse `json:"items"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	Version     int                         `json:"version"`
}

func newPurchaseOrderResponse(order *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items[i] = PurchaseOrderItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			OrderedQuantity:   item.OrderedQuantity,
			ReceivedQuantity:  item.ReceivedQuantity,
			RemainingQuantity: item.RemainingQuantity(),
			UnitPrice:         item.UnitPrice,
		}
	}

	return PurchaseOrderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		SupplierID:  order.SupplierID,
		WarehouseID: order.WarehouseID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		Notes:       order.Notes,
		ApprovedBy:  order.ApprovedBy,
		ApprovedAt:  order.ApprovedAt,
		Items:       items,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		Version:     order.Version,
	}
}

// CreatePurchaseOrder creates a purchase order in DRAFT status
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	var req tradeapp.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.purchaseOrderService.CreatePurchaseOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newPurchaseOrderResponse(order))
}

// SubmitPurchaseOrder moves a draft order to SUBMITTED
func (h *PurchaseOrderHandler) SubmitPurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.purchaseOrderService.SubmitPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newPurchaseOrderResponse(order))
}

// ApprovePurchaseOrder approves a submitted order, opening it for receiving
func (h *PurchaseOrderHandler) ApprovePurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.purchaseOrderService.ApprovePurchaseOrder(c.Request.Context(), id, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newPurchaseOrderResponse(order))
}

// CancelPurchaseOrder cancels an order that has not received any goods
func (h *PurchaseOrderHandler) CancelPurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	var req CancelPurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.purchaseOrderService.CancelPurchaseOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newPurchaseOrderResponse(order))
}

// GetPurchaseOrder returns one purchase order with its items
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.purchaseOrderService.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newPurchaseOrderResponse(order))
}

// ListPurchaseOrders returns a filtered page of purchase orders
func (h *PurchaseOrderHandler) ListPurchaseOrders(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}

	filter := listReq.ToFilter()
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if supplierID := c.Query("supplier_id"); supplierID != "" {
		filter.Filters["supplier_id"] = supplierID
	}
	if warehouseID := c.Query("warehouse_id"); warehouseID != "" {
		filter.Filters["warehouse_id"] = warehouseID
	}

	page, err := h.purchaseOrderService.ListPurchaseOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	orders := make([]PurchaseOrderResponse, len(page.Items))
	for i := range page.Items {
		orders[i] = newPurchaseOrderResponse(&page.Items[i])
	}

	h.SuccessWithMeta(c, orders, page.Total, page.Page, page.PageSize)
}
