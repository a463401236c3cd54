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

// ReturnHandler exposes the purchase return lifecycle
type ReturnHandler struct {
	BaseHandler
	returnService *tradeapp.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returnService *tradeapp.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// RegisterRoutes registers purchase return routes
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	returns := rg.Group("/purchase-returns")
	{
		returns.POST("", h.CreateReturn)
		returns.GET("", h.ListReturns)
		returns.GET("/:id", h.GetReturn)
		returns.POST("/:id/confirm", h.ConfirmReturn)
		returns.POST("/:id/complete", h.CompleteReturn)
		returns.POST("/:id/cancel", h.CancelReturn)
	}
}

// CancelReturnRequest carries the reason for cancelling a return
type CancelReturnRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// ReturnItemResponse represents one returned line in API responses
type ReturnItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes,omitempty"`
}

// ReturnResponse represents a purchase return in API responses
type ReturnResponse struct {
	ID           uuid.UUID            `json:"id"`
	ReturnNumber string               `json:"return_number"`
	SupplierID   uuid.UUID            `json:"supplier_id"`
	WarehouseID  uuid.UUID            `json:"warehouse_id"`
	Status       string               `json:"status"`
	Reason       string               `json:"reason"`
	ConfirmedBy  *uuid.UUID           `json:"confirmed_by,omitempty"`
	ConfirmedAt  *time.Time           `json:"confirmed_at,omitempty"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
	Items        []ReturnItemResponse `json:"items"`
	CreatedAt    time.Time            `json:"created_at"`
	Version      int                  `json:"version"`
}

func newReturnResponse(ret *trade.PurchaseReturn) ReturnResponse {
	items := make([]ReturnItemResponse, len(ret.Items))
	for i := range ret.Items {
		item := &ret.Items[i]
		items[i] = ReturnItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Notes:     item.Notes,
		}
	}

	return ReturnResponse{
		ID:           ret.ID,
		ReturnNumber: ret.ReturnNumber,
		SupplierID:   ret.SupplierID,
		WarehouseID:  ret.WarehouseID,
		Status:       string(ret.Status),
		Reason:       ret.Reason,
		ConfirmedBy:  ret.ConfirmedBy,
		ConfirmedAt:  ret.ConfirmedAt,
		CompletedAt:  ret.CompletedAt,
		Items:        items,
		CreatedAt:    ret.CreatedAt,
		Version:      ret.Version,
	}
}

// CreateReturn creates a purchase return in PENDING status
func (h *ReturnHandler) CreateReturn(c *gin.Context) {
	var req tradeapp.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ret, err := h.returnService.CreateReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newReturnResponse(ret))
}

// ConfirmReturn confirms a pending return, deducting the returned stock
func (h *ReturnHandler) ConfirmReturn(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid return ID")
		return
	}

	ret, err := h.returnService.ConfirmReturn(c.Request.Context(), id, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newReturnResponse(ret))
}

// CompleteReturn marks a confirmed return as settled with the supplier
func (h *ReturnHandler) CompleteReturn(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid return ID")
		return
	}

	ret, err := h.returnService.CompleteReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newReturnResponse(ret))
}

// CancelReturn cancels a return, restoring stock if it was already confirmed
func (h *ReturnHandler) CancelReturn(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid return ID")
		return
	}

	var req CancelReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ret, err := h.returnService.CancelReturn(c.Request.Context(), id, getActorID(c), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newReturnResponse(ret))
}

// GetReturn returns one purchase return with its items
func (h *ReturnHandler) GetReturn(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid return ID")
		return
	}

	ret, err := h.returnService.GetReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newReturnResponse(ret))
}

// ListReturns returns a filtered page of purchase returns
func (h *ReturnHandler) ListReturns(c *gin.Context) {
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

	page, err := h.returnService.ListReturns(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	returns := make([]ReturnResponse, len(page.Items))
	for i := range page.Items {
		returns[i] = newReturnResponse(&page.Items[i])
	}

	h.SuccessWithMeta(c, returns, page.Total, page.Page, page.PageSize)
}
