package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	invapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// CountHandler exposes the stock count lifecycle
type CountHandler struct {
	BaseHandler
	countService *invapp.CountService
}

// NewCountHandler creates a new CountHandler
func NewCountHandler(countService *invapp.CountService) *CountHandler {
	return &CountHandler{countService: countService}
}

// RegisterRoutes registers stock count routes
func (h *CountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	counts := rg.Group("/counts")
	{
		counts.POST("", h.CreateCount)
		counts.GET("", h.ListCounts)
		counts.GET("/:id", h.GetCount)
		counts.POST("/:id/initialize", h.InitializeItems)
		counts.PUT("/:id/items/:itemId", h.RecordCount)
		counts.POST("/:id/complete", h.CompleteCount)
		counts.POST("/:id/cancel", h.CancelCount)
	}
}

// CancelCountRequest carries the reason for abandoning a count
type CancelCountRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// CountItemResponse represents one count line in API responses
type CountItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	SystemQuantity int64      `json:"system_quantity"`
	ActualQuantity *int64     `json:"actual_quantity,omitempty"`
	Difference     int64      `json:"difference"`
	Counted        bool       `json:"counted"`
	Reason         string     `json:"reason,omitempty"`
	CountedBy      *uuid.UUID `json:"counted_by,omitempty"`
	CountedAt      *time.Time `json:"counted_at,omitempty"`
}

// CountResponse represents a stock count in API responses
type CountResponse struct {
	ID            uuid.UUID           `json:"id"`
	CountNumber   string              `json:"count_number"`
	WarehouseID   uuid.UUID           `json:"warehouse_id"`
	Status        string              `json:"status"`
	TotalItems    int                 `json:"total_items"`
	CountedItems  int                 `json:"counted_items"`
	TotalSurplus  int64               `json:"total_surplus"`
	TotalShortage int64               `json:"total_shortage"`
	Notes         string              `json:"notes,omitempty"`
	CreatedBy     *uuid.UUID          `json:"created_by,omitempty"`
	StartedAt     *time.Time          `json:"started_at,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	CompletedBy   *uuid.UUID          `json:"completed_by,omitempty"`
	Items         []CountItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Version       int                 `json:"version"`
}

func newCountResponse(count *inventory.StockCount) CountResponse {
	items := make([]CountItemResponse, len(count.Items))
	for i, item := range count.Items {
		items[i] = CountItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			SystemQuantity: item.SystemQuantity,
			ActualQuantity: item.ActualQuantity,
			Difference:     item.Difference,
			Counted:        item.Counted,
			Reason:         item.Reason,
			CountedBy:      item.CountedBy,
			CountedAt:      item.CountedAt,
		}
	}

	return CountResponse{
		ID:            count.ID,
		CountNumber:   count.CountNumber,
		WarehouseID:   count.WarehouseID,
		Status:        string(count.Status),
		TotalItems:    count.TotalItems,
		CountedItems:  count.CountedItems,
		TotalSurplus:  count.TotalSurplus,
		TotalShortage: count.TotalShortage,
		Notes:         count.Notes,
		CreatedBy:     count.CreatedBy,
		StartedAt:     count.StartedAt,
		CompletedAt:   count.CompletedAt,
		CompletedBy:   count.CompletedBy,
		Items:         items,
		CreatedAt:     count.CreatedAt,
		Version:       count.Version,
	}
}

// CreateCount opens a stock count for a warehouse
func (h *CountHandler) CreateCount(c *gin.Context) {
	var req invapp.CreateCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	count, err := h.countService.CreateCount(c.Request.Context(), req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newCountResponse(count))
}

// InitializeItems snapshots current balances into count items and starts counting
func (h *CountHandler) InitializeItems(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid count ID")
		return
	}

	count, err := h.countService.InitializeItems(c.Request.Context(), id, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newCountResponse(count))
}

// RecordCount records the physical quantity for one count item
func (h *CountHandler) RecordCount(c *gin.Context) {
	countID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid count ID")
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		h.BadRequest(c, "Invalid count item ID")
		return
	}

	var req invapp.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	count, err := h.countService.RecordCount(c.Request.Context(), countID, itemID, req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newCountResponse(count))
}

// CompleteCount applies all counted differences to the balances
func (h *CountHandler) CompleteCount(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid count ID")
		return
	}

	count, err := h.countService.CompleteCount(c.Request.Context(), id, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newCountResponse(count))
}

// CancelCount abandons a count without touching any balance
func (h *CountHandler) CancelCount(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid count ID")
		return
	}

	var req CancelCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	count, err := h.countService.CancelCount(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newCountResponse(count))
}

// GetCount returns one stock count with its items
func (h *CountHandler) GetCount(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid count ID")
		return
	}

	count, err := h.countService.GetCount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newCountResponse(count))
}

// ListCounts returns a filtered page of stock counts
func (h *CountHandler) ListCounts(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}

	filter := listReq.ToFilter()
	if warehouseID := c.Query("warehouse_id"); warehouseID != "" {
		filter.Filters["warehouse_id"] = warehouseID
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	page, err := h.countService.ListCounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	counts := make([]CountResponse, len(page.Items))
	for i := range page.Items {
		counts[i] = newCountResponse(&page.Items[i])
	}

	h.SuccessWithMeta(c, counts, page.Total, page.Page, page.PageSize)
}
