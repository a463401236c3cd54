package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	invapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// AdjustmentHandler exposes stock adjustment endpoints
type AdjustmentHandler struct {
	BaseHandler
	adjustmentService *invapp.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(adjustmentService *invapp.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: adjustmentService}
}

// RegisterRoutes registers adjustment routes
func (h *AdjustmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	adjustments := rg.Group("/adjustments")
	{
		adjustments.POST("", h.CreateAdjustment)
		adjustments.GET("", h.ListAdjustments)
		adjustments.GET("/:id", h.GetAdjustment)
	}
}

// AdjustmentItemResponse represents one adjusted line in API responses
type AdjustmentItemResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	BeforeQuantity int64     `json:"before_quantity"`
	AfterQuantity  int64     `json:"after_quantity"`
	Difference     int64     `json:"difference"`
	Notes          string    `json:"notes,omitempty"`
}

// AdjustmentResponse represents a stock adjustment in API responses
type AdjustmentResponse struct {
	ID               uuid.UUID                `json:"id"`
	AdjustmentNumber string                   `json:"adjustment_number"`
	WarehouseID      uuid.UUID                `json:"warehouse_id"`
	Reason           string                   `json:"reason"`
	ActorID          *uuid.UUID               `json:"actor_id,omitempty"`
	Items            []AdjustmentItemResponse `json:"items"`
	CreatedAt        time.Time                `json:"created_at"`
}

func newAdjustmentResponse(adj *inventory.StockAdjustment) AdjustmentResponse {
	items := make([]AdjustmentItemResponse, len(adj.Items))
	for i, item := range adj.Items {
		items[i] = AdjustmentItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			BeforeQuantity: item.BeforeQuantity,
			AfterQuantity:  item.AfterQuantity,
			Difference:     item.AfterQuantity - item.BeforeQuantity,
			Notes:          item.Notes,
		}
	}

	return AdjustmentResponse{
		ID:               adj.ID,
		AdjustmentNumber: adj.AdjustmentNumber,
		WarehouseID:      adj.WarehouseID,
		Reason:           adj.Reason,
		ActorID:          adj.ActorID,
		Items:            items,
		CreatedAt:        adj.CreatedAt,
	}
}

// CreateAdjustment re-bases balances to the supplied target quantities
func (h *AdjustmentHandler) CreateAdjustment(c *gin.Context) {
	var req invapp.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	adjustment, err := h.adjustmentService.CreateAdjustment(c.Request.Context(), req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newAdjustmentResponse(adjustment))
}

// GetAdjustment returns one adjustment with its items
func (h *AdjustmentHandler) GetAdjustment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid adjustment ID")
		return
	}

	adjustment, err := h.adjustmentService.GetAdjustment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newAdjustmentResponse(adjustment))
}

// ListAdjustments returns a filtered page of adjustments
func (h *AdjustmentHandler) ListAdjustments(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}

	filter := listReq.ToFilter()
	if warehouseID := c.Query("warehouse_id"); warehouseID != "" {
		filter.Filters["warehouse_id"] = warehouseID
	}

	page, err := h.adjustmentService.ListAdjustments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	adjustments := make([]AdjustmentResponse, len(page.Items))
	for i := range page.Items {
		adjustments[i] = newAdjustmentResponse(&page.Items[i])
	}

	h.SuccessWithMeta(c, adjustments, page.Total, page.Page, page.PageSize)
}
