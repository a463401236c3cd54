package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	invapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/domain/inventory"
)

// StockHandler exposes balance queries, the movement ledger, safety stock
// settings and order reservations.
type StockHandler struct {
	BaseHandler
	stockService *invapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *invapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RegisterRoutes registers stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("/balances", h.ListWarehouseBalances)
		stock.GET("/balances/low", h.ListLowStock)
		stock.GET("/balances/:productId/:warehouseId", h.GetBalance)
		stock.PUT("/balances/:productId/:warehouseId/safety-stock", h.UpdateSafetyStock)
		stock.GET("/movements", h.SearchMovements)
		stock.POST("/reservations", h.ReserveStock)
		stock.POST("/reservations/release", h.ReleaseStock)
	}
}

// BalanceResponse represents a stock balance in API responses
type BalanceResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	WarehouseID       uuid.UUID `json:"warehouse_id"`
	Quantity          int64     `json:"quantity"`
	ReservedQuantity  int64     `json:"reserved_quantity"`
	AvailableQuantity int64     `json:"available_quantity"`
	SafetyStock       int64     `json:"safety_stock"`
	BelowSafetyStock  bool      `json:"below_safety_stock"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int       `json:"version"`
}

func newBalanceResponse(b *inventory.Balance) BalanceResponse {
	return BalanceResponse{
		ID:                b.ID,
		ProductID:         b.ProductID,
		WarehouseID:       b.WarehouseID,
		Quantity:          b.Quantity,
		ReservedQuantity:  b.ReservedQuantity,
		AvailableQuantity: b.AvailableQuantity(),
		SafetyStock:       b.SafetyStock,
		BelowSafetyStock:  b.IsBelowSafetyStock(),
		UpdatedAt:         b.UpdatedAt,
		Version:           b.Version,
	}
}

func newBalanceListResponse(balances []inventory.Balance) []BalanceResponse {
	out := make([]BalanceResponse, len(balances))
	for i := range balances {
		out[i] = newBalanceResponse(&balances[i])
	}
	return out
}

// MovementResponse represents a ledger movement in API responses
type MovementResponse struct {
	ID              uuid.UUID  `json:"id"`
	BalanceID       uuid.UUID  `json:"balance_id"`
	ProductID       uuid.UUID  `json:"product_id"`
	WarehouseID     uuid.UUID  `json:"warehouse_id"`
	Kind            string     `json:"kind"`
	Quantity        int64      `json:"quantity"`
	BeforeQuantity  int64      `json:"before_quantity"`
	AfterQuantity   int64      `json:"after_quantity"`
	ReferenceType   string     `json:"reference_type"`
	ReferenceNumber string     `json:"reference_number"`
	Notes           string     `json:"notes,omitempty"`
	ActorID         *uuid.UUID `json:"actor_id,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

func newMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		BalanceID:       m.BalanceID,
		ProductID:       m.ProductID,
		WarehouseID:     m.WarehouseID,
		Kind:            string(m.Kind),
		Quantity:        m.Quantity,
		BeforeQuantity:  m.BeforeQuantity,
		AfterQuantity:   m.AfterQuantity,
		ReferenceType:   m.ReferenceType,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		ActorID:         m.ActorID,
		OccurredAt:      m.OccurredAt,
	}
}

// GetBalance returns one product-warehouse balance
func (h *StockHandler) GetBalance(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	warehouseID, ok := parseUUIDParam(c, "warehouseId")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	balance, err := h.stockService.GetBalance(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newBalanceResponse(balance))
}

// ListWarehouseBalances returns all balances in a warehouse
func (h *StockHandler) ListWarehouseBalances(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		h.BadRequest(c, "warehouse_id query parameter is required")
		return
	}

	balances, err := h.stockService.ListWarehouseBalances(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newBalanceListResponse(balances))
}

// ListLowStock returns balances at or below their safety stock threshold
func (h *StockHandler) ListLowStock(c *gin.Context) {
	balances, err := h.stockService.ListLowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newBalanceListResponse(balances))
}

// SearchMovements returns a filtered page of the movement ledger
func (h *StockHandler) SearchMovements(c *gin.Context) {
	var req invapp.SearchMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid search parameters: "+err.Error())
		return
	}

	page, err := h.stockService.SearchMovements(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	movements := make([]MovementResponse, len(page.Items))
	for i := range page.Items {
		movements[i] = newMovementResponse(&page.Items[i])
	}

	h.SuccessWithMeta(c, movements, page.Total, page.Page, page.PageSize)
}

// UpdateSafetyStock sets the low-stock threshold for one balance
func (h *StockHandler) UpdateSafetyStock(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	warehouseID, ok := parseUUIDParam(c, "warehouseId")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	var req invapp.UpdateSafetyStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	balance, err := h.stockService.UpdateSafetyStock(c.Request.Context(), productID, warehouseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newBalanceResponse(balance))
}

// ReserveStock earmarks available stock for a pending order
func (h *StockHandler) ReserveStock(c *gin.Context) {
	var req invapp.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	balance, err := h.stockService.ReserveStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newBalanceResponse(balance))
}

// ReleaseStock returns a reservation to available stock
func (h *StockHandler) ReleaseStock(c *gin.Context) {
	var req invapp.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	balance, err := h.stockService.ReleaseStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newBalanceResponse(balance))
}
