package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	numapp "github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/numbering"
)

// NumberingHandler exposes document numbering rule administration
type NumberingHandler struct {
	BaseHandler
	numberingService *numapp.Service
}

// NewNumberingHandler creates a new NumberingHandler
func NewNumberingHandler(numberingService *numapp.Service) *NumberingHandler {
	return &NumberingHandler{numberingService: numberingService}
}

// RegisterRoutes registers numbering rule routes
func (h *NumberingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rules := rg.Group("/numbering-rules")
	{
		rules.GET("", h.ListRules)
		rules.GET("/:id", h.GetRule)
		rules.POST("", h.CreateRule)
		rules.PUT("/:id", h.UpdateRule)
	}
}

// NumberingRuleResponse represents a numbering rule in API responses
type NumberingRuleResponse struct {
	ID              uuid.UUID  `json:"id"`
	DocumentType    string     `json:"document_type"`
	Prefix          string     `json:"prefix"`
	DateFormat      string     `json:"date_format,omitempty"`
	SequenceLength  int        `json:"sequence_length"`
	ResetPeriod     string     `json:"reset_period"`
	CurrentSequence int64      `json:"current_sequence"`
	LastIssuedAt    *time.Time `json:"last_issued_at,omitempty"`
	Active          bool       `json:"active"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Version         int        `json:"version"`
}

func newNumberingRuleResponse(rule *numbering.NumberingRule) NumberingRuleResponse {
	return NumberingRuleResponse{
		ID:              rule.ID,
		DocumentType:    rule.DocumentType,
		Prefix:          rule.Prefix,
		DateFormat:      rule.DateFormat,
		SequenceLength:  rule.SequenceLength,
		ResetPeriod:     string(rule.ResetPeriod),
		CurrentSequence: rule.CurrentSequence,
		LastIssuedAt:    rule.LastIssuedAt,
		Active:          rule.Active,
		UpdatedAt:       rule.UpdatedAt,
		Version:         rule.Version,
	}
}

// ListRules returns all numbering rules
func (h *NumberingHandler) ListRules(c *gin.Context) {
	rules, err := h.numberingService.ListRules(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]NumberingRuleResponse, len(rules))
	for i := range rules {
		out[i] = newNumberingRuleResponse(&rules[i])
	}

	h.Success(c, out)
}

// GetRule returns one numbering rule
func (h *NumberingHandler) GetRule(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	rule, err := h.numberingService.GetRule(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newNumberingRuleResponse(rule))
}

// CreateRule creates a numbering rule for a document type
func (h *NumberingHandler) CreateRule(c *gin.Context) {
	var req numapp.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rule, err := h.numberingService.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newNumberingRuleResponse(rule))
}

// UpdateRule changes a rule's formatting settings. The document type and
// the current sequence cannot be changed through this endpoint.
func (h *NumberingHandler) UpdateRule(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	var req numapp.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rule, err := h.numberingService.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newNumberingRuleResponse(rule))
}
