package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// adjustmentInput mirrors the shape of the stock adjustment request DTO.
type adjustmentInput struct {
	WarehouseID string `json:"warehouse_id" binding:"required,uuid"`
	Reason      string `json:"reason" binding:"required,min=3,max=200"`
	Policy      string `json:"policy" binding:"omitempty,oneof=reject clamp"`
}

func newValidatedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	engine := gin.New()
	engine.POST("/api/v1/inventory/adjustments", func(c *gin.Context) {
		var req adjustmentInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(nil))
	})
	return engine
}

func postJSON(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/adjustments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationErrorRejectsBadRequest(t *testing.T) {
	engine := newValidatedEngine()

	w := postJSON(engine, `{"warehouse_id": "not-a-uuid", "reason": "x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.CodeValidationFailure, resp.Error.Code)
	assert.Equal(t, "Request validation failed", resp.Error.Message)
	require.Len(t, resp.Error.Details, 2)

	// Field names come from json tags, not Go struct fields
	fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
	assert.Contains(t, fields, "warehouse_id")
	assert.Contains(t, fields, "reason")
}

func TestHandleValidationErrorAcceptsValidRequest(t *testing.T) {
	engine := newValidatedEngine()

	w := postJSON(engine, `{
		"warehouse_id": "5e3f6f38-4b2a-43ef-9b3f-2f6f91d9b0aa",
		"reason": "cycle count variance",
		"policy": "clamp"
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandleValidationErrorMissingField(t *testing.T) {
	engine := newValidatedEngine()

	w := postJSON(engine, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILURE")
	assert.Contains(t, w.Body.String(), "This field is required")
}

func TestDescribeFieldError(t *testing.T) {
	type taggedInput struct {
		Required string `validate:"required"`
		UUID     string `validate:"uuid"`
		Min      string `validate:"min=5"`
		MaxQty   int    `validate:"max=10"`
		Len      string `validate:"len=5"`
		OneOf    string `validate:"oneof=reject clamp"`
		GTE      int    `validate:"gte=10"`
		LTE      int    `validate:"lte=100"`
		GT       int    `validate:"gt=0"`
		LT       int    `validate:"lt=1000"`
		Other    string `validate:"alpha"`
	}

	v := validator.New()
	err := v.Struct(taggedInput{
		UUID: "nope", Min: "ab", MaxQty: 99, Len: "ab",
		OneOf: "ignore", GTE: 1, LTE: 999, GT: -1, LT: 2000, Other: "123",
	})
	require.Error(t, err)

	want := map[string]string{
		"Required": "This field is required",
		"UUID":     "Invalid UUID format",
		"Min":      "Must be at least 5 characters",
		"MaxQty":   "Must be at most 10",
		"Len":      "Must be exactly 5 characters",
		"OneOf":    "Must be one of: reject clamp",
		"GTE":      "Must be greater than or equal to 10",
		"LTE":      "Must be less than or equal to 100",
		"GT":       "Must be greater than 0",
		"LT":       "Must be less than 1000",
		"Other":    "Invalid value",
	}

	fieldErrs := err.(validator.ValidationErrors)
	require.Len(t, fieldErrs, len(want))
	for _, fe := range fieldErrs {
		assert.Equal(t, want[fe.StructField()], describeFieldError(fe), "field %s", fe.StructField())
	}
}
