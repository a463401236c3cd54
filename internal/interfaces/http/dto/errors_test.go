package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{CodeNotFound, http.StatusNotFound},
		{CodeValidationFailure, http.StatusBadRequest},
		{CodeInvalidStateTransition, http.StatusUnprocessableEntity},
		{CodeInsufficientStock, http.StatusUnprocessableEntity},
		{CodeIncompleteCount, http.StatusUnprocessableEntity},
		{CodeConcurrencyConflict, http.StatusConflict},
		// Unknown codes fall back to 500
		{"SOMETHING_ELSE", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorCodeHTTPStatusCoverage(t *testing.T) {
	// Every domain code surfaced by the services must have a mapping so
	// handlers never fall back to 500 for an expected failure.
	domainCodes := []string{
		CodeNotFound,
		CodeValidationFailure,
		CodeInvalidStateTransition,
		CodeInsufficientStock,
		CodeIncompleteCount,
		CodeConcurrencyConflict,
	}

	for _, code := range domainCodes {
		t.Run(code, func(t *testing.T) {
			status, ok := ErrorCodeHTTPStatus[code]
			require.True(t, ok, "domain code %s has no HTTP status mapping", code)
			assert.GreaterOrEqual(t, status, 400)
			assert.Less(t, status, 500, "domain failures are client errors")
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(CodeNotFound, "Balance not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
	assert.Equal(t, "Balance not found", resp.Error.Message)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(CodeConcurrencyConflict, "Please retry", "req-123")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "quantity", Message: "must be greater than 0"},
		{Field: "warehouse_id", Message: "is required"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeValidationFailure, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(CodeInsufficientStock, "Insufficient stock", "req-1")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, CodeInsufficientStock, decoded.Error.Code)
	assert.Equal(t, "req-1", decoded.Error.RequestID)
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"name": "test"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		total         int64
		pageSize      int
		expectedPages int
	}{
		{100, 10, 10},
		{101, 10, 11},
		{0, 10, 0},
		{9, 10, 1},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta([]string{"a"}, tt.total, 1, tt.pageSize)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.total, resp.Meta.Total)
	}
}
