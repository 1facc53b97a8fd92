package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeTenantHeader, http.StatusBadRequest},
		{ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyPosted, http.StatusUnprocessableEntity},
		{ErrCodeNotPosted, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyReversed, http.StatusUnprocessableEntity},
		{ErrCodeUnbalanced, http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		domain   *shared.DomainError
		expected string
		status   int
	}{
		{shared.ErrValidation, ErrCodeValidation, http.StatusBadRequest},
		{shared.ErrNotFound, ErrCodeNotFound, http.StatusNotFound},
		{shared.ErrInsufficientStock, ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{shared.ErrAlreadyPosted, ErrCodeAlreadyPosted, http.StatusUnprocessableEntity},
		{shared.ErrUnbalanced, ErrCodeUnbalanced, http.StatusUnprocessableEntity},
		{shared.ErrAlreadyReversed, ErrCodeAlreadyReversed, http.StatusUnprocessableEntity},
		{shared.ErrNotPosted, ErrCodeNotPosted, http.StatusUnprocessableEntity},
		{shared.ErrInvalidState, ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{shared.ErrConcurrencyConflict, ErrCodeConcurrencyConflict, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.domain.Code, func(t *testing.T) {
			code := NormalizeErrorCode(tt.domain.Code)
			assert.Equal(t, tt.expected, code)
			assert.Equal(t, tt.status, GetHTTPStatus(code))
		})
	}

	assert.Equal(t, "SOMETHING_ELSE", NormalizeErrorCode("SOMETHING_ELSE"))
}

func TestErrorResponses(t *testing.T) {
	t.Run("with request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "document not found", "req-1")
		data, err := json.Marshal(resp)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(data, &body))
		assert.Equal(t, false, body["success"])
		assert.NotContains(t, body, "data")
		errBody := body["error"].(map[string]any)
		assert.Equal(t, ErrCodeNotFound, errBody["code"])
		assert.Equal(t, "req-1", errBody["request_id"])
	})

	t.Run("validation details", func(t *testing.T) {
		resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{
			{Field: "lines", Message: "is required"},
		})
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		assert.Len(t, resp.Error.Details, 1)
		assert.Empty(t, resp.Error.RequestID)
	})
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 45, 2, 20)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse(shared.NewPaginated[string](nil, 0, 1, 20))
	assert.Equal(t, []string{}, resp.Data)
	assert.Equal(t, int64(0), resp.Meta.Total)

	resp = NewPageResponse(shared.NewPaginated([]string{"a"}, 21, 2, 20))
	assert.Equal(t, []string{"a"}, resp.Data)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}

func TestListRequest_ToFilter(t *testing.T) {
	f := ListRequest{}.ToFilter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)

	f = ListRequest{Page: 3, PageSize: 50, OrderDir: "asc", IncludeDeleted: true}.ToFilter()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 50, f.PageSize)
	assert.Equal(t, "asc", f.OrderDir)
	assert.True(t, f.IncludeDeleted)
}
