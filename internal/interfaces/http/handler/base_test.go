package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/interfaces/http/dto"
	"github.com/feedlot/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set("request_id", "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set("X-Request-ID", "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set("request_id", "ctx-id")
				c.Request.Header.Set("X-Request-ID", "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext()
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext()
	h.Success(c, map[string]string{"key": "value"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)

	c, w = newTestContext()
	h.Created(c, map[string]string{"key": "value"})
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext()
	h.SuccessList(c, []string{"a", "b", "c"}, 3)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.Total)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"already exists", shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"concurrency conflict", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"no candidate pool", shared.ErrNoCandidatePool, http.StatusUnprocessableEntity, dto.ErrCodeNoCandidatePool},
		{"zero basis", shared.ErrZeroBasis, http.StatusUnprocessableEntity, dto.ErrCodeZeroBasis},
		{"already posted", shared.ErrAlreadyPosted, http.StatusConflict, dto.ErrCodeAlreadyPosted},
		{"already reconciled", shared.ErrAlreadyReconciled, http.StatusConflict, dto.ErrCodeAlreadyReconciled},
		{"direction mismatch", shared.ErrDirectionMismatch, http.StatusUnprocessableEntity, dto.ErrCodeDirectionMismatch},
		{"empty entity set", shared.ErrEmptyEntitySet, http.StatusUnprocessableEntity, dto.ErrCodeEmptyEntitySet},
		{"invalid transition", shared.ErrInvalidTransition, http.StatusUnprocessableEntity, dto.ErrCodeInvalidTransition},
		{"field level code", shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive"), http.StatusBadRequest, "INVALID_QUANTITY"},
		{"wrapped domain error", fmt.Errorf("commit: %w", shared.ErrAlreadyReconciled), http.StatusConflict, dto.ErrCodeAlreadyReconciled},
		{"plain error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext()
			c.Set("request_id", "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerHandleError_HidesInternalDetails(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, fmt.Errorf("pq: connection refused"))

	resp := decode(t, w)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	assert.Len(t, c.Errors, 1)
}

func TestBaseHandlerHandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
	assert.Empty(t, w.Body.String())
}

func TestBaseHandlerParamID(t *testing.T) {
	h := &BaseHandler{}
	id := uuid.New()

	c, _ := newTestContext()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, ok := h.ParamID(c, "id", "lot")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	c, w := newTestContext()
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	_, ok = h.ParamID(c, "id", "lot")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidationFormat, resp.Error.Code)
	assert.Equal(t, "Invalid lot ID", resp.Error.Message)
}

func TestBaseHandlerBindJSON_BodyTooLarge(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.Use(middleware.BodyLimit(16))
	r.POST("/lots", func(c *gin.Context) {
		var req struct {
			Code string `json:"code"`
		}
		if !h.BindJSON(c, &req) {
			return
		}
		h.Success(c, req.Code)
	})

	req := httptest.NewRequest(http.MethodPost, "/lots", strings.NewReader(`{"code":"`+strings.Repeat("L", 64)+`"}`))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, decode(t, w).Error.Code)
}
