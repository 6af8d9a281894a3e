package handler

import (
	"errors"
	"net/http"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/infrastructure/logger"
	"github.com/feedlot/backend/internal/interfaces/http/dto"
	"github.com/feedlot/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(logger.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessList sends a complete list with its size
func (h *BaseHandler) SuccessList(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, total))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// InvalidParam answers 400 for a malformed path or query value
func (h *BaseHandler) InvalidParam(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindJSON decodes and validates the request body, answering 400 on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.AbortTooLarge(c)
			return false
		}
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery decodes and validates the query string, answering 400 on failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// ParamID parses a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) ParamID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.InvalidParam(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// HandleError converts domain errors to HTTP responses. Anything else is
// logged and answered with an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, getRequestID(c)))
		return
	}

	_ = c.Error(err)
	logger.FromContext(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}
