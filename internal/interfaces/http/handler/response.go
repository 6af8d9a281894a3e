package handler

import "github.com/feedlot/backend/internal/interfaces/http/dto"

// APIResponse is dto.Response with a typed payload. Handlers write dto.Response;
// this form documents the payload shape and decodes it in clients and tests.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope of every failed request
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
