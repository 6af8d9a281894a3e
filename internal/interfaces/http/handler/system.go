package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/feedlot/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger checks a backing service such as the database or redis
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// Ping calls f
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]Pinger
}

// NewSystemHandler creates a new SystemHandler. checks are run by the
// readiness endpoint.
func NewSystemHandler(name, version string, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Feedlot Cost Engine"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.24.0"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// ReadyResponse lists the state of every backing service
type ReadyResponse struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Ready godoc
// @ID           readySystem
// @Summary      Readiness check
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[ReadyResponse]
// @Failure      503 {object} APIResponse[ReadyResponse]
// @Router       /system/ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := ReadyResponse{Ready: true, Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			resp.Ready = false
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	if !resp.Ready {
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}
