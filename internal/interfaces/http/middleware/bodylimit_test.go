package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// echoRouter reads the whole body and reports 413 itself when the reader trips the cap
func echoRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(limit))
	r.POST("/statements/import", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if IsBodyTooLarge(err) {
			AbortTooLarge(c)
			return
		}
		c.String(http.StatusOK, "%d", len(b))
	})
	r.GET("/lots", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int64
		body     string
		declared int64
		wantCode int
		wantBody string
	}{
		{"within limit", 64, "date;amount\n", 12, http.StatusOK, "12"},
		{"declared length over limit", 16, strings.Repeat("x", 40), 40, http.StatusRequestEntityTooLarge, "ERR_REQUEST_TOO_LARGE"},
		{"streamed body over limit", 16, strings.Repeat("x", 40), -1, http.StatusRequestEntityTooLarge, "ERR_REQUEST_TOO_LARGE"},
		{"streamed body within limit", 64, "abc", -1, http.StatusOK, "3"},
		{"limit disabled", 0, strings.Repeat("x", 4096), 4096, http.StatusOK, "4096"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/statements/import", strings.NewReader(tt.body))
			req.ContentLength = tt.declared
			w := httptest.NewRecorder()
			echoRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestBodyLimit_BodylessRequest(t *testing.T) {
	w := httptest.NewRecorder()
	echoRouter(1).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lots", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestIsBodyTooLarge(t *testing.T) {
	assert.True(t, IsBodyTooLarge(&http.MaxBytesError{Limit: 1}))
	assert.False(t, IsBodyTooLarge(io.ErrUnexpectedEOF))
	assert.False(t, IsBodyTooLarge(nil))
}
