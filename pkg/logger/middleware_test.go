package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveWithLogger(t *testing.T, pre gin.HandlerFunc, req *http.Request) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := New(Config{Level: "info", JSON: true, Output: &buf})

	engine := gin.New()
	if pre != nil {
		engine.Use(pre)
	}
	engine.Use(Middleware(log))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return buf.String()
}

func TestMiddlewareUsesStoredRequestID(t *testing.T) {
	// An upstream middleware already resolved the id; log lines must carry
	// the same one, not a freshly minted uuid
	pre := func(c *gin.Context) {
		c.Set("requestID", "req-from-upstream")
		c.Next()
	}
	logged := serveWithLogger(t, pre, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Contains(t, logged, "req-from-upstream")
}

func TestMiddlewareFallsBackToHeaderRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-from-header")
	logged := serveWithLogger(t, nil, req)

	assert.Contains(t, logged, "req-from-header")
}
