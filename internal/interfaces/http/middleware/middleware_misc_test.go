package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"observer-console.backend/internal/infrastructure/metrics"
	"observer-console.backend/pkg/logger"
)

func TestResponseWriter_Write(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	w := responseWriter{
		ResponseWriter: c.Writer,
		body:           &bytes.Buffer{},
	}

	n, err := w.Write([]byte("ok"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "ok", w.body.String())
	require.Equal(t, "ok", rec.Body.String())
}

func TestRequestIDMiddleware_GeneratesAndUsesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("generates request id when header missing", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestIDMiddleware())
		r.GET("/x", func(c *gin.Context) {
			id, ok := c.Get(RequestIDKey)
			require.True(t, ok)
			require.NotEmpty(t, id.(string))
			require.Equal(t, id, c.Request.Context().Value(logger.RequestIDKey))
			c.Status(http.StatusNoContent)
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	})

	t.Run("uses provided request id header", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestIDMiddleware())
		r.GET("/x", func(c *gin.Context) {
			require.Equal(t, "req-123", c.Request.Context().Value(logger.RequestIDKey))
			c.Status(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestLoggerMiddleware_RecordsDuration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	r := gin.New()
	r.Use(LoggerMiddleware())
	r.GET("/logged", func(c *gin.Context) {
		c.String(http.StatusCreated, "created")
	})

	before := testutil.CollectAndCount(metrics.RequestDuration)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logged?foo=bar", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.GreaterOrEqual(t, testutil.CollectAndCount(metrics.RequestDuration), before)
	require.Greater(t, testutil.CollectAndCount(metrics.RequestDuration), 0)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	preflight := func(origins []string, origin string) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(CORSMiddleware(origins))
		r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight([]string{"https://console.example.org"}, "https://console.example.org")
	require.Equal(t, "https://console.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight([]string{"https://console.example.org"}, "https://evil.example.com")
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight(nil, "https://anywhere.example.com")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
