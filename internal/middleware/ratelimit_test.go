package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/middleware"
)

func TestRateLimiterThrottlesPerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := middleware.NewRateLimiter(1)
	require.NotNil(t, rl)
	defer rl.Stop()

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client keeps its own budget.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, other)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	require.Nil(t, middleware.NewRateLimiter(0))
	require.Nil(t, middleware.NewRateLimiter(-1))
}

func TestRateLimiterStopIdempotent(t *testing.T) {
	rl := middleware.NewRateLimiter(10)
	require.NotNil(t, rl)

	rl.Stop()
	rl.Stop()

	var nilRL *middleware.RateLimiter
	nilRL.Stop()
}
