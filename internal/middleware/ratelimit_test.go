package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainbin/internal/ratelimit"
)

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := ratelimit.NewLimiter()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "user-1")
		c.Next()
	})
	r.Use(RateLimitMiddleware(limiter, ratelimit.CategoryQuery))
	r.GET("/query", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// The query category allows 10 per minute.
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/query", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/query", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// Denials use the standard error envelope, not an ad-hoc shape.
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Domain  string `json:"domain"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
}
