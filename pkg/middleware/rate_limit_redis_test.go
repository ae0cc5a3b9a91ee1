package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedEngine(client *redis.Client, rps float64, burst int, window time.Duration) *gin.Engine {
	r := gin.New()
	r.POST("/api/chat", RedisRateLimitMiddleware(client, rps, burst, window), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func postChat(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	return w
}

func TestRedisRateLimit_RejectsOverWindowBudget(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	// budget of one request per 10s window
	r := newLimitedEngine(redis.NewClient(&redis.Options{Addr: m.Addr()}), 0, 1, 10*time.Second)

	require.Equal(t, http.StatusOK, postChat(r).Code)
	w := postChat(r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMIT")

	keys := m.Keys()
	require.Len(t, keys, 1)
	assert.Greater(t, m.TTL(keys[0]), time.Duration(0))
}

func TestRedisRateLimit_FailsOpenWhenRedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	m.Close()

	r := newLimitedEngine(client, 0, 1, time.Second)
	assert.Equal(t, http.StatusOK, postChat(r).Code)
	assert.Equal(t, http.StatusOK, postChat(r).Code)
}

func TestRedisRateLimit_NilClientUsesMemoryLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/fallback", RedisRateLimitMiddleware(nil, 100, 5, time.Second), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fallback", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
