package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestCache(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	calls := 0

	r := gin.New()
	r.Use(FlushOnWrite(store))
	r.GET("/items", Cache(store, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/missing", Cache(store, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusNotFound, gin.H{"error": "nope"})
	})
	r.POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/fail", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	testCases := []struct {
		name          string
		method        string
		path          string
		expectedBody  string
		expectedCalls int
		expectedHit   bool
	}{
		{name: "First read is served", method: http.MethodGet, path: "/items", expectedBody: `{"calls":1}`, expectedCalls: 1},
		{name: "Second read is cached", method: http.MethodGet, path: "/items", expectedBody: `{"calls":1}`, expectedCalls: 1, expectedHit: true},
		{name: "Failed write keeps the cache", method: http.MethodPost, path: "/fail", expectedCalls: 1},
		{name: "Still cached", method: http.MethodGet, path: "/items", expectedBody: `{"calls":1}`, expectedCalls: 1, expectedHit: true},
		{name: "Successful write flushes", method: http.MethodPost, path: "/items", expectedCalls: 1},
		{name: "Read after write is fresh", method: http.MethodGet, path: "/items", expectedBody: `{"calls":2}`, expectedCalls: 2},
		{name: "Errors are not cached", method: http.MethodGet, path: "/missing", expectedBody: `{"error":"nope"}`, expectedCalls: 3},
		{name: "Errors are recomputed", method: http.MethodGet, path: "/missing", expectedBody: `{"error":"nope"}`, expectedCalls: 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, tc.method, tc.path)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, w.Body.String())
			}
			assert.Equal(t, tc.expectedCalls, calls)
			assert.Equal(t, tc.expectedHit, w.Header().Get("X-Cache") == "HIT")
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2, 0)
	r := gin.New()
	r.Use(RateLimiter(limiter), RequestLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/ping").Code)
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(rate.Limit(1), 1, time.Minute)
	limiter.now = func() time.Time { return now }

	first := limiter.GetLimiter("10.0.0.1")
	assert.Same(t, first, limiter.GetLimiter("10.0.0.1"))

	now = now.Add(30 * time.Second)
	limiter.GetLimiter("10.0.0.2")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, limiter.Sweep())
	assert.NotSame(t, first, limiter.GetLimiter("10.0.0.1"))
}
