package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

// Feature: storefront, Property 59: Rate limiting blocks excessive requests
// Validates: per-IP fixed window on public routes
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	client, mr := newRedis(t)
	properties := gopter.NewProperties(nil)

	properties.Property("exactly the first limit requests in a window pass", prop.ForAll(
		func(limit int, excess int) bool {
			mr.FlushAll()
			handler := RateLimitMiddleware(client, RateLimitConfig{
				RequestsPerWindow: limit,
				Window:            time.Minute,
				KeyPrefix:         "rl",
			}, zap.NewNop())(okHandler())

			passed, blocked := 0, 0
			for i := 0; i < limit+excess; i++ {
				req := httptest.NewRequest("GET", "/api/categories", nil)
				// the port changes per connection and must not split the window
				req.RemoteAddr = "192.168.1.100:" + string(rune('0'+i%10)) + "000"
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				switch w.Code {
				case http.StatusOK:
					passed++
				case http.StatusTooManyRequests:
					blocked++
				}
			}

			return passed == limit && blocked == excess
		},
		gen.IntRange(5, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimitHeadersAndWindowExpiry(t *testing.T) {
	client, mr := newRedis(t)
	handler := RateLimitMiddleware(client, RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		KeyPrefix:         "rl",
	}, zap.NewNop())(okHandler())

	req := httptest.NewRequest("GET", "/api/faq", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, time.Minute, mr.TTL("rl:10.0.0.1"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	mr.FastForward(2 * time.Minute)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitExemptCallers(t *testing.T) {
	client, _ := newRedis(t)
	handler := RateLimitMiddleware(client, RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		KeyPrefix:         "rl",
		Exempt:            func(r *http.Request) bool { return r.Header.Get("Authorization") != "" },
	}, zap.NewNop())(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/api/products/1", nil)
		req.Header.Set("Authorization", "Bearer x")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	client, mr := newRedis(t)
	mr.Close()

	handler := RateLimitMiddleware(client, RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		KeyPrefix:         "rl",
	}, zap.NewNop())(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/faq", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
