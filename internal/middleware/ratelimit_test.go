package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ---------------------------------------------------------------------------
// MemoryLimiter
// ---------------------------------------------------------------------------

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, rpm, burst int) (*MemoryLimiter, *fakeClock) {
	t.Helper()
	rl := NewMemoryLimiter(RateLimitConfig{
		RequestsPerMinute: rpm,
		BurstSize:         burst,
		CleanupInterval:   time.Hour,
	})
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl.now = clock.now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func mustAllow(t *testing.T, l Limiter, key string) Decision {
	t.Helper()
	d, err := l.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("Allow(%q): %v", key, err)
	}
	return d
}

func TestMemoryLimiter_AllowsBurstThenRejects(t *testing.T) {
	rl, _ := newTestLimiter(t, 60, 3)

	for i := 0; i < 3; i++ {
		d := mustAllow(t, rl, "client")
		if !d.Allowed {
			t.Fatalf("request %d rejected within burst", i+1)
		}
		if d.Remaining != 2-i {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, d.Remaining, 2-i)
		}
	}

	d := mustAllow(t, rl, "client")
	if d.Allowed {
		t.Fatal("request beyond burst was allowed")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Second {
		t.Errorf("RetryAfter = %v, want within (0, 1s] at 1 req/s", d.RetryAfter)
	}
}

func TestMemoryLimiter_RefillsOverTime(t *testing.T) {
	rl, clock := newTestLimiter(t, 60, 1)

	if !mustAllow(t, rl, "client").Allowed {
		t.Fatal("first request rejected")
	}
	if mustAllow(t, rl, "client").Allowed {
		t.Fatal("second immediate request allowed")
	}

	clock.advance(time.Second)
	if !mustAllow(t, rl, "client").Allowed {
		t.Error("request after refill interval rejected")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(t, 60, 1)

	mustAllow(t, rl, "a")
	if !mustAllow(t, rl, "b").Allowed {
		t.Error("client b limited by client a's usage")
	}
}

func TestMemoryLimiter_ZeroBurstStillAllowsOne(t *testing.T) {
	rl, _ := newTestLimiter(t, 60, 0)
	if !mustAllow(t, rl, "client").Allowed {
		t.Error("first request rejected with zero burst")
	}
}

// ---------------------------------------------------------------------------
// RateLimitMiddleware
// ---------------------------------------------------------------------------

type stubLimiter struct {
	decision Decision
	err      error
	keys     []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (Decision, error) {
	s.keys = append(s.keys, key)
	return s.decision, s.err
}

func newRateLimitRouter(l Limiter) *gin.Engine {
	r := gin.New()
	r.Use(RateLimitMiddleware(l, "memory"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitMiddleware_AllowedSetsHeaders(t *testing.T) {
	l := &stubLimiter{decision: Decision{Allowed: true, Limit: 120, Remaining: 7}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	w := httptest.NewRecorder()
	newRateLimitRouter(l).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "120" {
		t.Errorf("X-RateLimit-Limit = %q, want 120", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "7" {
		t.Errorf("X-RateLimit-Remaining = %q, want 7", got)
	}
	if len(l.keys) != 1 || l.keys[0] != "ip:203.0.113.9" {
		t.Errorf("keys = %v, want [ip:203.0.113.9]", l.keys)
	}
}

func TestRateLimitMiddleware_Rejected(t *testing.T) {
	l := &stubLimiter{decision: Decision{Allowed: false, Limit: 60, RetryAfter: 1500 * time.Millisecond}}
	w := serve(newRateLimitRouter(l), http.MethodGet, "/")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
}

func TestRateLimitMiddleware_FailsOpenOnLimiterError(t *testing.T) {
	l := &stubLimiter{err: errors.New("redis down")}
	w := serve(newRateLimitRouter(l), http.MethodGet, "/")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when limiter errors", w.Code)
	}
}

func TestRateLimitMiddleware_MemoryLimiterEndToEnd(t *testing.T) {
	rl, _ := newTestLimiter(t, 60, 2)
	r := newRateLimitRouter(rl)

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, http.MethodGet, "/").Code)
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status = %d, want %d", i+1, codes[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// RedisLimiter
// ---------------------------------------------------------------------------

func TestRedisLimiter_UnreachableReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	l := NewRedisLimiter(client, RateLimitConfig{RequestsPerMinute: 60, BurstSize: 5}, "test")
	if _, err := l.Allow(context.Background(), "ip:1.2.3.4"); err == nil {
		t.Error("expected error from unreachable redis")
	}
}

func TestRedisLimiter_AllowsBurstThenRejects(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 200 * time.Millisecond})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}

	l := NewRedisLimiter(client, RateLimitConfig{RequestsPerMinute: 60, BurstSize: 2}, "publink-test-"+uuid.NewString())
	key := "ip:198.51.100.1"

	for i := 0; i < 2; i++ {
		if !mustAllow(t, l, key).Allowed {
			t.Fatalf("request %d rejected within burst", i+1)
		}
	}
	d := mustAllow(t, l, key)
	if d.Allowed {
		t.Error("request beyond burst was allowed")
	}
	if d.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", d.RetryAfter)
	}
	if d.Limit != 60 {
		t.Errorf("Limit = %d, want 60", d.Limit)
	}
}
