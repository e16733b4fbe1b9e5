package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/warp/leave-planner/config"
	"github.com/warp/leave-planner/store/memory"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("reuses caller ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	})

	t.Run("replaces missing or oversized ID", func(t *testing.T) {
		for _, incoming := range []string{"", strings.Repeat("x", requestIDMaxLen+1)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(requestIDHeader, incoming)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Len(t, seen, 36)
			assert.Equal(t, seen, rec.Header().Get(requestIDHeader))
		}
	})
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		h := RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/plans?x=1", nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)

	fields := entries[2].ContextMap()
	assert.EqualValues(t, 500, fields["status"])
	assert.Equal(t, "/api/plans", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestRateLimiter(t *testing.T) {
	// GIVEN: One request per second with a burst of two, on a frozen clock
	rl := NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 2})
	require.NotNil(t, rl)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Middleware(okHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":4242"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// WHEN: A client sends three requests at once
	// THEN: The third is rejected while another client is unaffected
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))

	// WHEN: A second passes
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))

	// WHEN: Both clients go idle
	now = now.Add(rl.IdleTimeout + time.Second)
	assert.Equal(t, 0, rl.Sweep())
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{})
	assert.Nil(t, rl)

	rec := httptest.NewRecorder()
	rl.Middleware(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rl.Start()
	rl.Stop()
}

func TestRateLimiter_StartStop(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RPS: 5, Burst: 5})
	rl.SweepInterval = time.Millisecond
	rl.Start()
	rl.Start()
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", clientIP(req), "forwarding headers are ignored")
}

func TestRouter_RateLimitKey(t *testing.T) {
	newRouter := func(trustProxy bool) http.Handler {
		rl := NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1})
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }
		h := NewHandler(memory.New(), nil, nil)
		return NewRouter(h, RouterOptions{Limiter: rl, TrustProxy: trustProxy})
	}
	send := func(router http.Handler, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/scenarios", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("direct clients cannot spoof their address", func(t *testing.T) {
		// GIVEN: A server without a trusted proxy
		router := newRouter(false)

		// WHEN: One peer rotates X-Forwarded-For between requests
		// THEN: It still shares one bucket
		assert.Equal(t, http.StatusOK, send(router, "203.0.113.1"))
		assert.Equal(t, http.StatusTooManyRequests, send(router, "203.0.113.2"))
	})

	t.Run("trusted proxy forwards client addresses", func(t *testing.T) {
		// GIVEN: A server behind a trusted proxy
		router := newRouter(true)

		// WHEN: The proxy forwards two different clients
		// THEN: Each gets its own bucket
		assert.Equal(t, http.StatusOK, send(router, "203.0.113.1"))
		assert.Equal(t, http.StatusOK, send(router, "203.0.113.2"))
		assert.Equal(t, http.StatusTooManyRequests, send(router, "203.0.113.1"))
	})
}
