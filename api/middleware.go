package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/warp/leave-planner/config"
)

// =============================================================================
// REQUEST ID
// =============================================================================

const (
	requestIDHeader = "X-Request-ID"

	// Longer incoming IDs are replaced to keep log lines bounded.
	requestIDMaxLen = 64
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID reuses the caller's X-Request-ID or generates a UUID, stores it
// in the request context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, rid)))
	})
}

// RequestIDFrom returns the request ID set by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}

// =============================================================================
// ACCESS LOG
// =============================================================================

// RequestLogger writes one zap entry per request. 5xx log at error level,
// 4xx at warn, the rest at info.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.Int("status", status),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.String("ip", clientIP(r)),
				zap.Duration("latency", time.Since(start)),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", RequestIDFrom(r.Context())),
			}

			switch {
			case status >= 500:
				log.Error("request failed", fields...)
			case status >= 400:
				log.Warn("client error", fields...)
			default:
				log.Info("request completed", fields...)
			}
		})
	}
}

// =============================================================================
// RATE LIMIT
// =============================================================================

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than IdleTimeout are dropped by the sweeper started with Start.
type RateLimiter struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration

	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns nil when cfg disables limiting; a nil limiter's
// middleware passes every request through.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	if cfg.RPS <= 0 {
		return nil
	}
	return &RateLimiter{
		IdleTimeout:   10 * time.Minute,
		SweepInterval: 5 * time.Minute,
		limit:         rate.Limit(cfg.RPS),
		burst:         cfg.Burst,
		clients:       make(map[string]*client),
		now:           time.Now,
	}
}

// Allow reports whether the client at ip may make a request now.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = rl.now()
	return c.limiter.AllowN(c.lastSeen, 1)
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the sweeper until Stop.
func (rl *RateLimiter) Start() {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.ticker != nil {
		return
	}

	rl.ticker = time.NewTicker(rl.SweepInterval)
	rl.stop = make(chan struct{})
	rl.wg.Add(1)
	go rl.run(rl.ticker, rl.stop)
}

// Stop halts the sweeper and waits for it to exit.
func (rl *RateLimiter) Stop() {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	ticker, stop := rl.ticker, rl.stop
	rl.ticker, rl.stop = nil, nil
	rl.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	rl.wg.Wait()
}

func (rl *RateLimiter) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rl.wg.Done()
	for {
		select {
		case <-ticker.C:
			rl.Sweep()
		case <-stop:
			return
		}
	}
}

// Sweep drops clients not seen within IdleTimeout and returns how many remain.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.IdleTimeout {
			delete(rl.clients, ip)
		}
	}
	return len(rl.clients)
}

// clientIP is the peer address. Forwarding headers only count once
// middleware.RealIP has copied them into RemoteAddr, which the router does
// behind a trusted proxy.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
