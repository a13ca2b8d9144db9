package transport

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares right to left, so the first one listed sees the
// request first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// LimitBody caps the request body size. Oversized bodies surface as decode
// errors in the handlers.
func LimitBody(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limiterPair holds the per-second and per-minute limiters for one client.
type limiterPair struct {
	rps      *rate.Limiter
	rpm      *rate.Limiter
	lastSeen time.Time
}

func (p *limiterPair) allow() bool {
	if p.rps != nil && !p.rps.Allow() {
		return false
	}
	if p.rpm != nil && !p.rpm.Allow() {
		return false
	}
	return true
}

// Throttle limits requests per client address with an RPS and RPM limiter
// pair. A value of 0 disables the corresponding limit.
type Throttle struct {
	rps int
	rpm int

	mu      sync.Mutex
	clients map[string]*limiterPair
}

func NewThrottle(rps, rpm int) *Throttle {
	return &Throttle{
		rps:     rps,
		rpm:     rpm,
		clients: make(map[string]*limiterPair),
	}
}

func (t *Throttle) limiters(client string) *limiterPair {
	t.mu.Lock()
	defer t.mu.Unlock()

	pair, ok := t.clients[client]
	if !ok {
		pair = &limiterPair{}
		if t.rps > 0 {
			pair.rps = rate.NewLimiter(rate.Limit(t.rps), t.rps)
		}
		if t.rpm > 0 {
			pair.rpm = rate.NewLimiter(rate.Limit(t.rpm)/60.0, t.rpm)
		}
		t.clients[client] = pair
		t.prune()
	}
	pair.lastSeen = time.Now()
	return pair
}

// prune drops clients idle for over an hour. Called with t.mu held.
func (t *Throttle) prune() {
	cutoff := time.Now().Add(-time.Hour)
	for client, pair := range t.clients {
		if pair.lastSeen.Before(cutoff) {
			delete(t.clients, client)
		}
	}
}

// Middleware rejects requests exceeding the limits with 429.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.limiters(clientAddr(r)).allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs each request with its status and duration.
func RequestLogger(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			logger.Debug("Request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
