package transport

import (
	"encoding/json"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// rpcRateLimited is a server-defined JSON-RPC error code (outside the
// method-level codes in spec §7, which has no slot for transport-level
// throttling).
const rpcRateLimited = -32029

// rateLimiter throttles the HTTP transport per client (by Mcp-Session-Id
// when present, otherwise by remote address), one token bucket per key.
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	return &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (r *rateLimiter) allow(key string) bool {
	if r.limit <= 0 {
		return true
	}
	r.mu.Lock()
	l, ok := r.limiters[key]
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
		r.limiters[key] = l
	}
	r.mu.Unlock()
	return l.Allow()
}

// withRateLimit wraps an MCP endpoint handler, rejecting requests over the
// configured rate with a JSON-RPC error envelope rather than a bare HTTP
// status, since MCP clients expect a JSON-RPC body on every response.
func (h *HTTPServer) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Mcp-Session-Id")
		if key == "" {
			key = r.RemoteAddr
		}
		if !h.limiter.allow(key) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0",
				"error": map[string]interface{}{
					"code":    rpcRateLimited,
					"message": "rate limit exceeded",
				},
				"id": nil,
			})
			return
		}
		next(w, r)
	}
}
