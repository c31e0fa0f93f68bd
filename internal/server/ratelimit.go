package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10000
	clientIdleTTL     = 10 * time.Minute
)

// RateLimitMiddleware applies a token bucket per client IP. Exempt paths are
// never limited.
func RateLimitMiddleware(rps float64, burst int, exemptPaths []string) Middleware {
	buckets := newClientBuckets(rate.Limit(rps), burst)
	exempt := newPathSet(exemptPaths)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !exempt.has(r.URL.Path) && !buckets.allow(clientIP(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				RateLimited(w, "rate limit exceeded", r.URL.Path)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientBuckets holds one limiter per client. Idle clients are swept when
// the table fills up.
type clientBuckets struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*bucket
}

func newClientBuckets(limit rate.Limit, burst int) *clientBuckets {
	return &clientBuckets{limit: limit, burst: burst, clients: make(map[string]*bucket)}
}

func (c *clientBuckets) allow(client string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.clients[client]
	if !ok {
		if len(c.clients) >= maxTrackedClients {
			c.sweep(now)
		}
		b = &bucket{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// sweep drops clients idle for longer than clientIdleTTL. c.mu must be held.
func (c *clientBuckets) sweep(now time.Time) {
	for k, b := range c.clients {
		if now.Sub(b.lastSeen) > clientIdleTTL {
			delete(c.clients, k)
		}
	}
}

// clientIP prefers the first X-Forwarded-For hop, then the connection peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
