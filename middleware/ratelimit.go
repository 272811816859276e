package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a host's limiter is kept after its last request.
const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-IP rate limiting. Limiters idle for longer than
// limiterIdleTTL are swept, so the map holds only recently active hosts.
type RateLimiter struct {
	visitors  map[string]*visitor
	mu        sync.Mutex
	r         rate.Limit
	b         int
	now       func() time.Time
	lastSweep time.Time
}

// NewRateLimiter creates a new rate limiter. A non-positive rate disables limiting.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		r:        rate.Limit(requestsPerSecond),
		b:        burst,
		now:      time.Now,
	}
}

// getLimiter returns the rate limiter for a given IP
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= limiterIdleTTL {
		rl.sweepLocked(now)
	}

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.r, rl.b)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= limiterIdleTTL {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

// Limit is a middleware that rate limits requests
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.r <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if !rl.getLimiter(ip).Allow() {
			log.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("Rate limit exceeded")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Rate limit exceeded. Please try again later."}` + "\n"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port so every connection from one host shares a limiter.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
