package httpapi

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	logx "einsatzplan/pkg/logx"
)

// ipLimiter hands out one token bucket per client IP. Buckets idle for
// more than an hour are dropped on the next sweep.
type ipLimiter struct {
	mu       sync.Mutex
	perMin   int
	buckets  map[string]*bucket
	lastSwep time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newIPLimiter(perMin int) *ipLimiter {
	return &ipLimiter{
		perMin:   perMin,
		buckets:  make(map[string]*bucket),
		lastSwep: time.Now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSwep) > time.Hour {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > time.Hour {
				delete(l.buckets, k)
			}
		}
		l.lastSwep = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.perMin)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.Allow()
}

// limited rejects over-limit requests with 429.
func (s *Server) limited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.allow(ip) {
			s.log.Warn("rate limited", logx.String("ip", ip), logx.String("path", r.URL.Path))
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
