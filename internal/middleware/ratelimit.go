package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewIPRateLimiter returns a limiter refilling at limit events per second with
// room for burst requests.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   burst,
	}
}

// AuthRateLimiter returns a limiter for login and signup: perMinute requests
// per minute per IP, with a burst of a third of that (at least 1).
func AuthRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return NewIPRateLimiter(rate.Limit(float64(perMinute)/60.0), max(perMinute/3, 1))
}

func (l *IPRateLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[ip]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[ip] = b
	}
	return b
}

// clientIP is the host part of RemoteAddr. Proxy headers are applied upstream
// by chi's RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfter is the whole seconds until the bucket holds a token again.
func (l *IPRateLimiter) retryAfter() string {
	if l.limit <= 0 {
		return "60"
	}
	wait := time.Duration(float64(time.Second) / float64(l.limit))
	return strconv.Itoa(max(int(wait.Round(time.Second).Seconds()), 1))
}

// Middleware answers 429 once the client's bucket is empty.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.bucket(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", l.retryAfter())
			http.Error(w, "Too many attempts, try again shortly", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
