package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const evictAfter = 10 * time.Minute

// RateLimitMiddleware applies a process-wide limit of rpm requests per
// minute across all clients. rpm must be positive; config.Load enforces it.
func RateLimitMiddleware(rpm int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(perMinute(rpm), rpm)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeStatus(w, http.StatusTooManyRequests, "e_too_many_requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitPerIP limits each client IP to rpm requests per minute. Idle
// entries are evicted on the request path, so the middleware needs no
// background goroutine and the map cannot grow without bound.
func RateLimitPerIP(rpm int) func(http.Handler) http.Handler {
	l := &ipLimiter{
		rpm:       rpm,
		clients:   make(map[string]*client),
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				writeStatus(w, http.StatusTooManyRequests, "e_too_many_requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	rpm       int
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > evictAfter {
		l.lastSweep = now
		for addr, c := range l.clients {
			if now.Sub(c.lastSeen) > evictAfter {
				delete(l.clients, addr)
			}
		}
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(perMinute(l.rpm), l.rpm)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.Allow()
}

func perMinute(rpm int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(rpm))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
