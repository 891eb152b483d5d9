// Package ratelimit caps how many requests one client may send per minute.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter counts requests per client in fixed one-minute windows.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	now     func() time.Time

	lastSweep time.Time
}

type window struct {
	start    time.Time
	requests int
}

type Config struct {
	RequestsPerMinute int
	// Now defaults to time.Now.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 120}
}

func NewLimiter(config Config) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Limiter{
		clients: make(map[string]*window),
		limit:   config.RequestsPerMinute,
		now:     config.Now,
	}
}

// Allow reports whether client may send another request, and how long it
// has to wait otherwise.
func (rl *Limiter) Allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	w, ok := rl.clients[client]
	if !ok || now.Sub(w.start) >= time.Minute {
		rl.clients[client] = &window{start: now, requests: 1}
		return true, 0
	}
	if w.requests >= rl.limit {
		return false, w.start.Add(time.Minute).Sub(now)
	}
	w.requests++
	return true, 0
}

// sweep drops expired windows at most once a minute. Callers hold rl.mu.
func (rl *Limiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	rl.lastSweep = now
	for c, w := range rl.clients {
		if now.Sub(w.start) >= time.Minute {
			delete(rl.clients, c)
		}
	}
}

// ActiveClients returns the number of clients with an open window.
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Middleware rejects requests over the limit with 429 and Retry-After.
// onLimit, when set, is called for every rejection before the response is
// written and may write it itself by returning true.
func (rl *Limiter) Middleware(clientKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := rl.Allow(clientKey(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			secs := int(wait.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			if onLimit != nil && onLimit(w, r) {
				return
			}
			http.Error(w, "Zu viele Anfragen, bitte später erneut versuchen.", http.StatusTooManyRequests)
		})
	}
}

// RemoteAddr keys clients by the host part of r.RemoteAddr, so every
// connection from one host shares a window. chi's RealIP middleware, when
// installed, has already replaced it with the forwarded address.
func RemoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
