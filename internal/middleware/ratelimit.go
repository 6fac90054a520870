package middleware

import (
	"net/http"
	"sync"
	"time"
)

type clientWindow struct {
	requests int
	lastSeen time.Time
}

// RateLimiter caps requests per remote address inside a fixed window. Counts
// are in-memory only, so limits reset on restart.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}

	// Drop addresses that have gone quiet for a full window.
	go func() {
		for {
			time.Sleep(window)
			rl.mu.Lock()
			for addr, c := range rl.clients {
				if time.Since(c.lastSeen) > window {
					delete(rl.clients, addr)
				}
			}
			rl.mu.Unlock()
		}
	}()

	return rl
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := r.RemoteAddr

		rl.mu.Lock()
		c, ok := rl.clients[addr]
		if !ok || time.Since(c.lastSeen) > rl.window {
			rl.clients[addr] = &clientWindow{requests: 1, lastSeen: time.Now()}
			rl.mu.Unlock()
			next.ServeHTTP(w, r)
			return
		}

		c.requests++
		c.lastSeen = time.Now()
		over := c.requests > rl.limit
		rl.mu.Unlock()

		if over {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
