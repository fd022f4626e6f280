package usecase

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter allows each client maxRequests per window. Every client gets
// its own token bucket that starts full and refills evenly over the window.
type RateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*rate.Limiter
	now     func() time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Every(window / time.Duration(maxRequests)),
		burst:   maxRequests,
		clients: make(map[string]*rate.Limiter),
		now:     time.Now,
	}
}

// Allow reports whether clientID may make a request now and, if so,
// spends one token.
func (l *RateLimiter) Allow(clientID string) bool {
	l.mu.Lock()
	lim, ok := l.clients[clientID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.clients[clientID] = lim
	}
	l.mu.Unlock()

	return lim.AllowN(l.now(), 1)
}
