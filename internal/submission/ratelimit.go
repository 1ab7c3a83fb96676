package submission

import (
	"sync"
	"time"
)

// RateLimiter is a per-client sliding-window limiter. Entries are
// pruned on access, so the map stays bounded by the number of clients
// active inside one window.
type RateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	now     func() time.Time
	clients map[string][]time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		max:     maxRequests,
		window:  window,
		now:     time.Now,
		clients: map[string][]time.Time{},
	}
}

// SetClock overrides the clock, for tests.
func (l *RateLimiter) SetClock(now func() time.Time) { l.now = now }

// Allow records the request and reports whether the client is still
// inside its budget. A denied request is not recorded.
func (l *RateLimiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// Drop expired entries for every tracked client so the map stays
	// bounded by clients active inside the current window.
	for ip, times := range l.clients {
		if ip == clientIP {
			continue
		}
		if pruned := l.prune(times, cutoff); len(pruned) == 0 {
			delete(l.clients, ip)
		} else {
			l.clients[ip] = pruned
		}
	}

	recent := l.prune(l.clients[clientIP], cutoff)
	if len(recent) >= l.max {
		l.clients[clientIP] = recent
		return false
	}

	l.clients[clientIP] = append(recent, now)
	return true
}

func (l *RateLimiter) prune(times []time.Time, cutoff time.Time) []time.Time {
	recent := times[:0]
	for _, ts := range times {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	return recent
}

// Size reports how many clients currently hold window entries.
func (l *RateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
