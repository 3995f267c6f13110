package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter keeps one token bucket per key (user id, client IP, phone number)
type KeyedLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	entryTTL time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Config holds configuration for the limiter
type Config struct {
	Requests int           // tokens refilled per Period
	Period   time.Duration // refill window
	Burst    int           // defaults to Requests
	EntryTTL time.Duration // how long to keep unused entries
}

// New creates a new keyed limiter
func New(cfg Config) *KeyedLimiter {
	if cfg.Requests < 1 {
		cfg.Requests = 1
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = cfg.Requests
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = 10 * time.Minute
	}

	return &KeyedLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(float64(cfg.Requests) / cfg.Period.Seconds()),
		burst:    cfg.Burst,
		entryTTL: cfg.EntryTTL,
		now:      time.Now,
	}
}

// Allow reports whether one more event for key may happen now
func (l *KeyedLimiter) Allow(key string) bool {
	return l.get(key).AllowN(l.now(), 1)
}

// Remaining returns the tokens left for key, rounded down
func (l *KeyedLimiter) Remaining(key string) int {
	return int(l.get(key).TokensAt(l.now()))
}

// Burst returns the bucket size
func (l *KeyedLimiter) Burst() int {
	return l.burst
}

func (l *KeyedLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(l.rate, l.burst)
	l.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// Cleanup removes entries that haven't been used recently
func (l *KeyedLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.entryTTL)
	for key, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

// Run cleans up stale entries every interval until stop is closed
func (l *KeyedLimiter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-stop:
			return
		}
	}
}

// Size returns the number of tracked keys
func (l *KeyedLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
