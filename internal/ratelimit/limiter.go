// Package ratelimit provides per-IP token-bucket rate limiting for the
// recommendation endpoint. Buckets live in memory and are swept
// periodically so idle clients do not leak limiters.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config tunes the limiter: how many requests each IP gets per period.
type Config struct {
	RequestsPerPeriod int
	Period            time.Duration
	Burst             int
}

// DefaultConfig allows 30 requests per minute with a small burst.
func DefaultConfig() Config {
	return Config{
		RequestsPerPeriod: 30,
		Period:            time.Minute,
		Burst:             5,
	}
}

// Result reports one rate-limit decision.
type Result struct {
	Allowed    bool
	Limit      int
	RetryAfter time.Duration
}

// Limiter hands out a token bucket per client key.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	cfg      Config
}

// New builds a limiter and starts its cleanup loop.
func New(cfg Config) *Limiter {
	l := &Limiter{
		limiters: make(map[string]*rate.Limiter),
		cfg:      cfg,
	}
	go l.cleanup()
	return l
}

// Allow consumes one token for the key, creating its bucket on first
// sight.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		rps := rate.Limit(float64(l.cfg.RequestsPerPeriod) / l.cfg.Period.Seconds())
		limiter = rate.NewLimiter(rps, l.cfg.Burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	if limiter.Allow() {
		return Result{Allowed: true, Limit: l.cfg.RequestsPerPeriod}
	}

	return Result{
		Allowed:    false,
		Limit:      l.cfg.RequestsPerPeriod,
		RetryAfter: l.cfg.Period / time.Duration(l.cfg.RequestsPerPeriod),
	}
}

// Size returns the number of live buckets.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// cleanup drops all buckets every hour. Coarse, but bounded memory.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		l.limiters = make(map[string]*rate.Limiter)
		l.mu.Unlock()
	}
}
