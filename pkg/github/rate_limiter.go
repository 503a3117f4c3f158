package github

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// RequestLimiter bounds concurrent GitHub API calls and tracks the rate limit
// quota reported by the API. It never delays a request based on quota.
type RequestLimiter interface {
	// Acquire blocks until a request slot is free or ctx is done
	Acquire(ctx context.Context) error

	// Release returns a slot obtained with Acquire
	Release()

	// UpdateLimits records the quota reported by the latest response
	UpdateLimits(remaining int, reset time.Time)

	// GetStats returns current limiter statistics
	GetStats() RateLimiterStats
}

// RateLimiterStats provides statistics about API usage during a run
type RateLimiterStats struct {
	RemainingRequests int       `json:"remaining_requests"`
	ResetTime         time.Time `json:"reset_time"`
	InFlight          int       `json:"in_flight"`
	PeakInFlight      int       `json:"peak_in_flight"`
	MaxInFlight       int       `json:"max_in_flight"`
	TotalRequests     int64     `json:"total_requests"`
}

// QuotaKnown reports whether any response has carried rate limit headers yet
func (s RateLimiterStats) QuotaKnown() bool {
	return s.RemainingRequests >= 0
}

// RateLimiterConfig configures the request limiter
type RateLimiterConfig struct {
	// MaxInFlight is the maximum number of concurrent API calls
	MaxInFlight int

	// MinRemainingRequests is the quota below which a warning is logged
	MinRemainingRequests int
}

// DefaultRateLimiterConfig returns a default request limiter configuration
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		MaxInFlight:          20,
		MinRemainingRequests: 100,
	}
}

type requestLimiter struct {
	config *RateLimiterConfig
	logger *zap.Logger
	sem    *semaphore.Weighted

	mu     sync.Mutex
	stats  RateLimiterStats
	warned bool
}

// NewRequestLimiter creates a limiter shared by every call of one client
func NewRequestLimiter(config *RateLimiterConfig, logger *zap.Logger) RequestLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &requestLimiter{
		config: config,
		logger: logger,
		sem:    semaphore.NewWeighted(int64(config.MaxInFlight)),
		stats: RateLimiterStats{
			RemainingRequests: -1,
			MaxInFlight:       config.MaxInFlight,
		},
	}
}

// Acquire blocks until a request slot is free or ctx is done
func (rl *requestLimiter) Acquire(ctx context.Context) error {
	if err := rl.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	rl.mu.Lock()
	rl.stats.InFlight++
	rl.stats.TotalRequests++
	if rl.stats.InFlight > rl.stats.PeakInFlight {
		rl.stats.PeakInFlight = rl.stats.InFlight
	}
	rl.mu.Unlock()
	return nil
}

// Release returns a slot obtained with Acquire
func (rl *requestLimiter) Release() {
	rl.mu.Lock()
	rl.stats.InFlight--
	rl.mu.Unlock()
	rl.sem.Release(1)
}

// UpdateLimits records the quota reported by the latest response
func (rl *requestLimiter) UpdateLimits(remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.stats.RemainingRequests = remaining
	rl.stats.ResetTime = reset

	if remaining < rl.config.MinRemainingRequests && !rl.warned {
		rl.warned = true
		rl.logger.Warn("GitHub API rate limit nearly exhausted",
			zap.Int("remaining", remaining),
			zap.Time("reset", reset))
	}
}

// GetStats returns current limiter statistics
func (rl *requestLimiter) GetStats() RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.stats
}
