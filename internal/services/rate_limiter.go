package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RecommendationRateLimiter bounds how often a user can request
// recommendations. When redis is available the count is shared across
// instances; otherwise a per-user token bucket covers the single process.
type RecommendationRateLimiter struct {
	cache     *CacheService
	maxPerMin int
	mu        sync.Mutex
	limiters  map[uint]*rate.Limiter
}

func NewRecommendationRateLimiter(cache *CacheService, maxPerMinute int) *RecommendationRateLimiter {
	return &RecommendationRateLimiter{
		cache:     cache,
		maxPerMin: maxPerMinute,
		limiters:  make(map[uint]*rate.Limiter),
	}
}

// Allow reports whether the user may issue another recommendation request.
func (rl *RecommendationRateLimiter) Allow(ctx context.Context, userID uint) bool {
	if rl.maxPerMin <= 0 {
		return true
	}

	count, err := rl.cache.Incr(ctx, RecommendationRateKey(userID), time.Minute)
	if err == nil && count > 0 {
		return count <= int64(rl.maxPerMin)
	}

	// Redis unavailable, fall back to in-process buckets.
	return rl.limiter(userID).Allow()
}

func (rl *RecommendationRateLimiter) limiter(userID uint) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[userID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(rl.maxPerMin)/60.0), rl.maxPerMin)
		rl.limiters[userID] = l
	}
	return l
}
