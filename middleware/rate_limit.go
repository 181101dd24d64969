package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/artontop/artontop/config"
	"github.com/artontop/artontop/utils"
)

const limiterIdle = 5 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one token bucket per client and route.
type limiterSet struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
}

func newLimiterSet(perMinute int) *limiterSet {
	if perMinute < 1 {
		perMinute = 1
	}
	return &limiterSet{
		visitors: map[string]*visitor{},
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
	}
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range s.visitors {
		if now.Sub(v.lastSeen) > limiterIdle {
			delete(s.visitors, k)
		}
	}
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.every, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimitMiddleware throttles register and login attempts per client IP and route,
// using the configured requests-per-minute budget.
func RateLimitMiddleware() gin.HandlerFunc {
	return RateLimit(config.Get().RateLimitPerMinute)
}

// RateLimit is RateLimitMiddleware with an explicit budget. Each call gets its own buckets.
func RateLimit(perMinute int) gin.HandlerFunc {
	set := newLimiterSet(perMinute)
	return func(ctx *gin.Context) {
		if set.allow(ctx.ClientIP()+" "+ctx.FullPath(), time.Now()) {
			ctx.Next()
			return
		}
		ctx.Header("Retry-After", "60")
		if utils.WantsJSON(ctx) {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
		} else {
			ctx.String(http.StatusTooManyRequests, "Too many attempts, try again later")
		}
		ctx.Abort()
	}
}
