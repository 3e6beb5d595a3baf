package middleware

import (
	"lincognito/internal/auth"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	headerRateLimit     = "X-RateLimit-Limit"
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRetryAfter    = "Retry-After"

	msgRateLimitExceeded = "rate limit exceeded"

	defaultIdleTTL = 10 * time.Minute
)

// RateLimiter keeps a token bucket per key. The middleware keys on the signed-in
// user, which is only known when it is mounted after RequireJWT, and on the
// client IP otherwise. Buckets idle for longer than idleTTL are dropped.
type RateLimiter struct {
	limiters  sync.Map // key -> *bucket
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		now:     time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := rl.now().UnixNano()
	rl.maybeSweep(now)

	v, ok := rl.limiters.Load(key)
	if !ok {
		v, _ = rl.limiters.LoadOrStore(key, &bucket{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	}
	b := v.(*bucket)
	b.lastSeen.Store(now)
	return b.limiter
}

// maybeSweep runs at most once per idleTTL, on whichever request gets there first.
func (rl *RateLimiter) maybeSweep(now int64) {
	last := rl.lastSweep.Load()
	if now-last < int64(rl.idleTTL) || !rl.lastSweep.CompareAndSwap(last, now) {
		return
	}
	rl.sweep(now)
}

func (rl *RateLimiter) sweep(now int64) {
	cutoff := now - int64(rl.idleTTL)
	rl.limiters.Range(func(key, v any) bool {
		if v.(*bucket).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Len reports how many buckets are currently tracked.
func (rl *RateLimiter) Len() int {
	n := 0
	rl.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(identityKey(c))
			limit := strconv.Itoa(rl.burst)

			if !limiter.Allow() {
				c.Response().Header().Set(headerRateLimit, limit)
				c.Response().Header().Set(headerRateRemaining, "0")
				c.Response().Header().Set(headerRetryAfter, "1")

				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": msgRateLimitExceeded,
				})
			}

			c.Response().Header().Set(headerRateLimit, limit)
			c.Response().Header().Set(headerRateRemaining, strconv.Itoa(int(limiter.Tokens())))

			return next(c)
		}
	}
}

func identityKey(c echo.Context) string {
	if userID, err := auth.GetUserID(c); err == nil {
		return "user:" + userID.String()
	}
	return "ip:" + c.RealIP()
}

// NewStrictRateLimiter guards login, signup and password reset.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(0.2, 5)
}

// NewGlobalRateLimiter is the lenient per-IP default for the whole API. It runs
// before authentication, so it never sees a user.
func NewGlobalRateLimiter() *RateLimiter {
	return NewRateLimiter(50, 100)
}

// NewUserRateLimiter is mounted behind RequireJWT and buckets per signed-in user.
func NewUserRateLimiter() *RateLimiter {
	return NewRateLimiter(20, 40)
}
