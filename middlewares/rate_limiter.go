package middlewares

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeremiapane/drivethru-app/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows each client IP a burst of requests per window,
// refilled evenly across the window.
type RateLimiter struct {
	requests int
	window   time.Duration
	visitors map[string]*visitor
	mu       sync.Mutex
	now      func() time.Time
}

func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		requests: requests,
		window:   window,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// forget clients idle for more than a few windows
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > 3*rl.window {
			delete(rl.visitors, key)
		}
	}

	v, ok := rl.visitors[ip]
	if !ok {
		every := rl.window / time.Duration(rl.requests)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rl.requests)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Allow reports whether ip may proceed and, if not, how many seconds to wait.
func (rl *RateLimiter) Allow(ip string) (bool, int) {
	limiter := rl.limiterFor(ip)
	res := limiter.ReserveN(rl.now(), 1)
	if !res.OK() {
		return false, int(rl.window.Seconds())
	}
	delay := res.DelayFrom(rl.now())
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(rl.now())
	return false, int(math.Ceil(delay.Seconds()))
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.Allow(c.ClientIP())
		if !ok {
			utils.InfoLogger.WithField("client_ip", c.ClientIP()).Warn("Rate limit exceeded")
			_ = c.Error(utils.RateLimited(retryAfter))
			c.Abort()
			return
		}
		c.Next()
	}
}

// NewStrictRateLimiter guards the admin login with a shared budget of five
// attempts per minute.
func NewStrictRateLimiter() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(1*time.Minute/5), 5)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "60")
			utils.RespondJSON(c, http.StatusTooManyRequests, "Too many login attempts, please wait a moment", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
