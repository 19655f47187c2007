package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/dto"
)

// ErrCodeRateLimited is returned when a client exceeds its request rate
const ErrCodeRateLimited = "ERR_RATE_LIMITED"

// RateLimiter keeps one token bucket per client key. Every list request can
// fan out to the ERP server, so a single client is not allowed to flood it.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*visitor
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests with the
// given burst per client.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		clients: make(map[string]*visitor),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether a request from key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.clients[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = v
	}
	v.lastSeen = now

	// Forget idle clients while we hold the lock anyway
	for k, other := range rl.clients {
		if now.Sub(other.lastSeen) > rl.idle {
			delete(rl.clients, k)
		}
	}
	return v.limiter.AllowN(now, 1)
}

// Middleware limits requests per client IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				ErrCodeRateLimited,
				"Too many requests, please slow down",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
