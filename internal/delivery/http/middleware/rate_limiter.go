package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	visitorIdleTTL  = 3 * time.Minute
	visitorSweepGap = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-IP token bucket of perMinute requests per minute
// with a burst of the same size. Idle clients are swept until ctx is done.
func RateLimiter(ctx context.Context, perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var mu sync.Mutex
	clients := make(map[string]*visitor)
	every := rate.Every(time.Minute / time.Duration(perMinute))

	go func() {
		ticker := time.NewTicker(visitorSweepGap)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				mu.Lock()
				for ip, v := range clients {
					if now.Sub(v.lastSeen) > visitorIdleTTL {
						delete(clients, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		v, ok := clients[ip]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(every, perMinute)}
			clients[ip] = v
		}
		v.lastSeen = now
		res := v.limiter.ReserveN(now, 1)
		delay := res.DelayFrom(now)
		if delay > 0 {
			res.CancelAt(now)
		}
		mu.Unlock()

		if delay > 0 {
			retry := int(math.Ceil(delay.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded. Maximum " + strconv.Itoa(perMinute) + " requests per minute.",
				"type":       "RATE_LIMIT_ERROR",
				"reason":     "REQUEST_RATE_EXCEEDED",
				"retryAfter": retry,
			})
			return
		}
		c.Next()
	}
}
