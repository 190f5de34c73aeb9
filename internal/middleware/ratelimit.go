package middleware

import (
	"net/http"
	"sync"
	"time"

	"todos-app/backend/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a token-bucket limit per client IP. Stale buckets
// are swept on the configured interval so the map does not grow
// without bound.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*clientLimiter)
		lastSweep = time.Now()
	)

	limit := rate.Limit(float64(cfg.RequestsPerMin) / 60.0)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		// Piggyback the sweep on request handling; a background ticker
		// would outlive the engine.
		if time.Since(lastSweep) > cfg.CleanupInterval {
			for addr, client := range clients {
				if time.Since(client.lastSeen) > cfg.CleanupInterval {
					delete(clients, addr)
				}
			}
			lastSweep = time.Now()
		}

		client, exists := clients[ip]
		if !exists {
			client = &clientLimiter{limiter: rate.NewLimiter(limit, cfg.BurstSize)}
			clients[ip] = client
		}
		client.lastSeen = time.Now()
		allowed := client.limiter.Allow()
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please slow down.",
			})
			return
		}

		c.Next()
	}
}
