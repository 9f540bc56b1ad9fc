package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"varto-api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per key (phone number or client IP)
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	logger   *logrus.Logger
}

// NewPerMinuteLimiter allows perMinute requests per key, all of them in a burst
func NewPerMinuteLimiter(perMinute int, logger *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		logger:   logger,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// Cleanup drops limiters idle for longer than maxIdle
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	for key, e := range rl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// ByPhone keys on the JSON body's normalised "phone" field, falling back to
// client IP. The body is restored for the handler.
func (rl *RateLimiter) ByPhone() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if c.Request.Body != nil {
			body, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewReader(body))
				if phone := models.NormalizePhone(gjson.GetBytes(body, "phone").String()); phone != "" {
					key = "phone:" + phone
				}
			}
		}

		if !rl.Allow(key) {
			rl.logger.WithFields(logrus.Fields{
				"key":  key,
				"path": c.Request.URL.Path,
			}).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again in a minute"})
			return
		}
		c.Next()
	}
}
