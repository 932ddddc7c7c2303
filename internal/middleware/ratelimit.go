package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"

	"videotube-api/internal/apierror"
	"videotube-api/internal/response"
)

// RateLimiter spends cost tokens from the bucket identified by key.
type RateLimiter interface {
	AllowN(key string, cost int) bool
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per key. Buckets idle for longer than
// ttl are dropped on the next call.
type KeyedLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

// NewKeyedLimiter refills requests tokens per window for each key, holding at
// most burst.
func NewKeyedLimiter(requests int, window time.Duration, burst int, ttl time.Duration) *KeyedLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &KeyedLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// AllowN reports whether cost tokens are available for key and spends them.
// A cost above the burst is charged as the full burst so that expensive
// requests stay possible on an idle bucket.
func (l *KeyedLimiter) AllowN(key string, cost int) bool {
	if key == "" {
		key = "unknown"
	}
	cost = min(max(cost, 1), l.burst)

	now := l.now()

	l.mu.Lock()
	b := l.bucketLocked(key, now)
	l.gcLocked(now)
	l.mu.Unlock()

	return b.limiter.AllowN(now, cost)
}

func (l *KeyedLimiter) bucketLocked(key string, now time.Time) *bucket {
	if b, ok := l.buckets[key]; ok {
		b.lastSeen = now
		return b
	}

	b := &bucket{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
	l.buckets[key] = b
	return b
}

func (l *KeyedLimiter) gcLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.buckets, key)
		}
	}
}

// KeyFunc derives the bucket key for a request.
type KeyFunc func(c *gin.Context) string

// ClientIPKey buckets requests by client address.
func ClientIPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// CallerKey buckets requests by authenticated user and falls back to the
// client address before Auth has run.
func CallerKey(c *gin.Context) string {
	if id, ok := c.Get(UserIDKey); ok {
		if oid, ok := id.(primitive.ObjectID); ok {
			return "user:" + oid.Hex()
		}
	}
	return ClientIPKey(c)
}

type rateLimitConfig struct {
	key  KeyFunc
	cost int
}

// RateLimitOption customizes RateLimit.
type RateLimitOption func(*rateLimitConfig)

// WithKey selects the bucket key for each request.
func WithKey(fn KeyFunc) RateLimitOption {
	return func(cfg *rateLimitConfig) {
		if fn != nil {
			cfg.key = fn
		}
	}
}

// WithCost charges cost tokens per request instead of one.
func WithCost(cost int) RateLimitOption {
	return func(cfg *rateLimitConfig) {
		if cost > 0 {
			cfg.cost = cost
		}
	}
}

// RateLimit rejects requests once their bucket is empty. Requests are keyed
// by client IP and cost one token unless options say otherwise.
func RateLimit(limiter RateLimiter, opts ...RateLimitOption) gin.HandlerFunc {
	cfg := rateLimitConfig{key: ClientIPKey, cost: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *gin.Context) {
		if limiter != nil && !limiter.AllowN(cfg.key(c), cfg.cost) {
			response.Fail(c, apierror.TooManyRequests("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
