package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	rdb       *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
	now       func() time.Time
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, keyPrefix: "rl:ip:", now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	slot := now.UnixNano() / int64(l.window)
	k := l.keyPrefix + key + ":" + strconv.FormatInt(slot, 10)

	// INCR and set expiry 2*window (safety)
	pipe := l.rdb.Pipeline()
	cnt := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}

	if cnt.Val() > int64(l.limit) {
		remain := l.window - time.Duration(now.UnixNano()%int64(l.window))
		return false, remain, nil
	}
	return true, 0, nil
}

// LocalLimiter keeps a token bucket per key in a bounded LRU; idle buckets expire.
type LocalLimiter struct {
	mu      sync.Mutex // guards bucket creation
	buckets *expirable.LRU[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

func NewLocalLimiter(perMinute, maxKeys int) *LocalLimiter {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &LocalLimiter{
		buckets: expirable.NewLRU[string, *rate.Limiter](maxKeys, nil, 10*time.Minute),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   perMinute,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	lim := l.bucket(key)

	r := lim.Reserve()
	if !r.OK() {
		return false, time.Minute, nil
	}
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return false, d, nil
	}
	return true, 0, nil
}

func (l *LocalLimiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.buckets.Add(key, lim)
	}
	return lim
}

// RateLimitConfig config for the per-client-IP limiter.
type RateLimitConfig struct {
	Limiter        Limiter // nil disables limiting
	RetryAfterHint bool    // set Retry-After header when limited
	OnError        func(error)
}

// RateLimitMiddleware limits requests per client IP. Limiter errors let the request through.
func RateLimitMiddleware(cfg RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Limiter == nil {
				return next(c)
			}

			ok, retry, err := cfg.Limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				if cfg.OnError != nil {
					cfg.OnError(err)
				}
				return next(c)
			}
			if !ok {
				if cfg.RetryAfterHint && retry > 0 {
					secs := int((retry + time.Second - 1) / time.Second)
					c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				}
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
			}
			return next(c)
		}
	}
}

// NewLimiter picks the Redis limiter when a client is available, the local one otherwise.
// rpm <= 0 disables limiting.
func NewLimiter(rdb *redis.Client, rpm int) Limiter {
	switch {
	case rpm <= 0:
		return nil
	case rdb != nil:
		return NewRedisLimiter(rdb, rpm, time.Minute)
	default:
		return NewLocalLimiter(rpm, 0)
	}
}
