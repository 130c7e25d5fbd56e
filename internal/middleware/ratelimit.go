package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movies/internal/config"
)

// takeTokenScript refills the bucket stored at KEYS[1] for the whole
// intervals elapsed since the last refill, then takes one token.
// ARGV: now_ms, capacity, refill, interval_ms, ttl_s.
// Reply: {allowed (0|1), tokens_left, wait_ms}.
var takeTokenScript = redis.NewScript(`
local now, cap, refill, step, ttl =
	tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local b = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens, ts = tonumber(b[1]), tonumber(b[2])
if not tokens or not ts then
	tokens, ts = cap, now
end
if step > 0 then
	local n = math.floor(math.max(0, now - ts) / step)
	if n > 0 then
		tokens = math.min(cap, tokens + n * refill)
		ts = ts + n * step
	end
end
local ok, wait = 0, 0
if tokens >= 1 then
	ok, tokens = 1, tokens - 1
else
	wait = math.max(0, step - (now - ts))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// bucketDecision is the parsed reply of takeTokenScript.
type bucketDecision struct {
	Allowed   bool
	Remaining int64
	Wait      time.Duration
}

// RetryAfterSeconds rounds Wait up to whole seconds for the Retry-After header.
func (d bucketDecision) RetryAfterSeconds() int {
	if d.Wait <= 0 {
		return 0
	}
	return int((d.Wait + time.Second - 1) / time.Second)
}

// NewTokenBucket limits /v1/movies requests per key with a Redis token
// bucket. It passes every request through when disabled or rdb is nil, and
// fails open on Redis errors.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			d, err := takeToken(c.Request().Context(), rdb, cfg, key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("ratelimit: allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if d.Allowed {
				return next(c)
			}

			secs := d.RetryAfterSeconds()
			h.Set("Retry-After", strconv.Itoa(secs))
			log.Debug().Str("key", key).Dur("wait", d.Wait).Msg("ratelimit: blocked")
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

func takeToken(ctx context.Context, rdb redis.Scripter, cfg config.RateLimitConfig, key string) (bucketDecision, error) {
	reply, err := takeTokenScript.Run(ctx, rdb, []string{key},
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketDecision{}, err
	}
	return parseBucketReply(reply)
}

func parseBucketReply(reply []int64) (bucketDecision, error) {
	if len(reply) != 3 {
		return bucketDecision{}, fmt.Errorf("unexpected token bucket reply %v", reply)
	}
	return bucketDecision{
		Allowed:   reply[0] == 1,
		Remaining: reply[1],
		Wait:      time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// rateKeyParts lists, per strategy, which request attributes form the key.
// Unknown strategies use all three.
var rateKeyParts = map[string][]string{
	"ip":         {"ip"},
	"user":       {"user"},
	"route":      {"route"},
	"ip_user":    {"ip", "user"},
	"ip_route":   {"ip", "route"},
	"user_route": {"user", "route"},
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts, ok := rateKeyParts[strings.ToLower(cfg.KeyStrategy)]
	if !ok {
		parts = []string{"ip", "user", "route"}
	}
	key := []string{cfg.Prefix}
	for _, p := range parts {
		key = append(key, p, rateKeyValue(p, c))
	}
	return strings.Join(key, ":")
}

func rateKeyValue(part string, c echo.Context) string {
	switch part {
	case "ip":
		if ip := c.RealIP(); ip != "" {
			return ip
		}
		return "unknown"
	case "user":
		return UserID(c)
	default:
		return c.Request().Method + " " + c.Path()
	}
}
