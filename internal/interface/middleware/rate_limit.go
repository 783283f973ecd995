package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/morningforge/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request. Limiters with different
// budgets must use distinct keys or their counters collide.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "mf:rl:ip:" + ipFromCtx(c)
	}
}

func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "mf:rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits signed-in callers per account and anonymous ones per IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "mf:rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "mf:rl:user:" + uid
	}
}

// KeyByUserAndPath gives a single route its own per-account budget.
func KeyByUserAndPath() KeyFunc {
	user := KeyByUserID()
	return func(c *gin.Context) string {
		return user(c) + ":path:" + normalizePath(c)
	}
}

// INCR, set the expiry on the first hit and return {count, pttl} in one trip.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// AllowFunc returns true for requests that bypass the limit.
type AllowFunc func(*gin.Context) bool

// RateLimit is a fixed-window counter in Redis. With no Redis client it is a
// pass-through, and Redis errors fail open.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}

		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := keyFn(c)

		res, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count := int(res[0])
		resetSec := 0
		if res[1] > 0 {
			resetSec = int((time.Duration(res[1])*time.Millisecond + time.Second - 1) / time.Second)
		}

		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
