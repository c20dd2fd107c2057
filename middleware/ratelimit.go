package middleware

import (
	"strconv"

	"github.com/aisgo/posibel/errors"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

/* ========================================================================
 * Rate Limit - 请求限流
 * ========================================================================
 * 职责: 按组织（已认证）或客户端 IP 限流
 * 存储: 配置了 Redis 时多实例共享计数，否则进程内存
 * ======================================================================== */

const (
	defaultRate       = "1000-S"
	rateLimitPrefix   = "posibel:ratelimit"
	errTooManyRequest = "too many requests"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool   `yaml:"enabled"`
	Rate    string `yaml:"rate"` // ulule 格式: <limit>-<S|M|H|D>，如 "100-M"
}

// NewRateLimiter 创建限流器；client 为 nil 时使用内存存储
func NewRateLimiter(cfg RateLimitConfig, client *redis.Client) (*limiter.Limiter, error) {
	formatted := cfg.Rate
	if formatted == "" {
		formatted = defaultRate
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, "invalid rate limit", err)
	}

	opts := limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		MaxRetry:        limiter.DefaultMaxRetry,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	}
	var store limiter.Store
	if client != nil {
		store, err = redisstore.NewStoreWithOptions(client, opts)
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStoreWithOptions(opts)
	}
	return limiter.New(store, rate), nil
}

// RateLimit 限流中间件；lim 为 nil 时不限流
// 需放在 Authenticate 之后，才能按组织计数
func RateLimit(lim *limiter.Limiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		if lim == nil {
			return c.Next()
		}

		res, err := lim.Get(c.Context(), rateLimitKey(c))
		if err != nil {
			return errors.Wrap(errors.ErrCodeUnavailable, "rate limit check failed", err)
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))

		if res.Reached {
			return fiber.NewError(fiber.StatusTooManyRequests, errTooManyRequest)
		}
		return c.Next()
	}
}

func rateLimitKey(c fiber.Ctx) string {
	if id := IdentityFrom(c); id != nil && id.OrganizationID > 0 {
		return "org:" + strconv.FormatInt(id.OrganizationID, 10)
	}
	return "ip:" + c.IP()
}
