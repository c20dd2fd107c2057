package metrics

import (
	stderrors "errors"
	"strconv"
	"time"

	"github.com/aisgo/posibel/errors"

	"github.com/gofiber/fiber/v3"
)

// HTTPMiddlewareConfig HTTP 指标中间件配置
type HTTPMiddlewareConfig struct {
	// Skipper 返回 true 的请求不计入指标（探针、/metrics 自身）
	Skipper func(fiber.Ctx) bool
}

// HTTPMetricsMiddleware 记录请求数与耗时，标签 method / path / status
// path 取路由模板（/shops/:id），避免按 ID 产生无界标签
func HTTPMetricsMiddleware(cfg *HTTPMiddlewareConfig) fiber.Handler {
	var skip func(fiber.Ctx) bool
	if cfg != nil {
		skip = cfg.Skipper
	}

	return func(c fiber.Ctx) error {
		if skip != nil && skip(c) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		path := c.Path()
		if route := c.Route(); route != nil && route.Path != "" && route.Path != "/" {
			path = route.Path
		}
		status := strconv.Itoa(statusOf(c, err))

		HTTPRequestTotal.WithLabelValues(c.Method(), path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Method(), path, status).Observe(time.Since(start).Seconds())
		return err
	}
}

// statusOf 错误尚未经过 ErrorHandler，此时响应码仍是默认值，需要从错误推断
func statusOf(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	status, _ := errors.ToHTTPResponse(err)
	return status
}
