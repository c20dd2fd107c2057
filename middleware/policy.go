package middleware

import (
	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/identity"
	"github.com/aisgo/posibel/metrics"

	"github.com/gofiber/fiber/v3"
)

// RequirePolicy 权限检查中间件
// 未认证 401；身份结构损坏 409；无匹配权限 403
func RequirePolicy(required identity.Policy) fiber.Handler {
	return func(c fiber.Ctx) error {
		allowed, err := identity.Authorize(IdentityFrom(c), required)
		if err != nil {
			result := "malformed"
			if errors.Code(err) == errors.ErrCodeUnauthenticated {
				result = "unauthenticated"
			}
			metrics.AuthorizationDecisionTotal.WithLabelValues(string(required), result).Inc()
			return err
		}
		if !allowed {
			metrics.AuthorizationDecisionTotal.WithLabelValues(string(required), "denied").Inc()
			return errors.ErrPermissionDenied
		}

		metrics.AuthorizationDecisionTotal.WithLabelValues(string(required), "allowed").Inc()
		return c.Next()
	}
}
