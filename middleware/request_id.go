package middleware

import (
	"github.com/aisgo/posibel/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// RequestID 透传或生成请求 ID，写入响应头与日志 Context
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.SetContext(logger.WithRequestID(c.Context(), rid))
		return c.Next()
	}
}
