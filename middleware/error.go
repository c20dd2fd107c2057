package middleware

import (
	stderrors "errors"

	"github.com/aisgo/posibel/logger"
	"github.com/aisgo/posibel/response"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// NewErrorHandler returns a Fiber ErrorHandler with unified logging and response formatting.
// 5xx errors are logged at error level, everything else at debug.
func NewErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(c fiber.Ctx, err error) error {
		if err == nil {
			return nil
		}

		var fe *fiber.Error
		if stderrors.As(err, &fe) {
			return response.ErrorWithCode(c, fe.Code, stderrors.New(fe.Message))
		}

		status := response.StatusOf(err)
		l := log.WithContext(c.Context()).With(
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
		if status >= fiber.StatusInternalServerError {
			l.Error("request failed")
		} else {
			l.Debug("request rejected")
		}
		return response.Error(c, err)
	}
}
