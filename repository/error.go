package repository

import (
	"context"
	stderrors "errors"

	"github.com/aisgo/posibel/errors"

	"gorm.io/gorm"
)

// translateError 将存储层错误转换为业务错误
// 已是 BizError 的错误原样返回；超时可重试，取消与其他错误为致命
func translateError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsBizError(err); ok {
		return err
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, "store call timed out", err)
	case stderrors.Is(err, context.Canceled):
		return errors.Wrap(errors.ErrCodeCanceled, "store call canceled", err)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(errors.ErrCodeConflict, "duplicate key", err)
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Wrap(errors.ErrCodeConflict, "foreign key violated", err)
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, "record not found", err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if stderrors.Is(ctxErr, context.DeadlineExceeded) {
			return errors.Wrap(errors.ErrCodeTimeout, "store call timed out", err)
		}
		return errors.Wrap(errors.ErrCodeCanceled, "store call canceled", err)
	}

	return errors.Wrap(errors.ErrCodeInternal, "store call failed", err)
}
