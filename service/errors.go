package service

import (
	stderrors "errors"

	"github.com/aisgo/posibel/errors"

	"gorm.io/gorm"
)

var (
	// ErrEmailExists 邮箱已被任意租户的用户占用
	ErrEmailExists = errors.New(errors.ErrCodeConflict, "email already exists")

	// ErrBadCredentials 邮箱不存在或密码错误（不区分两者）
	ErrBadCredentials = errors.New(errors.ErrCodeInvalidArgument, "bad credentials")
)

func errUnavailable(msg string, cause error) error {
	return errors.Wrap(errors.ErrCodeUnavailable, msg, cause)
}

// isDuplicateKey 唯一索引冲突（检查与插入之间的竞争）
func isDuplicateKey(err error) bool {
	return stderrors.Is(err, gorm.ErrDuplicatedKey)
}
