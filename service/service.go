package service

import (
	"context"

	"github.com/aisgo/posibel/logger"
	"github.com/aisgo/posibel/store"
	"github.com/aisgo/posibel/validator"

	"golang.org/x/crypto/bcrypt"
)

/* ========================================================================
 * Service - 业务服务层
 * ========================================================================
 * 职责: 组合仓储完成注册、认证等跨实体业务流程
 * 规则:
 *   - 多实体写入在同一事务中完成（repository.Transactor）
 *   - 领域事件在事务提交之后发布，发布失败只记录日志
 *   - 返回的用户均已清除密码哈希
 * ======================================================================== */

// 邮箱锁作用域
const emailLockScope = "register-email"

// EmailLocker 注册邮箱锁（可选）
type EmailLocker interface {
	Hold(ctx context.Context, scope, key string) (func(context.Context) error, error)
}

// Deps 服务依赖
type Deps struct {
	Stores    *store.Stores
	Validator *validator.Validator
	Logger    *logger.Logger

	// 可选
	Locker   EmailLocker
	Events   *Publisher
	HashCost int
}

func (d Deps) withDefaults() Deps {
	if d.Validator == nil {
		d.Validator = validator.New()
	}
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	if d.HashCost == 0 {
		d.HashCost = bcrypt.DefaultCost
	}
	return d
}

// holdEmail 获取邮箱锁；未配置锁时返回空释放函数
func holdEmail(ctx context.Context, locker EmailLocker, email string) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	release, err := locker.Hold(ctx, emailLockScope, email)
	if err != nil {
		return nil, errUnavailable("registration is busy, retry later", err)
	}
	return func() { _ = release(context.WithoutCancel(ctx)) }, nil
}
