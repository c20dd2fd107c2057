package identity

import "github.com/aisgo/posibel/errors"

// Authorize 授权决策
//
//   - required 为空: 放行
//   - id 为 nil: ErrUnauthenticated (401)
//   - 身份结构不完整或策略格式非法: ErrMalformedIdentity (409)
//   - 无匹配权限: 返回 false（拒绝是决策结果，不是错误）
func Authorize(id *Identity, required Policy) (bool, error) {
	if required == "" {
		return true, nil
	}
	if id == nil {
		return false, errors.ErrUnauthenticated
	}
	if err := id.Validate(); err != nil {
		return false, err
	}
	for _, p := range id.Policies {
		if !p.Valid() {
			return false, errors.ErrMalformedIdentity
		}
	}
	return Satisfies(required, id.Policies), nil
}
