package identity

import (
	"context"

	"github.com/aisgo/posibel/errors"
)

/* ========================================================================
 * Identity - 调用方身份
 * ========================================================================
 * 职责: 描述一次已认证请求的租户、用户、角色与权限声明
 * 来源: 由认证中间件（Token 校验）生成，请求结束即丢弃
 * 约定: nil *Identity 表示受信任的内部调用，不附加租户过滤
 * ======================================================================== */

// Identity 已认证调用方的声明集合（不可变）
type Identity struct {
	UserID         int64    `json:"userId"`
	OrganizationID int64    `json:"organizationId"`
	RoleID         int64    `json:"roleId"`
	Policies       []Policy `json:"policies"`
}

// Validate 校验身份结构是否完整
// 缺少用户、组织、角色或策略为空均视为 MalformedAuthorization
func (i *Identity) Validate() error {
	if i == nil {
		return errors.ErrUnauthenticated
	}
	if i.UserID <= 0 || i.OrganizationID <= 0 || i.RoleID <= 0 || len(i.Policies) == 0 {
		return errors.ErrMalformedIdentity
	}
	return nil
}

type identityCtxKey struct{}

// NewContext 将 Identity 写入 Context
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// FromContext 从 Context 读取 Identity
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}
