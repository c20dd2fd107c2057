package repository

import (
	"fmt"

	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/identity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/* ========================================================================
 * Tenant Scope - 租户过滤
 * ========================================================================
 * 职责: 为 select / update / delete / soft delete 统一注入租户谓词
 * 规则: id 为 nil 时不做任何限制；否则追加
 *       <当前表>.<租户列> = id.OrganizationID（与其他条件 AND 组合）
 * 注意: 所有读、写、删除入口都必须经过 ApplyTenantFilter
 * ======================================================================== */

// QueryKind 查询种类
type QueryKind int

const (
	QuerySelect QueryKind = iota + 1
	QueryUpdate
	QueryDelete
	QuerySoftDelete
)

// String 实现 fmt.Stringer
func (k QueryKind) String() string {
	switch k {
	case QuerySelect:
		return "select"
	case QueryUpdate:
		return "update"
	case QueryDelete:
		return "delete"
	case QuerySoftDelete:
		return "soft_delete"
	default:
		return fmt.Sprintf("QueryKind(%d)", int(k))
	}
}

// ApplyTenantFilter 按身份追加租户谓词
//
// 列名使用 clause.CurrentTable 限定，关联查询与预加载中
// 自动解析为当前语句的表（或别名），避免列名歧义。
func ApplyTenantFilter(db *gorm.DB, kind QueryKind, column string, id *identity.Identity) *gorm.DB {
	if id == nil {
		return db
	}

	switch kind {
	case QuerySelect, QueryUpdate, QueryDelete, QuerySoftDelete:
	default:
		db.AddError(errors.New(errors.ErrCodeInternal, "unsupported query kind "+kind.String()))
		return db
	}

	if id.OrganizationID <= 0 {
		db.AddError(errors.ErrMalformedIdentity)
		return db
	}
	if column == "" {
		db.AddError(errors.New(errors.ErrCodeInternal, "model is not tenant scoped"))
		return db
	}

	return db.Where(clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: column},
		Value:  id.OrganizationID,
	})
}

// scoped 返回带租户过滤的 DB
func (r *RepositoryImpl[E, W, R]) scoped(db *gorm.DB, kind QueryKind, id *identity.Identity) *gorm.DB {
	return ApplyTenantFilter(db, kind, r.tenantColumn, id)
}
