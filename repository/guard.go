package repository

import (
	"context"
	"math"
	"reflect"

	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/identity"
	"github.com/aisgo/posibel/metrics"

	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

/* ========================================================================
 * Cross-Tenant Write Guard - 跨租户写入保护
 * ========================================================================
 * 职责:
 *   1. 插入: 实体携带的 organization_id 与身份不一致时返回 Conflict；
 *      未携带时使用身份的组织
 *   2. 更新: Values 中的 organization_id 与身份不一致时返回 Conflict
 *   3. 外键: belongs-to 外键必须指向本租户内的行
 * 注意: 不做静默纠正；身份为 nil 时不校验
 *       身份缺少组织时与读路径一致，返回 MalformedIdentity
 * ======================================================================== */

func (r *RepositoryImpl[E, W, R]) guardInsert(ctx context.Context, s *schema.Schema, entity *E, id *identity.Identity) error {
	if id == nil {
		return nil
	}
	if id.OrganizationID <= 0 {
		return errors.ErrMalformedIdentity
	}

	rv := reflect.ValueOf(entity)
	if isTenantRoot(s) {
		// 租户内部不能创建新的租户
		pk := s.PrioritizedPrimaryField
		if pk == nil {
			return r.rejectWrite("tenant_mismatch", errors.ErrTenantMismatch)
		}
		v, zero := pk.ValueOf(ctx, rv)
		if n, ok := asInt64(v); zero || !ok || n != id.OrganizationID {
			return r.rejectWrite("tenant_mismatch", errors.ErrTenantMismatch)
		}
		return nil
	}

	field, ok := s.FieldsByDBName[r.tenantColumn]
	if !ok {
		return errors.New(errors.ErrCodeInternal, "model is not tenant scoped")
	}

	v, zero := field.ValueOf(ctx, rv)
	if zero {
		if err := field.Set(ctx, rv, id.OrganizationID); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "set organization", err)
		}
	} else if n, ok := asInt64(v); !ok || n != id.OrganizationID {
		return r.rejectWrite("tenant_mismatch", errors.ErrTenantMismatch)
	}

	for _, rel := range s.Relationships.BelongsTo {
		for _, ref := range rel.References {
			if ref.ForeignKey == nil || ref.PrimaryKey == nil || ref.ForeignKey.DBName == r.tenantColumn {
				continue
			}
			fk, zero := ref.ForeignKey.ValueOf(ctx, rv)
			if zero {
				continue
			}
			if err := r.verifyReference(ctx, rel, ref, fk, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// guardUpdate 校验更新字段（values 为已过滤的列名 map）
func (r *RepositoryImpl[E, W, R]) guardUpdate(ctx context.Context, s *schema.Schema, values map[string]any, id *identity.Identity) error {
	if id == nil {
		return nil
	}
	if id.OrganizationID <= 0 {
		return errors.ErrMalformedIdentity
	}

	if v, ok := values[r.tenantColumn]; ok {
		if n, ok := asInt64(v); !ok || n != id.OrganizationID {
			return r.rejectWrite("tenant_mismatch", errors.ErrTenantMismatch)
		}
	}

	for _, rel := range s.Relationships.BelongsTo {
		for _, ref := range rel.References {
			if ref.ForeignKey == nil || ref.PrimaryKey == nil || ref.ForeignKey.DBName == r.tenantColumn {
				continue
			}
			fk, ok := values[ref.ForeignKey.DBName]
			if !ok || isNilValue(fk) {
				continue
			}
			if err := r.verifyReference(ctx, rel, ref, fk, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// verifyReference 外键目标必须属于调用方租户
// 目标不存在与属于其他租户返回同一个错误
func (r *RepositoryImpl[E, W, R]) verifyReference(ctx context.Context, rel *schema.Relationship, ref *schema.Reference, fk any, id *identity.Identity) error {
	target := rel.FieldSchema
	column, ok := tenantColumnOf(target)
	if !ok {
		return nil
	}

	rejected := errors.New(errors.ErrCodeConflict, "referenced "+target.Table+" is not accessible")

	if column == ref.PrimaryKey.DBName {
		if n, ok := asInt64(fk); !ok || n != id.OrganizationID {
			return r.rejectWrite("foreign_reference", rejected)
		}
		return nil
	}

	var count int64
	err := r.withContext(ctx).
		Model(reflect.New(target.ModelType).Interface()).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: ref.PrimaryKey.DBName}, Value: fk}).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: column}, Value: id.OrganizationID}).
		Count(&count).Error
	if err != nil {
		return translateError(ctx, err)
	}
	if count == 0 {
		return r.rejectWrite("foreign_reference", rejected)
	}
	return nil
}

func (r *RepositoryImpl[E, W, R]) rejectWrite(reason string, err error) error {
	metrics.RepositoryConflictTotal.WithLabelValues(r.Table(), reason).Inc()
	return err
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case *int64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case float64:
		return int64(n), float64(int64(n)) == n
	default:
		return 0, false
	}
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
