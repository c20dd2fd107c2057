package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/identity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

/* ========================================================================
 * Query Repository Implementation - 查询实现
 * ========================================================================
 * 职责: GetOne / GetMany 与查询构建
 * 关联:
 *   - 关联数据通过预加载读取，预加载同样应用租户过滤
 *   - JoinInner 额外生成 EXISTS 子查询，子查询内同样应用租户过滤，
 *     因此既不会放大行数，也不会通过其他租户的行让主表行「可见」
 * ======================================================================== */

// GetOne 查询单条记录
func (r *RepositoryImpl[E, W, R]) GetOne(ctx context.Context, q SelectQuery[W, R]) (*E, error) {
	ctx, done := r.begin(ctx, "get_one")
	defer done()

	db, err := r.buildSelect(ctx, q, true)
	if err != nil {
		return nil, err
	}
	if db, err = applyOrder(db, q.OrderBy); err != nil {
		return nil, err
	}

	entity := r.newModelPtr()
	if err := db.Take(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(ctx, err)
	}
	return entity, nil
}

// GetMany 查询多条记录
func (r *RepositoryImpl[E, W, R]) GetMany(ctx context.Context, q SelectQuery[W, R]) ([]E, error) {
	ctx, done := r.begin(ctx, "get_many")
	defer done()

	return r.findList(ctx, q)
}

func (r *RepositoryImpl[E, W, R]) findList(ctx context.Context, q SelectQuery[W, R]) ([]E, error) {
	db, err := r.buildSelect(ctx, q, true)
	if err != nil {
		return nil, err
	}
	if db, err = applyPaging(db, q.OrderBy, q.Limit, q.Offset); err != nil {
		return nil, err
	}

	list := make([]E, 0)
	if err := db.Find(&list).Error; err != nil {
		return nil, translateError(ctx, err)
	}
	return list, nil
}

// buildSelect 构建带租户过滤、条件与关联的查询
// withPreloads=false 用于计数，不加载关联数据
func (r *RepositoryImpl[E, W, R]) buildSelect(ctx context.Context, q SelectQuery[W, R], withPreloads bool) (*gorm.DB, error) {
	s, err := r.getSchema()
	if err != nil {
		return nil, translateError(ctx, err)
	}

	db := r.scoped(r.withContext(ctx).Model(r.newModelPtr()), QuerySelect, q.Identity)

	conds := q.Where.Conditions()
	columns := make([]string, 0, len(conds))
	for column := range conds {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	for _, column := range columns {
		if _, ok := s.FieldsByDBName[column]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "unknown column "+column)
		}
		db = db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: column},
			Value:  conds[column],
		})
	}

	for _, join := range q.Joins {
		cfg, ok := r.relations[join.Relation]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "unknown relation "+string(join.Relation))
		}
		rel, ok := s.Relationships.Relations[cfg.Path]
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "relation path "+cfg.Path+" not found on "+s.Table)
		}

		switch join.Type {
		case "", JoinLeft:
		case JoinInner:
			expr, err := existsRelated(rel, cfg.Alias, q.Identity)
			if err != nil {
				return nil, err
			}
			db = db.Where(expr)
		default:
			return nil, errors.New(errors.ErrCodeInvalidArgument, "unknown join type "+string(join.Type))
		}

		if withPreloads {
			db = db.Preload(cfg.Path, preloadScope(rel.FieldSchema, q.Identity))
		}
	}

	for _, scope := range q.Scopes {
		db = scope(db)
	}
	return db, nil
}

// preloadScope 关联表同样按身份过滤
func preloadScope(target *schema.Schema, id *identity.Identity) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if id == nil {
			return tx
		}
		column, ok := tenantColumnOf(target)
		if !ok {
			return tx
		}
		return ApplyTenantFilter(tx, QuerySelect, column, id)
	}
}

// existsRelated 构造内关联过滤:
//
//	EXISTS (SELECT 1 FROM <table> <alias> WHERE <alias>.<fk> = <current>.<pk>
//	        [AND <alias>.<tenant> = ?] [AND <alias>.deleted_at = 0])
func existsRelated(rel *schema.Relationship, alias string, id *identity.Identity) (clause.Expression, error) {
	target := rel.FieldSchema
	if alias == "" {
		alias = "j_" + target.Table
	}

	var sb strings.Builder
	sb.WriteString("EXISTS (SELECT 1 FROM ? WHERE ")
	vars := []any{clause.Table{Name: target.Table, Alias: alias}}

	n := 0
	for _, ref := range rel.References {
		if ref.PrimaryKey == nil || ref.ForeignKey == nil {
			continue
		}
		// OwnPrimaryKey: 主表持有主键（has one / has many）
		child, parent := ref.PrimaryKey.DBName, ref.ForeignKey.DBName
		if ref.OwnPrimaryKey {
			child, parent = ref.ForeignKey.DBName, ref.PrimaryKey.DBName
		}
		if n > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString("? = ?")
		vars = append(vars,
			clause.Column{Table: alias, Name: child},
			clause.Column{Table: clause.CurrentTable, Name: parent},
		)
		n++
	}
	if n == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "relation "+rel.Name+" has no join keys")
	}

	if id != nil {
		column, ok := tenantColumnOf(target)
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, target.Table+" is not tenant scoped")
		}
		sb.WriteString(" AND ? = ?")
		vars = append(vars, clause.Column{Table: alias, Name: column}, id.OrganizationID)
	}

	if target.LookUpField("deleted_at") != nil {
		sb.WriteString(" AND ? = 0")
		vars = append(vars, clause.Column{Table: alias, Name: "deleted_at"})
	}

	sb.WriteString(")")
	return clause.Expr{SQL: sb.String(), Vars: vars}, nil
}

func applyOrder(db *gorm.DB, orderBy string) (*gorm.DB, error) {
	if strings.TrimSpace(orderBy) == "" {
		return db, nil
	}
	if err := ValidateOrderBy(orderBy); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, "invalid order", err)
	}
	return db.Order(orderBy), nil
}

func applyPaging(db *gorm.DB, orderBy string, limit, offset int) (*gorm.DB, error) {
	db, err := applyOrder(db, orderBy)
	if err != nil {
		return nil, err
	}
	if limit < 0 || offset < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "limit and offset must not be negative")
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db, nil
}
