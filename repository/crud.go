package repository

import (
	"context"
	"sync"
	"time"

	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/identity"
	"github.com/aisgo/posibel/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

/* ========================================================================
 * CRUD Repository Implementation - 按身份隔离的 CRUD 实现
 * ========================================================================
 * 职责: 实现 Repository 接口的写操作
 *
 * 使用示例:
 *   // 1. 定义模型与条件
 *   type Shop struct {
 *       repository.BaseModel
 *       Name           string `gorm:"column:name;not null"`
 *       OrganizationID int64  `gorm:"column:organization_id;not null;index"`
 *   }
 *   type ShopWhere struct{ ID, OrganizationID *int64 }
 *   func (w ShopWhere) Conditions() map[string]any { ... }
 *
 *   // 2. 创建仓储（关联配置表: 关联名 -> 字段路径 / 别名）
 *   repo := repository.NewRepository[Shop, ShopWhere, ShopRelation](db, relations)
 *
 *   // 3. 写入（身份决定租户）
 *   shop, err := repo.InsertOne(ctx, repository.InsertQuery[Shop]{
 *       Entity: &Shop{Name: "Main street"}, Identity: id,
 *   })
 *
 *   // 4. 更新 / 删除：影响行数为零统一返回 Conflict
 *   shop, err = repo.UpdateOne(ctx, repository.UpdateQuery{
 *       ID: shop.ID, Values: map[string]any{"name": "Harbour"}, Identity: id,
 *   })
 * ======================================================================== */

// RepositoryImpl 仓储实现
type RepositoryImpl[E any, W Conditions, R ~string] struct {
	db        *gorm.DB
	relations map[R]RelationConfig
	opts      options

	// Schema 缓存（线程安全）
	schemaOnce   sync.Once
	schema       *schema.Schema
	schemaErr    error
	tenantColumn string
}

type options struct {
	timeout time.Duration
}

// Option 仓储选项
type Option func(*options)

// WithTimeout 设置单次存储调用超时
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// NewRepository 创建新的仓储实例
func NewRepository[E any, W Conditions, R ~string](db *gorm.DB, relations map[R]RelationConfig, opts ...Option) *RepositoryImpl[E, W, R] {
	r := &RepositoryImpl[E, W, R]{db: db, relations: relations}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// GetDB 获取底层 GORM DB 实例
func (r *RepositoryImpl[E, W, R]) GetDB() *gorm.DB {
	return r.db
}

// Table 表名
func (r *RepositoryImpl[E, W, R]) Table() string {
	s, err := r.getSchema()
	if err != nil {
		return "unknown"
	}
	return s.Table
}

// newModelPtr 创建新的模型指针
func (r *RepositoryImpl[E, W, R]) newModelPtr() *E {
	var model E
	return &model
}

// withContext 返回带 context 的 DB (自动识别事务)
func (r *RepositoryImpl[E, W, R]) withContext(ctx context.Context) *gorm.DB {
	return txFrom(ctx, r.db)
}

// getSchema 获取缓存的 Schema（线程安全）
func (r *RepositoryImpl[E, W, R]) getSchema() (*schema.Schema, error) {
	r.schemaOnce.Do(func() {
		stmt := &gorm.Statement{DB: r.db}
		r.schemaErr = stmt.Parse(r.newModelPtr())
		if r.schemaErr == nil {
			r.schema = stmt.Schema
			r.tenantColumn, _ = tenantColumnOf(stmt.Schema)
		}
	})
	return r.schema, r.schemaErr
}

// begin 应用单次调用超时并记录耗时
func (r *RepositoryImpl[E, W, R]) begin(ctx context.Context, op string) (context.Context, func()) {
	start := time.Now()
	cancel := context.CancelFunc(func() {})
	if r.opts.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.opts.timeout)
	}
	return ctx, func() {
		cancel()
		metrics.DBQueryDuration.WithLabelValues(op, r.Table()).Observe(time.Since(start).Seconds())
	}
}

func (r *RepositoryImpl[E, W, R]) now() time.Time {
	if r.db.Config != nil && r.db.NowFunc != nil {
		return r.db.NowFunc()
	}
	return time.Now().UTC()
}

func (r *RepositoryImpl[E, W, R]) primaryKey(s *schema.Schema, id int64) clause.Expression {
	column := "id"
	if s.PrioritizedPrimaryField != nil {
		column = s.PrioritizedPrimaryField.DBName
	}
	return clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: column}, Value: id}
}

// affectedZero 影响行数为零
// 「不存在」与「属于其他租户」返回完全相同的错误
func (r *RepositoryImpl[E, W, R]) affectedZero(verb string) error {
	metrics.RepositoryConflictTotal.WithLabelValues(r.Table(), "affected_zero").Inc()
	return errors.New(errors.ErrCodeConflict, "could not "+verb+" "+r.Table())
}

/* ========================================================================
 * Insert 操作
 * ======================================================================== */

// InsertOne 插入单条记录
func (r *RepositoryImpl[E, W, R]) InsertOne(ctx context.Context, q InsertQuery[E]) (*E, error) {
	ctx, done := r.begin(ctx, "insert_one")
	defer done()

	if q.Entity == nil {
		return nil, errors.ErrInvalidArgument
	}
	s, err := r.getSchema()
	if err != nil {
		return nil, translateError(ctx, err)
	}

	if ts, ok := any(q.Entity).(timestamped); ok {
		ts.stamp(r.now(), true)
	}

	// 外键归属校验与写入在同一事务内
	err = r.Execute(ctx, func(ctx context.Context) error {
		if err := r.guardInsert(ctx, s, q.Entity, q.Identity); err != nil {
			return err
		}
		if err := r.withContext(ctx).Create(q.Entity).Error; err != nil {
			return translateError(ctx, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q.Entity, nil
}

/* ========================================================================
 * Update 操作
 * ======================================================================== */

// UpdateOne 根据 ID 更新指定字段并返回最新数据
func (r *RepositoryImpl[E, W, R]) UpdateOne(ctx context.Context, q UpdateQuery) (*E, error) {
	ctx, done := r.begin(ctx, "update_one")
	defer done()

	s, err := r.getSchema()
	if err != nil {
		return nil, translateError(ctx, err)
	}

	values := r.filterUpdates(s, q.Values)
	if len(values) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "no updatable fields")
	}

	if field, ok := s.FieldsByDBName["updated_at"]; ok {
		values[field.DBName] = r.now()
	}

	var updated *E
	err = r.Execute(ctx, func(ctx context.Context) error {
		if err := r.guardUpdate(ctx, s, values, q.Identity); err != nil {
			return err
		}
		db := r.scoped(r.withContext(ctx).Model(r.newModelPtr()), QueryUpdate, q.Identity)
		result := db.Where(r.primaryKey(s, q.ID)).Updates(values)
		if result.Error != nil {
			return translateError(ctx, result.Error)
		}
		if result.RowsAffected == 0 {
			return r.affectedZero("update")
		}

		found, err := r.findByID(ctx, s, q.ID, q.Identity)
		updated = found
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// filterUpdates 过滤掉 map 中非法的数据库列名，防止字段注入/批量赋值漏洞
// 主键与时间戳列由仓储维护，不接受外部传入
func (r *RepositoryImpl[E, W, R]) filterUpdates(s *schema.Schema, updates map[string]any) map[string]any {
	filtered := make(map[string]any, len(updates))
	for k, v := range updates {
		field, ok := s.FieldsByDBName[k]
		if !ok {
			// 尝试匹配结构体字段名 (Struct Field Name)
			field, ok = s.FieldsByName[k]
		}
		if !ok || field.DBName == "" || field.PrimaryKey || !field.Updatable {
			continue
		}
		switch field.DBName {
		case "created_at", "updated_at", "deleted_at":
			continue
		}
		filtered[field.DBName] = v
	}
	return filtered
}

/* ========================================================================
 * Delete 操作
 * ======================================================================== */

// DeleteOne 物理删除
func (r *RepositoryImpl[E, W, R]) DeleteOne(ctx context.Context, q DeleteQuery) (*E, error) {
	ctx, done := r.begin(ctx, "delete_one")
	defer done()
	return r.remove(ctx, q, QueryDelete)
}

// SoftDeleteOne 软删除（设置 deleted_at）
func (r *RepositoryImpl[E, W, R]) SoftDeleteOne(ctx context.Context, q DeleteQuery) (*E, error) {
	ctx, done := r.begin(ctx, "soft_delete_one")
	defer done()
	return r.remove(ctx, q, QuerySoftDelete)
}

func (r *RepositoryImpl[E, W, R]) remove(ctx context.Context, q DeleteQuery, kind QueryKind) (*E, error) {
	s, err := r.getSchema()
	if err != nil {
		return nil, translateError(ctx, err)
	}
	if kind == QuerySoftDelete && s.LookUpField("deleted_at") == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, s.Table+" does not support soft delete")
	}

	var removed *E
	err = r.Execute(ctx, func(ctx context.Context) error {
		existing, err := r.findByID(ctx, s, q.ID, q.Identity)
		if err != nil {
			return err
		}
		if existing == nil {
			return r.affectedZero("delete")
		}

		db := r.scoped(r.withContext(ctx), kind, q.Identity)
		if kind == QueryDelete {
			db = db.Unscoped()
		}
		result := db.Where(r.primaryKey(s, q.ID)).Delete(r.newModelPtr())
		if result.Error != nil {
			return translateError(ctx, result.Error)
		}
		if result.RowsAffected == 0 {
			return r.affectedZero("delete")
		}

		removed = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// findByID 在身份范围内按主键读取
func (r *RepositoryImpl[E, W, R]) findByID(ctx context.Context, s *schema.Schema, pk int64, id *identity.Identity) (*E, error) {
	entity := r.newModelPtr()
	err := r.scoped(r.withContext(ctx), QuerySelect, id).
		Where(r.primaryKey(s, pk)).
		Take(entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(ctx, err)
	}
	return entity, nil
}
