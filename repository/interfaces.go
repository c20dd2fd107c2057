package repository

import (
	"context"

	"github.com/aisgo/posibel/identity"

	"gorm.io/gorm"
)

/* ========================================================================
 * Repository Interfaces - 仓储接口定义
 * ========================================================================
 * 职责: 定义按身份（租户）隔离的通用仓储契约
 * 设计: 泛型参数 E=实体, W=查询条件, R=关联名枚举
 * 约定: Identity 为 nil 表示受信任的内部调用（不加租户过滤），
 *       每个这样的调用点必须在代码中显式说明
 * ======================================================================== */

// Conditions 查询条件结构需实现此接口
// 返回 列名 -> 值，未设置的字段不出现在结果中
type Conditions interface {
	Conditions() map[string]any
}

// Cond 在 v 非 nil 时写入条件
func Cond[T any](m map[string]any, column string, v *T) {
	if v != nil {
		m[column] = *v
	}
}

// JoinType 关联方式
type JoinType string

const (
	// JoinLeft 左关联（默认）：仅加载关联数据，不过滤主表
	JoinLeft JoinType = "left"
	// JoinInner 内关联：主表行必须存在（本租户内的）关联行
	JoinInner JoinType = "inner"
)

// Join 声明式关联
type Join[R ~string] struct {
	Relation R
	Type     JoinType
}

// LeftJoin 构造左关联
func LeftJoin[R ~string](relation R) Join[R] {
	return Join[R]{Relation: relation, Type: JoinLeft}
}

// InnerJoin 构造内关联
func InnerJoin[R ~string](relation R) Join[R] {
	return Join[R]{Relation: relation, Type: JoinInner}
}

// RelationConfig 关联配置：关联名 -> 模型字段路径 / 别名
type RelationConfig struct {
	// Path 模型上的关联字段名（如 "Users"）
	Path string
	// Alias 关联表在过滤子查询中的别名
	Alias string
}

// SelectQuery 查询参数
type SelectQuery[W Conditions, R ~string] struct {
	Where    W
	Joins    []Join[R]
	Identity *identity.Identity

	// 扩展: 排序（如 "created_at DESC"）与自定义作用域
	OrderBy string
	Scopes  []func(*gorm.DB) *gorm.DB

	// 仅 GetMany / GetManyWithCount 使用；0 表示不限制
	Limit  int
	Offset int
}

// InsertQuery 插入参数
type InsertQuery[E any] struct {
	Entity   *E
	Identity *identity.Identity
}

// UpdateQuery 更新参数
// Values 的键可以是列名或结构体字段名
type UpdateQuery struct {
	ID       int64
	Values   map[string]any
	Identity *identity.Identity
}

// DeleteQuery 删除参数
type DeleteQuery struct {
	ID       int64
	Identity *identity.Identity
}

// Page 带总数的查询结果
// Count 为 limit/offset 之前的匹配总数
type Page[E any] struct {
	Entities []E   `json:"entities"`
	Count    int64 `json:"count"`
}

// Repository 按身份隔离的通用仓储接口
type Repository[E any, W Conditions, R ~string] interface {
	// GetOne 查询单条；不存在（或属于其他租户）时返回 nil, nil
	GetOne(ctx context.Context, q SelectQuery[W, R]) (*E, error)

	// GetMany 查询多条
	GetMany(ctx context.Context, q SelectQuery[W, R]) ([]E, error)

	// GetManyWithCount 在同一快照内查询分页数据与总数
	GetManyWithCount(ctx context.Context, q SelectQuery[W, R]) (*Page[E], error)

	// InsertOne 插入；组织不匹配时返回 Conflict
	InsertOne(ctx context.Context, q InsertQuery[E]) (*E, error)

	// UpdateOne 更新并返回最新数据；影响行数为零时返回 Conflict
	UpdateOne(ctx context.Context, q UpdateQuery) (*E, error)

	// DeleteOne 物理删除并返回被删除的数据
	DeleteOne(ctx context.Context, q DeleteQuery) (*E, error)

	// SoftDeleteOne 软删除并返回被删除的数据
	SoftDeleteOne(ctx context.Context, q DeleteQuery) (*E, error)

	// Execute 在事务中执行；已处于事务时直接加入
	Execute(ctx context.Context, fn func(ctx context.Context) error) error

	// Table 表名
	Table() string
}
