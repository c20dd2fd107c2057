package repository

import (
	"context"
	"database/sql"
)

/* ========================================================================
 * Page Repository Implementation - 带总数查询
 * ========================================================================
 * 职责: 在同一事务快照内完成计数与分页，避免并发写入造成总数与页面不一致
 * ======================================================================== */

// GetManyWithCount 分页查询并返回 limit/offset 之前的总数
func (r *RepositoryImpl[E, W, R]) GetManyWithCount(ctx context.Context, q SelectQuery[W, R]) (*Page[E], error) {
	ctx, done := r.begin(ctx, "get_many_with_count")
	defer done()

	var page *Page[E]
	err := execute(ctx, r.db, r.snapshotOptions(), func(ctx context.Context) error {
		countDB, err := r.buildSelect(ctx, q, false)
		if err != nil {
			return err
		}
		var total int64
		if err := countDB.Count(&total).Error; err != nil {
			return translateError(ctx, err)
		}

		list, err := r.findList(ctx, q)
		if err != nil {
			return err
		}

		page = &Page[E]{Entities: list, Count: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// snapshotOptions 可重复读只读事务
// SQLite 不支持设置隔离级别，且连接唯一，事务本身即串行
func (r *RepositoryImpl[E, W, R]) snapshotOptions() *sql.TxOptions {
	switch r.db.Dialector.Name() {
	case "postgres", "mysql":
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	default:
		return nil
	}
}
