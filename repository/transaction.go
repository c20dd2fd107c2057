package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

/* ========================================================================
 * Transaction - 事务支持
 * ========================================================================
 * 职责: 显式 begin / commit / rollback，事务通过 Context 传递
 * 规则:
 *   - fn 返回错误或 panic 时回滚，错误原样向上传递
 *   - 任何退出路径都会释放连接
 *   - Context 中已存在事务时直接加入，不开启嵌套事务
 * ======================================================================== */

type ctxTxKey struct{}

// txFrom 返回 ctx 中的事务，没有则返回 db；两者都绑定 ctx
func txFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(ctxTxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Transactor 跨仓储事务执行器
type Transactor struct {
	db *gorm.DB
}

// NewTransactor 创建事务执行器
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// Execute 在事务中执行 fn
// fn 内所有使用同一 ctx 的仓储调用共享该事务
func (t *Transactor) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return execute(ctx, t.db, nil, fn)
}

// InTransaction 判断 Context 是否已携带事务
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(ctxTxKey{}).(*gorm.DB)
	return ok
}

// Execute 在事务中执行操作
func (r *RepositoryImpl[E, W, R]) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return execute(ctx, r.db, nil, fn)
}

func execute(ctx context.Context, db *gorm.DB, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}

	var txOpts []*sql.TxOptions
	if opts != nil {
		txOpts = append(txOpts, opts)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, ctxTxKey{}, tx))
	}, txOpts...)
	return translateError(ctx, err)
}
