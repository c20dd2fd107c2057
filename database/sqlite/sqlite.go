package sqlite

import (
	"fmt"
	"time"

	"github.com/aisgo/posibel/database"
	"github.com/aisgo/posibel/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

/* ========================================================================
 * SQLite - 嵌入式数据库连接
 * ========================================================================
 * 职责: 本地开发与测试使用的单文件 / 内存数据库
 * 注意: 内存库每个连接都是独立数据库，因此固定为单连接
 * ======================================================================== */

// Config SQLite 配置
type Config struct {
	Path          string        `yaml:"path"` // 文件路径，":memory:" 为内存库
	SlowThreshold time.Duration `yaml:"slow_threshold"`
}

// Params fx 注入参数
type Params struct {
	fx.In

	Lc     fx.Lifecycle `optional:"true"`
	Config Config
	Logger *logger.Logger
}

// NewDB 初始化 SQLite 连接
func NewDB(p Params) (*gorm.DB, error) {
	path := p.Config.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(path), database.NewGormConfig(p.Logger, p.Config.SlowThreshold))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := database.ApplyPool(db, database.PoolConfig{MaxIdleConns: 1, MaxOpenConns: 1}); err != nil {
		return nil, err
	}
	// 连接过期会丢失内存库
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	p.Logger.Info("sqlite opened", zap.String("path", path))
	database.BindLifecycle(p.Lc, db, p.Logger, "sqlite")
	return db, nil
}
