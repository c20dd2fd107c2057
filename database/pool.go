package database

import (
	"context"
	"time"

	"github.com/aisgo/posibel/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* ========================================================================
 * Connection Pool - 连接池配置
 * ========================================================================
 * 职责: 统一各驱动的连接池默认值与生命周期（启动打开 / 停止关闭）
 * ======================================================================== */

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int           `yaml:"max_idle_conns"`     // 最大空闲连接数
	MaxOpenConns    int           `yaml:"max_open_conns"`     // 最大打开连接数
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`  // 连接最大生命周期
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"` // 空闲连接最大时间
}

// ApplyPool 设置连接池参数（应用默认值）
func ApplyPool(db *gorm.DB, cfg PoolConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 10
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 25
	}

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 1 * time.Hour
	}

	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 20 * time.Minute
	}

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	return nil
}

// NewGormConfig 构造统一的 gorm.Config
// TranslateError 开启后唯一键 / 外键冲突转换为 gorm.ErrDuplicatedKey / ErrForeignKeyViolated
func NewGormConfig(log *logger.Logger, slowThreshold time.Duration) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         NewZapGormLogger(log.Logger, WithSlowThreshold(slowThreshold)),
		NowFunc:        func() time.Time {
			return time.Now().UTC()
		},
	}
}

// BindLifecycle 在应用停止时关闭连接池
func BindLifecycle(lc fx.Lifecycle, db *gorm.DB, log *logger.Logger, name string) {
	if lc == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			log.Info("closing database pool", zap.String("driver", name))
			return sqlDB.Close()
		},
	})
}
