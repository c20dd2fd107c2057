package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/aisgo/posibel/database"
	"github.com/aisgo/posibel/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

/* ========================================================================
 * PostgreSQL - 关系型数据库连接
 * ========================================================================
 * 职责: 提供 PostgreSQL 连接池、GORM 集成
 * 技术: gorm.io/driver/postgres (pgx)
 * ======================================================================== */

// Config PostgreSQL 配置
type Config struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	DBName        string        `yaml:"dbname"`
	SSLMode       string        `yaml:"sslmode"`
	Schema        string        `yaml:"schema"`         // 数据库 schema，默认 public
	SlowThreshold time.Duration `yaml:"slow_threshold"` // 慢查询阈值

	database.PoolConfig `yaml:",inline"`
}

// Params fx 注入参数
type Params struct {
	fx.In

	Lc     fx.Lifecycle `optional:"true"`
	Config Config
	Logger *logger.Logger
}

// DSN 构造 URL 形式的连接串
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// NewDB 初始化 Postgres 连接
func NewDB(p Params) (*gorm.DB, error) {
	dsn := p.Config.DSN()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: dsn,
	}), database.NewGormConfig(p.Logger, p.Config.SlowThreshold))
	if err != nil {
		return nil, fmt.Errorf("open postgres %s: %w", redactDSN(dsn), err)
	}

	if err := database.ApplyPool(db, p.Config.PoolConfig); err != nil {
		return nil, err
	}

	p.Logger.Info("postgres connected", zap.String("dsn", redactDSN(dsn)))
	database.BindLifecycle(p.Lc, db, p.Logger, "postgres")
	return db, nil
}

// redactDSN 密码替换为 xxxxx，用于日志
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<unparseable dsn>"
	}
	return u.Redacted()
}
