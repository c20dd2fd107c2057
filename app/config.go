package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/aisgo/posibel/cache/redis"
	"github.com/aisgo/posibel/conf"
	"github.com/aisgo/posibel/database/mysql"
	"github.com/aisgo/posibel/database/postgres"
	"github.com/aisgo/posibel/database/sqlite"
	"github.com/aisgo/posibel/logger"
	"github.com/aisgo/posibel/middleware"
	"github.com/aisgo/posibel/mq"
	transporthttp "github.com/aisgo/posibel/transport/http"
)

/* ========================================================================
 * Application Config - 应用配置
 * ========================================================================
 * 职责: 聚合各模块配置，加载后统一校验
 * ======================================================================== */

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config 应用配置
type Config struct {
	Logger    logger.Config              `yaml:"logger"`
	HTTP      transporthttp.Config       `yaml:"http"`
	Database  DatabaseConfig             `yaml:"database"`
	Redis     redis.Config               `yaml:"redis"`
	MQ        mq.Config                  `yaml:"mq"`
	Auth      middleware.AuthConfig      `yaml:"auth"`
	RateLimit middleware.RateLimitConfig `yaml:"rate_limit"`
	Events    EventsConfig               `yaml:"events"`
	Snowflake SnowflakeConfig            `yaml:"snowflake"`
	Security  SecurityConfig             `yaml:"security"`
}

// DatabaseConfig 按 driver 选择其中一个驱动配置
type DatabaseConfig struct {
	Driver       string          `yaml:"driver"`
	AutoMigrate  bool            `yaml:"auto_migrate"`
	QueryTimeout time.Duration   `yaml:"query_timeout"` // 单次仓储调用上限，0 不限制
	Postgres     postgres.Config `yaml:"postgres"`
	MySQL        mysql.Config    `yaml:"mysql"`
	SQLite       sqlite.Config   `yaml:"sqlite"`
}

type EventsConfig struct {
	TopicPrefix string `yaml:"topic_prefix"`
}

type SnowflakeConfig struct {
	NodeID int64 `yaml:"node_id"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"` // 0 使用 bcrypt.DefaultCost
}

// Load 从 dir/name.yaml 加载配置，APP_ 前缀环境变量可覆盖
func Load(dir, name string) (*Config, error) {
	cfg := &Config{MQ: *mq.DefaultConfig()}
	if err := conf.NewLoader(dir, name, "yaml").Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验启动前即可发现的配置错误
func (c *Config) Validate() error {
	if err := logger.ValidateConfig(c.Logger); err != nil {
		return err
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.QueryTimeout < 0 {
		return fmt.Errorf("database.query_timeout must not be negative")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	if c.MQ.Type == mq.TypeKafka && (c.MQ.Kafka == nil || len(c.MQ.Kafka.Brokers) == 0) {
		return fmt.Errorf("mq.kafka.brokers is required when mq.type is kafka")
	}
	return nil
}
