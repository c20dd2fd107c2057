package mysql

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/aisgo/posibel/database"
	"github.com/aisgo/posibel/logger"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

/* ========================================================================
 * MySQL - 关系型数据库连接
 * ========================================================================
 * 职责: 提供 MySQL 连接池、GORM 集成
 * 技术: gorm.io/driver/mysql + go-sql-driver/mysql (DSN 构造)
 * ======================================================================== */

// Config MySQL 配置
type Config struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	DBName        string        `yaml:"dbname"`
	Charset       string        `yaml:"charset"`        // 字符集，默认 utf8mb4
	Loc           string        `yaml:"loc"`            // 时区，默认 UTC
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

// DriverConfig 转换为 go-sql-driver 配置
// parseTime 始终开启，created_at / updated_at 需要扫描为 time.Time
func (c Config) DriverConfig() (*mysqldriver.Config, error) {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}

	locName := c.Loc
	if locName == "" {
		locName = "UTC"
	}
	loc, err := time.LoadLocation(locName)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", locName, err)
	}

	dc := mysqldriver.NewConfig()
	dc.User = c.User
	dc.Passwd = c.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	dc.DBName = c.DBName
	dc.ParseTime = true
	dc.Loc = loc
	dc.Params = map[string]string{"charset": charset}
	return dc, nil
}

// NewDB 初始化 MySQL 连接
func NewDB(p Params) (*gorm.DB, error) {
	dc, err := p.Config.DriverConfig()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSNConfig: dc,
	}), database.NewGormConfig(p.Logger, p.Config.SlowThreshold))
	if err != nil {
		return nil, fmt.Errorf("open mysql %s@%s: %w", dc.User, dc.Addr, err)
	}

	if err := database.ApplyPool(db, p.Config.PoolConfig); err != nil {
		return nil, err
	}

	p.Logger.Info("mysql connected", zap.String("addr", dc.Addr), zap.String("db", dc.DBName))
	database.BindLifecycle(p.Lc, db, p.Logger, "mysql")
	return db, nil
}
