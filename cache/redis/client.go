package redis

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/aisgo/posibel/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

/* ========================================================================
 * Redis Client - 注册邮箱锁 + 限流存储
 * ========================================================================
 * 技术: go-redis/v9
 * 说明: enabled=false 时 NewClient 返回 nil，锁与限流退化为单实例行为
 * ======================================================================== */

// Config Redis 配置
type Config struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr 返回 host:port
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Options 转换为 go-redis 选项，零值沿用 go-redis 默认
func (c Config) Options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

// Client Redis 客户端
type Client struct {
	rdb *redis.Client
	log *logger.Logger
}

type ClientParams struct {
	fx.In
	Lc     fx.Lifecycle
	Config Config
	Logger *logger.Logger
}

// Wrap 包装已有的 go-redis 客户端
func Wrap(rdb *redis.Client, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{rdb: rdb, log: log}
}

// NewClient 创建客户端；启动时 Ping 失败则应用启动失败
func NewClient(p ClientParams) *Client {
	if !p.Config.Enabled {
		p.Logger.Info("redis disabled")
		return nil
	}

	client := Wrap(redis.NewClient(p.Config.Options()), p.Logger)
	addr := zap.String("addr", p.Config.Addr())

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				p.Logger.Error("redis ping failed", addr, zap.Error(err))
				return err
			}
			p.Logger.Info("redis connected", addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("closing redis", addr)
			return client.rdb.Close()
		},
	})
	return client
}

// Raw 底层客户端，供限流存储使用
func (c *Client) Raw() *redis.Client {
	return c.rdb
}

// SetNX 仅在 key 不存在时写入
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

// Exists 存在的 key 数量
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Exists(ctx, keys...).Result()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
