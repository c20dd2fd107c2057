package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aisgo/posibel/api"
	"github.com/aisgo/posibel/cache"
	"github.com/aisgo/posibel/cache/redis"
	"github.com/aisgo/posibel/database/mysql"
	"github.com/aisgo/posibel/database/postgres"
	"github.com/aisgo/posibel/database/sqlite"
	"github.com/aisgo/posibel/logger"
	"github.com/aisgo/posibel/middleware"
	"github.com/aisgo/posibel/mq"
	_ "github.com/aisgo/posibel/mq/kafka"
	"github.com/aisgo/posibel/repository"
	"github.com/aisgo/posibel/service"
	"github.com/aisgo/posibel/store"
	transporthttp "github.com/aisgo/posibel/transport/http"
	"github.com/aisgo/posibel/utils/id-generator/snowflake"
	"github.com/aisgo/posibel/validator"

	"github.com/gofiber/fiber/v3"
	"github.com/ulule/limiter/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* ========================================================================
 * Application - 依赖装配
 * ========================================================================
 * 职责: 用 fx 把配置、存储、服务与 HTTP 路由装配为一个应用
 * 顺序: logger -> snowflake -> database (+migrate) -> cache / mq -> services -> http
 * ======================================================================== */

const migrateTimeout = time.Minute

// Module 返回完整应用的 fx 选项
func Module(cfg *Config) fx.Option {
	return fx.Options(
		fx.Supply(
			cfg.HTTP,
			cfg.Redis,
			&cfg.MQ,
		),
		fx.Provide(func() *logger.Logger { return logger.NewLogger(cfg.Logger) }),
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Logger}
			l.UseLogLevel(zap.DebugLevel)
			return l
		}),

		cache.Module,
		mq.Module,

		fx.Provide(
			func(lc fx.Lifecycle, log *logger.Logger) (*gorm.DB, error) {
				return openDatabase(lc, cfg.Database, log)
			},
			func(db *gorm.DB) *store.Stores {
				return store.New(db, repository.WithTimeout(cfg.Database.QueryTimeout))
			},
			validator.New,
			emailLocker,
			func(p mq.Producer, log *logger.Logger) *service.Publisher {
				return service.NewPublisher(p, cfg.Events.TopicPrefix, log)
			},
			func(stores *store.Stores, v *validator.Validator, log *logger.Logger, locker service.EmailLocker, pub *service.Publisher) service.Deps {
				return service.Deps{
					Stores:    stores,
					Validator: v,
					Logger:    log,
					Locker:    locker,
					Events:    pub,
					HashCost:  cfg.Security.BcryptCost,
				}
			},
			service.NewUserService,
			service.NewOrganizationService,
			service.NewAuthService,
			api.NewHandlers,
			func(c *redis.Client) (*limiter.Limiter, error) {
				if !cfg.RateLimit.Enabled {
					return nil, nil
				}
				if c == nil {
					return middleware.NewRateLimiter(cfg.RateLimit, nil)
				}
				return middleware.NewRateLimiter(cfg.RateLimit, c.Raw())
			},
			fx.Annotate(
				func(h *api.Handlers, lim *limiter.Limiter) transporthttp.RouteRegistrar {
					chain := api.Chain{
						Authenticate: middleware.Authenticate(cfg.Auth),
						RateLimit:    middleware.RateLimit(lim),
					}
					return func(r fiber.Router) { api.Mount(r, h.Routes(), chain) }
				},
				fx.ResultTags(`group:"http.routes"`),
			),
			fx.Annotate(redisCheck, fx.ResultTags(`group:"http.readiness"`)),
			transporthttp.NewHTTPServer,
		),

		fx.Invoke(func(*fiber.App) {}),
	)
}

// New 构建应用；snowflake 节点需要在任何写入之前初始化
func New(cfg *Config, opts ...fx.Option) (*fx.App, error) {
	if err := snowflake.Init(cfg.Snowflake.NodeID); err != nil {
		return nil, err
	}
	app := fx.New(append([]fx.Option{Module(cfg)}, opts...)...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

func openDatabase(lc fx.Lifecycle, cfg DatabaseConfig, log *logger.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverPostgres:
		db, err = postgres.NewDB(postgres.Params{Lc: lc, Config: cfg.Postgres, Logger: log})
	case DriverMySQL:
		db, err = mysql.NewDB(mysql.Params{Lc: lc, Config: cfg.MySQL, Logger: log})
	case DriverSQLite:
		db, err = sqlite.NewDB(sqlite.Params{Lc: lc, Config: cfg.SQLite, Logger: log})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()
		if err := store.AutoMigrate(ctx, db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("schema migrated", zap.String("driver", cfg.Driver))
	}
	return db, nil
}

// emailLocker redis 关闭时返回 nil 接口，而不是包着 nil 指针的接口
func emailLocker(l *redis.Locker) service.EmailLocker {
	if l == nil {
		return nil
	}
	return l
}

func redisCheck(c *redis.Client) transporthttp.ReadinessCheck {
	check := transporthttp.ReadinessCheck{Name: "redis"}
	if c != nil {
		check.Check = c.Ping
	}
	return check
}
