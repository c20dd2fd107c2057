package http

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/aisgo/posibel/logger"
	"github.com/aisgo/posibel/metrics"
	"github.com/aisgo/posibel/middleware"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* ========================================================================
 * HTTP Server - Fiber v3 HTTP 服务器
 * ========================================================================
 * 职责: 承载业务路由，健康检查，指标暴露
 * 技术: Fiber v3
 * 中间件顺序: recover -> request id -> metrics -> 业务路由
 * ======================================================================== */

const defaultAppName = "posibel"

// Config HTTP 服务器配置
type Config struct {
	Port               int           `yaml:"port"`
	Host               string        `yaml:"host"`
	AppName            string        `yaml:"app_name"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	IdleTimeout        time.Duration `yaml:"idle_timeout"`
	HealthCheckTimeout time.Duration `yaml:"health_check_timeout"`
	BodyLimit          int           `yaml:"body_limit"`

	// EnableRecover 默认 true，测试环境可关闭以直接暴露 panic
	EnableRecover *bool `yaml:"enable_recover"`

	Listen ListenOptions `yaml:"listen"`
}

// Addr 监听地址
func (c Config) Addr() string {
	if c.Host != "" {
		return fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	return fmt.Sprintf(":%d", c.Port)
}

// ListenOptions Fiber ListenConfig 中可由配置文件控制的部分
type ListenOptions struct {
	DisableStartupMessage bool `yaml:"disable_startup_message"`
	EnablePrintRoutes     bool `yaml:"enable_print_routes"`

	// tcp, tcp4, tcp6，默认 tcp4
	ListenerNetwork string `yaml:"listener_network"`

	CertFile       string `yaml:"cert_file"`
	CertKeyFile    string `yaml:"cert_key_file"`
	CertClientFile string `yaml:"cert_client_file"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// 771 (TLS 1.2), 772 (TLS 1.3)
	TLSMinVersion uint16 `yaml:"tls_min_version"`
}

// RouteRegistrar 向 app 注册一组业务路由
type RouteRegistrar func(router fiber.Router)

// ReadinessCheck /readyz 的一项依赖检查，Check 为 nil 表示该依赖未启用
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type ServerParams struct {
	fx.In
	Lc     fx.Lifecycle
	Config Config
	Logger *logger.Logger
	DB     *gorm.DB `optional:"true"`

	ErrorHandler fiber.ErrorHandler `optional:"true"`

	Registrars []RouteRegistrar `group:"http.routes"`
	Checks     []ReadinessCheck `group:"http.readiness"`
}

// NewApp 构建 Fiber 应用（不含生命周期），测试可直接使用
func NewApp(p ServerParams) *fiber.App {
	if p.Logger == nil {
		p.Logger = logger.NewNop()
	}
	appName := p.Config.AppName
	if appName == "" {
		appName = defaultAppName
	}
	errorHandler := p.ErrorHandler
	if errorHandler == nil {
		errorHandler = middleware.NewErrorHandler(p.Logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  orDefault(p.Config.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(p.Config.WriteTimeout, 30*time.Second),
		IdleTimeout:  orDefault(p.Config.IdleTimeout, 120*time.Second),
		BodyLimit:    p.Config.BodyLimit,
		ErrorHandler: errorHandler,
	})

	if p.Config.EnableRecover == nil || *p.Config.EnableRecover {
		app.Use(recoverer.New(recoverer.Config{
			EnableStackTrace: true,
			StackTraceHandler: func(c fiber.Ctx, e interface{}) {
				p.Logger.WithContext(c.Context()).Error("Panic recovered",
					zap.Any("error", e),
					zap.String("path", c.Path()),
					zap.String("method", c.Method()),
				)
			},
		}))
	}
	app.Use(middleware.RequestID())
	app.Use(metrics.HTTPMetricsMiddleware(&metrics.HTTPMiddlewareConfig{
		Skipper: func(c fiber.Ctx) bool {
			switch c.Path() {
			case "/healthz", "/readyz", "/metrics":
				return true
			}
			return false
		},
	}))

	checks := p.Checks
	if p.DB != nil {
		checks = append([]ReadinessCheck{DatabaseCheck(p.DB)}, checks...)
	}
	registerHealthEndpoints(app, checks, orDefault(p.Config.HealthCheckTimeout, 2*time.Second))
	metrics.RegisterMetricsEndpoint(app)

	for _, register := range p.Registrars {
		if register != nil {
			register(app)
		}
	}
	return app
}

// NewHTTPServer 创建 HTTP 服务器并注册生命周期
func NewHTTPServer(p ServerParams) *fiber.App {
	app := NewApp(p)

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := p.Config.Addr()
			listenConfig := buildListenConfig(p.Config.Listen)

			// 端口绑定失败时直接让 fx 启动失败
			listener, err := createListener(addr, listenConfig)
			if err != nil {
				p.Logger.Error("Failed to create HTTP listener", zap.Error(err), zap.String("addr", addr))
				return fmt.Errorf("failed to bind to %s: %w", addr, err)
			}

			go func() {
				p.Logger.Info("Starting HTTP Server", zap.String("addr", addr))
				if err := app.Listener(listener, listenConfig); err != nil {
					p.Logger.Error("HTTP Server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Stopping HTTP Server")
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// buildListenConfig 根据 ListenOptions 构建 Fiber ListenConfig
func buildListenConfig(opts ListenOptions) fiber.ListenConfig {
	config := fiber.ListenConfig{
		DisableStartupMessage: opts.DisableStartupMessage,
		EnablePrintRoutes:     opts.EnablePrintRoutes,
		ListenerNetwork:       opts.ListenerNetwork,
		CertFile:              opts.CertFile,
		CertKeyFile:           opts.CertKeyFile,
		CertClientFile:        opts.CertClientFile,
		ShutdownTimeout:       opts.ShutdownTimeout,
		TLSMinVersion:         opts.TLSMinVersion,
	}
	if config.ListenerNetwork == "" {
		config.ListenerNetwork = "tcp4"
	}
	return config
}

/* ========================================================================
 * Health Check Endpoints
 * ========================================================================
 * /healthz - 存活探针，进程能响应即 200
 * /readyz  - 就绪探针，任一依赖检查失败返回 503
 * ======================================================================== */

// DatabaseCheck 数据库连通性检查
func DatabaseCheck(db *gorm.DB) ReadinessCheck {
	return ReadinessCheck{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

func registerHealthEndpoints(app *fiber.App, checks []ReadinessCheck, timeout time.Duration) {
	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	app.Get("/readyz", func(c fiber.Ctx) error {
		results := make(map[string]string, len(checks)+2)
		healthy := true

		for _, check := range checks {
			if check.Check == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			err := check.Check(ctx)
			cancel()
			if err != nil {
				results[check.Name] = "error: " + err.Error()
				healthy = false
				continue
			}
			results[check.Name] = "ok"
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		results["memory_alloc_mb"] = fmt.Sprintf("%.2f", float64(m.Alloc)/1024/1024)
		results["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

		status, code := "ok", fiber.StatusOK
		if !healthy {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"checks": results,
		})
	})
}
