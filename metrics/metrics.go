package metrics

import (
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

/* ========================================================================
 * Prometheus Metrics
 * ========================================================================
 * 全部注册在默认 registry，名称前缀 posibel_
 * 范围: HTTP、数据库、租户隔离拒绝、授权决策、分布式锁
 * ======================================================================== */

const namespace = "posibel"

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func histogram(subsystem, name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	}, labels)
}

var (
	HTTPRequestTotal    = counter("http", "request_total", "HTTP requests by route template", "method", "path", "status")
	HTTPRequestDuration = histogram("http", "request_duration_seconds", "HTTP request latency", "method", "path", "status")

	// DBQueryDuration 仓储层单次操作耗时
	DBQueryDuration = histogram("db", "query_duration_seconds", "Repository operation latency", "operation", "table")

	// RepositoryConflictTotal reason: affected_zero / tenant_mismatch / foreign_reference
	RepositoryConflictTotal = counter("repository", "conflict_total", "Writes rejected by tenant isolation", "table", "reason")

	// AuthorizationDecisionTotal result: allowed / denied / unauthenticated / malformed
	AuthorizationDecisionTotal = counter("auth", "decision_total", "Authorization decisions by policy", "policy", "result")

	LockAcquireTotal = counter("lock", "acquire_total", "Distributed lock acquisitions", "name", "acquired")
)

// RegisterMetricsEndpoint 挂载 GET /metrics
func RegisterMetricsEndpoint(app *fiber.App) {
	serve := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c fiber.Ctx) error {
		serve(c.RequestCtx())
		return nil
	})
}
