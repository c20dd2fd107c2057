package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aisgo/posibel/errors"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T) string {
	t.Helper()
	app := fiber.New()
	RegisterMetricsEndpoint(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestMetricsEndpointExposesDomainCounters(t *testing.T) {
	RepositoryConflictTotal.WithLabelValues("shop", "affected_zero").Inc()
	LockAcquireTotal.WithLabelValues("register_email", "true").Inc()
	AuthorizationDecisionTotal.WithLabelValues("users.create", "denied").Inc()

	body := scrape(t)
	for _, want := range []string{
		`posibel_repository_conflict_total{reason="affected_zero",table="shop"}`,
		`posibel_lock_acquire_total{acquired="true",name="register_email"}`,
		`posibel_auth_decision_total{policy="users.create",result="denied"}`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %s", want)
		}
	}
}

func TestHTTPMetricsMiddlewareUsesErrorStatus(t *testing.T) {
	app := fiber.New()
	app.Use(HTTPMetricsMiddleware(&HTTPMiddlewareConfig{
		Skipper: func(c fiber.Ctx) bool { return c.Path() == "/skipped" },
	}))
	app.Get("/widgets/:id", func(fiber.Ctx) error {
		return errors.New(errors.ErrCodeNotFound, "widget not found")
	})
	app.Get("/skipped", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })

	for _, path := range []string{"/widgets/1", "/widgets/2", "/skipped"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), fiber.TestConfig{Timeout: 2 * time.Second})
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
	}

	if got := testutil.ToFloat64(HTTPRequestTotal.WithLabelValues("GET", "/widgets/:id", "404")); got != 2 {
		t.Fatalf("expected 2 requests on route template, got %v", got)
	}
	if got := testutil.ToFloat64(HTTPRequestTotal.WithLabelValues("GET", "/skipped", "418")); got != 0 {
		t.Fatalf("skipped request was counted: %v", got)
	}
}
