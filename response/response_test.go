package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	aiserrors "github.com/aisgo/posibel/errors"
	"github.com/gofiber/fiber/v3"
)

func TestError_BizError(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/err", func(c fiber.Ctx) error {
		return Error(c, aiserrors.New(aiserrors.ErrCodeInvalidArgument, "bad request"))
	})

	req := httptest.NewRequest("GET", "/err", nil)
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", resp.StatusCode, fiber.StatusBadRequest)
	}

	var got Result
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Code != int(aiserrors.ErrCodeInvalidArgument) {
		t.Fatalf("unexpected code: got=%d want=%d", got.Code, int(aiserrors.ErrCodeInvalidArgument))
	}
	if got.Msg != "bad request" {
		t.Fatalf("unexpected msg: got=%q want=%q", got.Msg, "bad request")
	}
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{nil, fiber.StatusOK},
		{aiserrors.ErrNotFound, fiber.StatusNotFound},
		{aiserrors.ErrConflict, fiber.StatusConflict},
		{aiserrors.ErrMalformedIdentity, fiber.StatusConflict},
		{aiserrors.ErrUnauthenticated, fiber.StatusUnauthorized},
		{aiserrors.Wrap(aiserrors.ErrCodeTimeout, "slow", nil), fiber.StatusGatewayTimeout},
		{errPlain("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Fatalf("StatusOf(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

func TestError_PlainErrorHidesDetails(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/err", func(c fiber.Ctx) error {
		return Error(c, errPlain("dial tcp 10.0.0.1:5432: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/err", nil), fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var got Result
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError || got.Msg != "internal server error" {
		t.Fatalf("unexpected response: %d %q", resp.StatusCode, got.Msg)
	}
}

func TestCreatedAndPageData(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Post("/things", func(c fiber.Ctx) error { return Created(c, fiber.Map{"id": "1"}) })
	app.Get("/things", func(c fiber.Ctx) error { return PageData(c, []string{"a", "b"}, 7, 2, 2) })

	resp, err := app.Test(httptest.NewRequest("POST", "/things", nil), fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/things", nil), fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var got struct {
		Data PageResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Data.Total != 7 || got.Data.Page != 2 || got.Data.PageSize != 2 {
		t.Fatalf("unexpected page: %+v", got.Data)
	}
}

func TestErrorWithCode_KeepsBizMessage(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/err", func(c fiber.Ctx) error {
		return ErrorWithCode(c, fiber.StatusTooManyRequests, aiserrors.New(aiserrors.ErrCodeUnavailable, "slow down"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/err", nil), fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var got Result
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests || got.Msg != "slow down" || got.Code != int(aiserrors.ErrCodeUnavailable) {
		t.Fatalf("unexpected response: %d %+v", resp.StatusCode, got)
	}
}
