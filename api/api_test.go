package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/aisgo/posibel/identity"
	"github.com/aisgo/posibel/logger"
	"github.com/aisgo/posibel/middleware"
	"github.com/aisgo/posibel/response"
	"github.com/aisgo/posibel/service"
	"github.com/aisgo/posibel/store"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var authCfg = middleware.AuthConfig{Secret: "api-test-secret"}

const password = "correct-horse-battery"

type harness struct {
	t   *testing.T
	app *fiber.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, store.AutoMigrate(t.Context(), db))

	stores := store.New(db)
	d := service.Deps{Stores: stores, HashCost: bcrypt.MinCost}
	users := service.NewUserService(d)
	h := NewHandlers(stores, service.NewOrganizationService(d, users), users, service.NewAuthService(d))

	app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(logger.NewNop())})
	Mount(app, h.Routes(), Chain{Authenticate: middleware.Authenticate(authCfg)})
	return &harness{t: t, app: app}
}

func (h *harness) do(method, path, token string, body any) (int, response.Result) {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := h.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(h.t, err)
	defer resp.Body.Close()

	// 雪花 ID 超出 float64 精度
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var out response.Result
	require.NoError(h.t, dec.Decode(&out))
	return resp.StatusCode, out
}

// register 注册组织并登录，返回令牌与组织 ID
func (h *harness) register(name, email string) (string, int64) {
	h.t.Helper()

	status, res := h.do(http.MethodPost, "/organizations/register", "", service.RegisterOrganizationDTO{
		OrganizationName:     name,
		Email:                email,
		Password:             password,
		ConfirmationPassword: password,
		FirstName:            "Ada",
		LastName:             "Lovelace",
	})
	require.Equal(h.t, http.StatusCreated, status, res.Msg)

	status, res = h.do(http.MethodPost, "/auth", "", service.AuthenticateDTO{Email: email, Password: password})
	require.Equal(h.t, http.StatusOK, status, res.Msg)

	raw, err := json.Marshal(res.Data)
	require.NoError(h.t, err)
	var login struct {
		User     map[string]any     `json:"user"`
		Identity *identity.Identity `json:"identity"`
	}
	require.NoError(h.t, json.Unmarshal(raw, &login))
	_, hasPassword := login.User["password"]
	require.False(h.t, hasPassword)

	id := login.Identity
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &middleware.Claims{
		UserID:         id.UserID,
		OrganizationID: id.OrganizationID,
		RoleID:         id.RoleID,
		Policies:       id.Policies,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(authCfg.Secret))
	require.NoError(h.t, err)
	return token, id.OrganizationID
}

func TestGetByIDIsTenantScoped(t *testing.T) {
	h := newHarness(t)
	tokenA, orgA := h.register("Alpha", "owner@alpha.io")
	tokenB, orgB := h.register("Beta", "owner@beta.io")

	path := "/organizations/" + strconv.FormatInt(orgB, 10)
	status, res := h.do(http.MethodGet, path, tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Beta", res.Data.(map[string]any)["name"])

	// 其他租户的行与不存在的行无法区分
	status, _ = h.do(http.MethodGet, path, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = h.do(http.MethodGet, "/organizations/999999", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = h.do(http.MethodGet, "/organizations/"+strconv.FormatInt(orgA, 10), "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodGet, "/organizations/abc", tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegisterAndListUsers(t *testing.T) {
	h := newHarness(t)
	tokenA, _ := h.register("Alpha", "owner@alpha.io")
	tokenB, _ := h.register("Beta", "owner@beta.io")

	status, res := h.do(http.MethodGet, "/users?limit=1", tokenA, nil)
	require.Equal(t, http.StatusOK, status, res.Msg)
	page := res.Data.(map[string]any)
	assert.Equal(t, json.Number("1"), page["total"])

	// 角色 ID 从登录身份中取得
	var claims middleware.Claims
	_, err := jwt.ParseWithClaims(tokenA, &claims, func(*jwt.Token) (any, error) { return []byte(authCfg.Secret), nil })
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		status, res = h.do(http.MethodPost, "/users", tokenA, service.RegisterUserDTO{
			RoleID:               claims.RoleID,
			Email:                fmt.Sprintf("clerk%d@alpha.io", i),
			Password:             password,
			ConfirmationPassword: password,
			FirstName:            "Grace",
			LastName:             "Hopper",
		})
		require.Equal(t, http.StatusCreated, status, res.Msg)
	}

	status, res = h.do(http.MethodGet, "/users?limit=2&offset=0", tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	page = res.Data.(map[string]any)
	assert.Equal(t, json.Number("3"), page["total"])
	assert.Len(t, page["list"], 2)

	status, res = h.do(http.MethodGet, "/users", tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, json.Number("1"), res.Data.(map[string]any)["total"])

	// 重复邮箱
	status, _ = h.do(http.MethodPost, "/users", tokenB, service.RegisterUserDTO{
		RoleID:               claims.RoleID,
		Email:                "clerk0@alpha.io",
		Password:             password,
		ConfirmationPassword: password,
		FirstName:            "Grace",
		LastName:             "Hopper",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = h.do(http.MethodGet, "/users?limit=1000", tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	h.register("Alpha", "owner@alpha.io")

	status, wrong := h.do(http.MethodPost, "/auth", "", service.AuthenticateDTO{Email: "owner@alpha.io", Password: "not-the-password"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, unknown := h.do(http.MethodPost, "/auth", "", service.AuthenticateDTO{Email: "ghost@alpha.io", Password: password})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, wrong.Msg, unknown.Msg)

	status, _ = h.do(http.MethodPost, "/auth", "", "not an object")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPolicyIsEnforcedPerRoute(t *testing.T) {
	h := newHarness(t)
	_, orgA := h.register("Alpha", "owner@alpha.io")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &middleware.Claims{
		UserID: 1, OrganizationID: orgA, RoleID: 1,
		Policies:         []identity.Policy{identity.PolicyShopAll},
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(authCfg.Secret))
	require.NoError(t, err)

	status, _ := h.do(http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = h.do(http.MethodGet, "/shops/1", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
