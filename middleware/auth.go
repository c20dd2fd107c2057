package middleware

import (
	"strings"
	"time"

	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/identity"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
)

/* ========================================================================
 * Authenticate - Bearer Token -> Identity
 * ========================================================================
 * 职责: 校验 HS256 令牌，将 Identity 写入 Locals 与请求 Context
 * 规则:
 *   - 无 Authorization 头: 不设置身份，交给 RequirePolicy 决定（401）
 *   - 令牌无效或过期: 401
 *   - 令牌结构合法但身份字段缺失: 原样写入，由 Authorize 返回 409
 * 说明: 仅校验，不签发
 * ======================================================================== */

const identityLocalKey = "posibel_identity"

// AuthConfig 令牌校验配置
type AuthConfig struct {
	Secret string        `yaml:"secret"`
	Issuer string        `yaml:"issuer"` // 为空时不校验 iss
	Leeway time.Duration `yaml:"leeway"`
}

// Claims 令牌载荷
type Claims struct {
	UserID         int64             `json:"userId"`
	OrganizationID int64             `json:"organizationId"`
	RoleID         int64             `json:"roleId"`
	Policies       []identity.Policy `json:"policies"`
	jwt.RegisteredClaims
}

// Identity 转换为身份
func (c *Claims) Identity() *identity.Identity {
	return &identity.Identity{
		UserID:         c.UserID,
		OrganizationID: c.OrganizationID,
		RoleID:         c.RoleID,
		Policies:       c.Policies,
	}
}

// Authenticate 令牌认证中间件
func Authenticate(cfg AuthConfig) fiber.Handler {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(cfg.Secret)

	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return errors.New(errors.ErrCodeUnauthenticated, "malformed authorization header")
		}

		claims := &Claims{}
		if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
			return key, nil
		}); err != nil {
			return errors.Wrap(errors.ErrCodeUnauthenticated, "invalid token", err)
		}

		id := claims.Identity()
		c.Locals(identityLocalKey, id)
		c.SetContext(identity.NewContext(c.Context(), id))
		return c.Next()
	}
}

// IdentityFrom 读取当前请求的身份；未认证时返回 nil
func IdentityFrom(c fiber.Ctx) *identity.Identity {
	id, _ := c.Locals(identityLocalKey).(*identity.Identity)
	return id
}
