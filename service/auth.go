package service

import (
	"context"

	"github.com/aisgo/posibel/identity"
	"github.com/aisgo/posibel/model"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
// 令牌签发不在此处，调用方用返回的 Identity 自行签发
type AuthService struct {
	d Deps
}

// NewAuthService 创建认证服务
func NewAuthService(d Deps) *AuthService {
	return &AuthService{d: d.withDefaults()}
}

// Authenticate 校验邮箱与密码
// 邮箱不存在与密码错误返回同一个 ErrBadCredentials
func (s *AuthService) Authenticate(ctx context.Context, dto AuthenticateDTO) (*model.User, *identity.Identity, error) {
	if err := s.d.Validator.Check(&dto); err != nil {
		return nil, nil, err
	}

	user, err := s.d.Stores.Users.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return nil, nil, ErrBadCredentials
	}

	return user.Sanitize(), user.Identity(), nil
}
