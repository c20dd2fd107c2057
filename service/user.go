package service

import (
	"context"

	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/identity"
	"github.com/aisgo/posibel/model"
	"github.com/aisgo/posibel/repository"
	"github.com/aisgo/posibel/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 用户服务
type UserService struct {
	d Deps
}

// NewUserService 创建用户服务
func NewUserService(d Deps) *UserService {
	return &UserService{d: d.withDefaults()}
}

// RegisterUser 注册用户
//
// 邮箱全局唯一；id 不为 nil 时以身份中的组织为准（忽略 dto.OrganizationID），
// 角色必须属于该组织。
// ctx 已携带事务时加入该事务，事件由外层在提交后发布。
func (s *UserService) RegisterUser(ctx context.Context, dto RegisterUserDTO, id *identity.Identity) (*model.User, error) {
	if err := s.d.Validator.Check(&dto); err != nil {
		return nil, err
	}

	outer := repository.InTransaction(ctx)
	if !outer {
		release, err := holdEmail(ctx, s.d.Locker, store.NormalizeEmail(dto.Email))
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var user *model.User
	err := s.d.Stores.Transactor.Execute(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.register(ctx, dto, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !outer {
		s.d.Events.Publish(ctx, EventUserRegistered, user.OrganizationID, UserRegistered{
			UserID:         user.ID,
			OrganizationID: user.OrganizationID,
			RoleID:         user.RoleID,
			Email:          user.Email,
		})
	}
	return user.Sanitize(), nil
}

// register 检查邮箱、哈希密码并插入；调用方负责事务与加锁
func (s *UserService) register(ctx context.Context, dto RegisterUserDTO, id *identity.Identity) (*model.User, error) {
	email := store.NormalizeEmail(dto.Email)

	orgID := dto.OrganizationID
	if id != nil {
		orgID = id.OrganizationID
	}
	if orgID <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "organizationId is required")
	}

	exists, err := s.d.Stores.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.d.HashCost)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, "hash password", err)
	}

	user, err := s.d.Stores.Users.InsertOne(ctx, repository.InsertQuery[model.User]{
		Entity: &model.User{
			Email:          email,
			FirstName:      dto.FirstName,
			LastName:       dto.LastName,
			Password:       string(hash),
			OrganizationID: orgID,
			RoleID:         dto.RoleID,
		},
		Identity: id,
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.d.Logger.WithContext(ctx).Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("organization_id", user.OrganizationID),
	)
	return user, nil
}
