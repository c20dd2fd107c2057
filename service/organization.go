package service

import (
	"context"

	"github.com/aisgo/posibel/identity"
	"github.com/aisgo/posibel/model"
	"github.com/aisgo/posibel/repository"
	"github.com/aisgo/posibel/store"

	"go.uber.org/zap"
)

// OrganizationService 组织服务
type OrganizationService struct {
	d     Deps
	users *UserService
}

// NewOrganizationService 创建组织服务
func NewOrganizationService(d Deps, users *UserService) *OrganizationService {
	return &OrganizationService{d: d.withDefaults(), users: users}
}

// RegisterOrganization 注册组织
//
// 在同一事务中: 创建组织 -> 创建管理员角色(*.*) -> 创建首个用户 -> 重新查询
// 组织（含 users / roles）。任一步失败整体回滚。
func (s *OrganizationService) RegisterOrganization(ctx context.Context, dto RegisterOrganizationDTO) (*model.Organization, error) {
	if err := s.d.Validator.Check(&dto); err != nil {
		return nil, err
	}

	release, err := holdEmail(ctx, s.d.Locker, store.NormalizeEmail(dto.Email))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		org   *model.Organization
		role  *model.Role
		admin *model.User
	)
	err = s.d.Stores.Transactor.Execute(ctx, func(ctx context.Context) error {
		// 受信任调用点：新租户尚不存在，无法以身份约束
		created, err := s.d.Stores.Organizations.InsertOne(ctx, repository.InsertQuery[model.Organization]{
			Entity: &model.Organization{Name: dto.OrganizationName},
		})
		if err != nil {
			return err
		}

		// 之后的写入都限定在新租户内
		scope := &identity.Identity{OrganizationID: created.ID}

		role, err = s.d.Stores.Roles.InsertOne(ctx, repository.InsertQuery[model.Role]{
			Entity: &model.Role{
				Name:     model.AdminRoleName,
				Policies: model.Policies{identity.PolicyAll},
			},
			Identity: scope,
		})
		if err != nil {
			return err
		}

		admin, err = s.users.register(ctx, RegisterUserDTO{
			OrganizationID:       created.ID,
			RoleID:               role.ID,
			Email:                dto.Email,
			Password:             dto.Password,
			ConfirmationPassword: dto.ConfirmationPassword,
			FirstName:            dto.FirstName,
			LastName:             dto.LastName,
		}, scope)
		if err != nil {
			return err
		}

		org, err = s.d.Stores.Organizations.GetOne(ctx, repository.SelectQuery[model.OrganizationWhere, model.OrganizationRelation]{
			Where: model.OrganizationWhere{ID: &created.ID},
			Joins: []repository.Join[model.OrganizationRelation]{
				repository.LeftJoin(model.OrganizationUsers),
				repository.LeftJoin(model.OrganizationRoles),
			},
			Identity: scope,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	for i := range org.Users {
		org.Users[i].Sanitize()
	}

	s.d.Logger.WithContext(ctx).Info("organization registered", zap.Int64("organization_id", org.ID))
	s.d.Events.Publish(ctx, EventOrganizationRegistered, org.ID, OrganizationRegistered{
		OrganizationID: org.ID,
		Name:           org.Name,
		AdminUserID:    admin.ID,
		AdminRoleID:    role.ID,
	})
	s.d.Events.Publish(ctx, EventUserRegistered, org.ID, UserRegistered{
		UserID:         admin.ID,
		OrganizationID: org.ID,
		RoleID:         role.ID,
		Email:          admin.Email,
	})
	return org, nil
}
