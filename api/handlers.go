package api

import (
	"context"
	"strconv"

	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/middleware"
	"github.com/aisgo/posibel/model"
	"github.com/aisgo/posibel/repository"
	"github.com/aisgo/posibel/response"
	"github.com/aisgo/posibel/service"
	"github.com/aisgo/posibel/store"

	"github.com/gofiber/fiber/v3"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handlers HTTP 处理器
type Handlers struct {
	stores *store.Stores
	orgs   *service.OrganizationService
	users  *service.UserService
	auth   *service.AuthService
}

// NewHandlers 创建处理器
func NewHandlers(stores *store.Stores, orgs *service.OrganizationService, users *service.UserService, auth *service.AuthService) *Handlers {
	return &Handlers{stores: stores, orgs: orgs, users: users, auth: auth}
}

func parseID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidArgument, "id must be a positive integer")
	}
	return id, nil
}

func bindJSON(c fiber.Ctx, out any) error {
	if err := c.Bind().JSON(out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidArgument, "invalid request body", err)
	}
	return nil
}

// getByID 按主键查询；其他租户的行与不存在的行一样返回 404
func getByID[E any, W repository.Conditions, R ~string](
	getOne func(context.Context, repository.SelectQuery[W, R]) (*E, error),
	where func(int64) W,
) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		entity, err := getOne(c.Context(), repository.SelectQuery[W, R]{
			Where:    where(id),
			Identity: middleware.IdentityFrom(c),
		})
		if err != nil {
			return err
		}
		if entity == nil {
			return errors.ErrNotFound
		}
		return response.OkWithData(c, entity)
	}
}

func organizationByID(id int64) model.OrganizationWhere { return model.OrganizationWhere{ID: &id} }
func shopByID(id int64) model.ShopWhere                 { return model.ShopWhere{ID: &id} }
func roleByID(id int64) model.RoleWhere                 { return model.RoleWhere{ID: &id} }
func userByID(id int64) model.UserWhere                 { return model.UserWhere{ID: &id} }
func productGroupByID(id int64) model.ProductGroupWhere { return model.ProductGroupWhere{ID: &id} }
func productByID(id int64) model.ProductWhere           { return model.ProductWhere{ID: &id} }
func stockLevelByID(id int64) model.StockLevelWhere     { return model.StockLevelWhere{ID: &id} }
func saleByID(id int64) model.SaleWhere                 { return model.SaleWhere{ID: &id} }
func orderlineByID(id int64) model.OrderlineWhere       { return model.OrderlineWhere{ID: &id} }
func transactionByID(id int64) model.TransactionWhere   { return model.TransactionWhere{ID: &id} }

// listUsers GET /users?limit=&offset=
func (h *Handlers) listUsers(c fiber.Ctx) error {
	limit := fiber.Query[int](c, "limit", defaultPageSize)
	offset := fiber.Query[int](c, "offset", 0)
	if limit <= 0 || limit > maxPageSize || offset < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "limit must be 1..100 and offset >= 0")
	}

	page, err := h.stores.Users.GetManyWithCount(c.Context(), repository.SelectQuery[model.UserWhere, model.UserRelation]{
		Identity: middleware.IdentityFrom(c),
		OrderBy:  "id ASC",
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return response.PageData(c, page.Entities, page.Count, offset/limit+1, limit)
}

// registerOrganization POST /organizations/register
func (h *Handlers) registerOrganization(c fiber.Ctx) error {
	var dto service.RegisterOrganizationDTO
	if err := bindJSON(c, &dto); err != nil {
		return err
	}
	org, err := h.orgs.RegisterOrganization(c.Context(), dto)
	if err != nil {
		return err
	}
	return response.Created(c, org)
}

// registerUser POST /users
func (h *Handlers) registerUser(c fiber.Ctx) error {
	var dto service.RegisterUserDTO
	if err := bindJSON(c, &dto); err != nil {
		return err
	}
	user, err := h.users.RegisterUser(c.Context(), dto, middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return response.Created(c, user)
}

// login POST /auth
// 只校验凭据并返回身份声明，令牌由外部签发
func (h *Handlers) login(c fiber.Ctx) error {
	var dto service.AuthenticateDTO
	if err := bindJSON(c, &dto); err != nil {
		return err
	}
	user, id, err := h.auth.Authenticate(c.Context(), dto)
	if err != nil {
		return err
	}
	return response.OkWithData(c, fiber.Map{"user": user, "identity": id})
}
