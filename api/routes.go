package api

import (
	"github.com/aisgo/posibel/identity"
	"github.com/aisgo/posibel/middleware"

	"github.com/gofiber/fiber/v3"
)

/* ========================================================================
 * Routes - 路由表
 * ========================================================================
 * 职责: 声明每个路由的方法、路径、所需权限与处理器
 * 链路: Authenticate -> RateLimit -> RequirePolicy -> Handler（逐路由显式组合）
 * 说明: Policy 为空表示公开路由（注册组织、登录）
 * ======================================================================== */

// Route 路由定义
type Route struct {
	Method  string
	Path    string
	Policy  identity.Policy
	Handler fiber.Handler
}

// Chain 所有路由共享的前置步骤
type Chain struct {
	Authenticate fiber.Handler
	RateLimit    fiber.Handler
}

// Routes 路由表
func (h *Handlers) Routes() []Route {
	s := h.stores
	return []Route{
		{fiber.MethodPost, "/organizations/register", "", h.registerOrganization},
		{fiber.MethodPost, "/auth", "", h.login},

		{fiber.MethodGet, "/organizations/:id", identity.PolicyOrganizationGetByID, getByID(s.Organizations.GetOne, organizationByID)},
		{fiber.MethodGet, "/shops/:id", identity.PolicyShopGetByID, getByID(s.Shops.GetOne, shopByID)},
		{fiber.MethodGet, "/roles/:id", identity.PolicyRoleGetByID, getByID(s.Roles.GetOne, roleByID)},
		{fiber.MethodGet, "/users", identity.PolicyUsersGetMany, h.listUsers},
		{fiber.MethodGet, "/users/:id", identity.PolicyUsersGetByID, getByID(s.Users.GetOne, userByID)},
		{fiber.MethodPost, "/users", identity.PolicyUsersCreate, h.registerUser},
		{fiber.MethodGet, "/product-groups/:id", identity.PolicyProductGroupGetByID, getByID(s.ProductGroups.GetOne, productGroupByID)},
		{fiber.MethodGet, "/products/:id", identity.PolicyProductGetByID, getByID(s.Products.GetOne, productByID)},
		{fiber.MethodGet, "/stock-levels/:id", identity.PolicyStockLevelGetByID, getByID(s.StockLevels.GetOne, stockLevelByID)},
		{fiber.MethodGet, "/sales/:id", identity.PolicySaleGetByID, getByID(s.Sales.GetOne, saleByID)},
		{fiber.MethodGet, "/orderlines/:id", identity.PolicyOrderlineGetByID, getByID(s.Orderlines.GetOne, orderlineByID)},
		{fiber.MethodGet, "/transactions/:id", identity.PolicyTransactionGetByID, getByID(s.Transactions.GetOne, transactionByID)},
	}
}

// Mount 按路由表注册到 router
func Mount(router fiber.Router, routes []Route, chain Chain) {
	authenticate := chain.Authenticate
	if authenticate == nil {
		authenticate = passThrough
	}
	rateLimit := chain.RateLimit
	if rateLimit == nil {
		rateLimit = passThrough
	}

	for _, r := range routes {
		router.Add([]string{r.Method}, r.Path,
			authenticate,
			rateLimit,
			middleware.RequirePolicy(r.Policy),
			r.Handler,
		)
	}
}

func passThrough(c fiber.Ctx) error { return c.Next() }
