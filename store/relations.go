package store

import (
	"github.com/aisgo/posibel/model"
	"github.com/aisgo/posibel/repository"
)

/* ========================================================================
 * Relation Tables - 关联配置表
 * ========================================================================
 * 职责: 关联名 -> 模型字段路径 / 子查询别名
 * 说明: 仓储只接受这里登记过的关联名，未登记的关联返回 InvalidArgument
 * ======================================================================== */

var organizationRelations = map[model.OrganizationRelation]repository.RelationConfig{
	model.OrganizationShops: {Path: "Shops", Alias: "organization_shops"},
	model.OrganizationUsers: {Path: "Users", Alias: "organization_users"},
	model.OrganizationRoles: {Path: "Roles", Alias: "organization_roles"},
}

var shopRelations = map[model.ShopRelation]repository.RelationConfig{
	model.ShopOrganization: {Path: "Organization", Alias: "shop_organization"},
	model.ShopSales:        {Path: "Sales", Alias: "shop_sales"},
	model.ShopStockLevels:  {Path: "StockLevels", Alias: "shop_stock_levels"},
}

var roleRelations = map[model.RoleRelation]repository.RelationConfig{
	model.RoleUsers:        {Path: "Users", Alias: "role_users"},
	model.RoleOrganization: {Path: "Organization", Alias: "role_organization"},
}

var userRelations = map[model.UserRelation]repository.RelationConfig{
	model.UserRole:         {Path: "Role", Alias: "user_role"},
	model.UserOrganization: {Path: "Organization", Alias: "user_organization"},
}

var productGroupRelations = map[model.ProductGroupRelation]repository.RelationConfig{
	model.ProductGroupProducts: {Path: "Products", Alias: "product_group_products"},
}

var productRelations = map[model.ProductRelation]repository.RelationConfig{
	model.ProductProductGroup: {Path: "ProductGroup", Alias: "product_product_group"},
	model.ProductOrderlines:   {Path: "Orderlines", Alias: "product_orderlines"},
	model.ProductStockLevels:  {Path: "StockLevels", Alias: "product_stock_levels"},
}

var stockLevelRelations = map[model.StockLevelRelation]repository.RelationConfig{
	model.StockLevelProduct: {Path: "Product", Alias: "stock_level_product"},
	model.StockLevelShop:    {Path: "Shop", Alias: "stock_level_shop"},
}

var saleRelations = map[model.SaleRelation]repository.RelationConfig{
	model.SaleShop:       {Path: "Shop", Alias: "sale_shop"},
	model.SaleOrderlines: {Path: "Orderlines", Alias: "sale_orderlines"},
}

var orderlineRelations = map[model.OrderlineRelation]repository.RelationConfig{
	model.OrderlineProduct:  {Path: "Product", Alias: "orderline_product"},
	model.OrderlineSaleLink: {Path: "Sale", Alias: "orderline_sale"},
}

var transactionRelations = map[model.TransactionRelation]repository.RelationConfig{
	model.TransactionOrganization: {Path: "Organization", Alias: "transaction_organization"},
}
