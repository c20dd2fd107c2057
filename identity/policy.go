package identity

import "strings"

// Policy 两段式权限字符串: {group}.{action}，支持 "*" 通配
type Policy string

const wildcard = "*"

// 权限目录
const (
	PolicyAll Policy = "*.*"

	PolicyAuthAll   Policy = "auth.*"
	PolicyAuthLogin Policy = "auth.login"

	PolicyUsersGetMany Policy = "users.getMany"
	PolicyUsersGetByID Policy = "users.getById"
	PolicyUsersCreate  Policy = "users.create"

	PolicyRoleAll     Policy = "role.*"
	PolicyRoleGetByID Policy = "role.getById"

	PolicySaleAll     Policy = "sale.*"
	PolicySaleGetByID Policy = "sale.getById"

	PolicyShopAll     Policy = "shop.*"
	PolicyShopGetByID Policy = "shop.getById"

	PolicyProductAll     Policy = "product.*"
	PolicyProductGetByID Policy = "product.getById"

	PolicyOrderlineAll     Policy = "orderline.*"
	PolicyOrderlineGetByID Policy = "orderline.getById"

	PolicyStockLevelAll     Policy = "stockLevel.*"
	PolicyStockLevelGetByID Policy = "stockLevel.getById"

	PolicyTransactionAll     Policy = "transaction.*"
	PolicyTransactionGetByID Policy = "transaction.getById"

	PolicyOrganizationAll     Policy = "organization.*"
	PolicyOrganizationGetByID Policy = "organization.getById"

	PolicyProductGroupAll     Policy = "productGroup.*"
	PolicyProductGroupGetByID Policy = "productGroup.getById"
)

// Split 拆分为 (group, action)；格式不合法时 ok 为 false
func (p Policy) Split() (group, action string, ok bool) {
	group, action, found := strings.Cut(string(p), ".")
	if !found || group == "" || action == "" || strings.Contains(action, ".") {
		return "", "", false
	}
	return group, action, true
}

// Valid 是否为合法的两段式权限字符串
func (p Policy) Valid() bool {
	_, _, ok := p.Split()
	return ok
}

// Satisfies 判断 granted 中是否存在满足 required 的权限
//
// 匹配规则（仅一层通配）:
//
//	(granted.group == required.group || granted.group == "*") &&
//	(granted.action == required.action || granted.action == "*")
//
// 格式不合法的 granted 条目被跳过；required 不合法时返回 false。
func Satisfies(required Policy, granted []Policy) bool {
	reqGroup, reqAction, ok := required.Split()
	if !ok {
		return false
	}

	for _, g := range granted {
		group, action, ok := g.Split()
		if !ok {
			continue
		}
		if (group == reqGroup || group == wildcard) && (action == reqAction || action == wildcard) {
			return true
		}
	}
	return false
}
