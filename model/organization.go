package model

import (
	"github.com/aisgo/posibel/repository"
)

/* ========================================================================
 * Domain Models - 领域模型
 * ========================================================================
 * 职责: 定义实体结构、查询条件结构与关联名枚举
 * 约定:
 *   - 实体只描述数据形状，查询行为由 repository / store 负责
 *   - 所有租户内实体携带 organization_id；Organization 是租户根
 *   - 删除组织时由外键级联删除其全部数据
 * ======================================================================== */

// Organization 组织（租户根）
type Organization struct {
	repository.BaseModel
	Name string `json:"name" gorm:"column:name;type:varchar(255);not null"`

	Shops         []Shop         `json:"shops,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Users         []User         `json:"users,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Roles         []Role         `json:"roles,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Products      []Product      `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	ProductGroups []ProductGroup `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	StockLevels   []StockLevel   `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Sales         []Sale         `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Orderlines    []Orderline    `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Transactions  []Transaction  `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}

func (Organization) TableName() string { return "organization" }

// TenantRoot 组织的主键即租户 ID
func (Organization) TenantRoot() {}

// OrganizationWhere 组织查询条件
type OrganizationWhere struct {
	ID   *int64
	Name *string
}

func (w OrganizationWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	repository.Cond(m, "name", w.Name)
	return m
}

// OrganizationRelation 组织关联名
type OrganizationRelation string

const (
	OrganizationShops OrganizationRelation = "shops"
	OrganizationUsers OrganizationRelation = "users"
	OrganizationRoles OrganizationRelation = "roles"
)
