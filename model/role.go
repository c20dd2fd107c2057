package model

import (
	"github.com/aisgo/posibel/repository"
)

// AdminRoleName 组织注册时创建的管理员角色
const AdminRoleName = "admin"

// Role 角色
type Role struct {
	repository.BaseModel
	Name           string   `json:"name" gorm:"column:name;type:varchar(255);not null"`
	OrganizationID int64    `json:"organizationId,string" gorm:"column:organization_id;not null;index"`
	Policies       Policies `json:"policies" gorm:"column:policies;type:text;not null"`

	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Users        []User        `json:"users,omitempty" gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

func (Role) TableName() string { return "role" }

type RoleWhere struct {
	ID   *int64
	Name *string
}

func (w RoleWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	repository.Cond(m, "name", w.Name)
	return m
}

type RoleRelation string

const (
	RoleUsers        RoleRelation = "users"
	RoleOrganization RoleRelation = "organization"
)
