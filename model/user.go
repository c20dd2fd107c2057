package model

import (
	"github.com/aisgo/posibel/identity"
	"github.com/aisgo/posibel/repository"
)

// User 用户
// Email 全局唯一（跨所有租户）
type User struct {
	repository.BaseModel
	Email          string `json:"email" gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_user_email"`
	FirstName      string `json:"firstName" gorm:"column:first_name;type:varchar(100);not null"`
	LastName       string `json:"lastName" gorm:"column:last_name;type:varchar(100);not null"`
	Password       string `json:"-" gorm:"column:password;type:varchar(255);not null"`
	OrganizationID int64  `json:"organizationId,string" gorm:"column:organization_id;not null;index"`
	RoleID         int64  `json:"roleId,string" gorm:"column:role_id;not null;index"`

	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Role         *Role         `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

func (User) TableName() string { return "user" }

// Sanitize 清除密码哈希，返回给调用方前调用
func (u *User) Sanitize() *User {
	if u != nil {
		u.Password = ""
	}
	return u
}

// Identity 根据用户与其角色构造身份
// 角色未加载时返回的身份不含策略，Validate 会拒绝
func (u *User) Identity() *identity.Identity {
	id := &identity.Identity{
		UserID:         u.ID,
		OrganizationID: u.OrganizationID,
		RoleID:         u.RoleID,
	}
	if u.Role != nil {
		id.Policies = append([]identity.Policy(nil), u.Role.Policies...)
	}
	return id
}

type UserWhere struct {
	ID     *int64
	Email  *string
	RoleID *int64
}

func (w UserWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	repository.Cond(m, "email", w.Email)
	repository.Cond(m, "role_id", w.RoleID)
	return m
}

type UserRelation string

const (
	UserRole         UserRelation = "role"
	UserOrganization UserRelation = "organization"
)
