package service

// RegisterOrganizationDTO 组织注册请求
type RegisterOrganizationDTO struct {
	OrganizationName     string `json:"organizationName" validate:"required,min=3"`
	Email                string `json:"email" validate:"required,email,min=5"`
	Password             string `json:"password" validate:"required,min=9"`
	ConfirmationPassword string `json:"confirmationPassword" validate:"required,min=9,eqfield=Password" error_msg:"eqfield:passwords do not match"`
	FirstName            string `json:"firstName" validate:"required,min=2,max=100"`
	LastName             string `json:"lastName" validate:"required,min=2,max=100"`
}

// RegisterUserDTO 用户注册请求
// OrganizationID 在调用方有身份时被身份中的组织覆盖
type RegisterUserDTO struct {
	OrganizationID       int64  `json:"organizationId,string"`
	RoleID               int64  `json:"roleId,string" validate:"required"`
	Email                string `json:"email" validate:"required,email,min=5"`
	Password             string `json:"password" validate:"required,min=9"`
	ConfirmationPassword string `json:"confirmationPassword" validate:"required,min=9,eqfield=Password" error_msg:"eqfield:passwords do not match"`
	FirstName            string `json:"firstName" validate:"required,min=2,max=100"`
	LastName             string `json:"lastName" validate:"required,min=2,max=100"`
}

// AuthenticateDTO 登录请求
type AuthenticateDTO struct {
	Email    string `json:"email" validate:"required,email,min=5"`
	Password string `json:"password" validate:"required,min=9"`
}
