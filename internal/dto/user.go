package dto

// ── 账号模块 DTO ──

// RegisterRequest 学员自助注册；手机号须先通过验证码验证，用户名取手机号
type RegisterRequest struct {
	Phone     string `json:"phone"      binding:"required,bdphone"`
	Password  string `json:"password"   binding:"required,min=8,max=64"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name"  binding:"omitempty,max=100"`
	Email     string `json:"email"      binding:"omitempty,email"`
}

// UserListRequest 管理端用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role     string `form:"role"      binding:"omitempty,oneof=admin academy teacher student staff"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"    binding:"omitempty,max=100"`
}

// CreateUserRequest 管理端创建账号；机构账号随机构创建，不在此处
type CreateUserRequest struct {
	Phone     string `json:"phone"      binding:"required,bdphone"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name"  binding:"omitempty,max=100"`
	Email     string `json:"email"      binding:"omitempty,email"`
	Role      string `json:"role"       binding:"required,oneof=admin staff student"`
}

// UpdateUserRequest 更新账号，仅非空字段生效
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=100"`
	Email     *string `json:"email"      binding:"omitempty,email"`
	IsActive  *bool   `json:"is_active"`
}

// ChangePasswordRequest 修改本人密码
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64,nefield=OldPassword"`
}

// CreateUserResponse 创建账号结果，临时密码仅返回一次
type CreateUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// ResetPasswordResponse 重置密码结果
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}
