package dto

// ── 学员模块 DTO ──

// StudentListRequest 学员列表查询参数
type StudentListRequest struct {
	PaginationRequest
	Search   string `form:"search"    binding:"omitempty,max=100"`
	BatchID  uint64 `form:"batch_id"`
	IsActive *bool  `form:"is_active"`
}

// UpdateStudentRequest 更新学员档案，仅非空字段生效
type UpdateStudentRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=1,max=255"`
	Phone *string `json:"phone" binding:"omitempty,bdphone"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// StudentResponse 学员档案
type StudentResponse struct {
	ID         uint64  `json:"id"`
	UserID     *string `json:"user_id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	HasAccount bool    `json:"has_account"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
}
