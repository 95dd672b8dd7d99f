package dto

// ── 评价模块 DTO ──

// CreateReviewRequest 提交评价
type CreateReviewRequest struct {
	Rating       *float64 `json:"rating"        binding:"required,min=0,max=5"`
	Body         string   `json:"body"          binding:"required,max=2000"`
	ReviewerName string   `json:"reviewer_name" binding:"omitempty,max=255"`
}

// ModerateReviewRequest 审核评价
type ModerateReviewRequest struct {
	IsApproved *bool `json:"is_approved"`
	IsActive   *bool `json:"is_active"`
}

// ReviewResponse 评价响应
type ReviewResponse struct {
	ID           uint64  `json:"id"`
	ReviewerName string  `json:"reviewer_name"`
	Rating       float64 `json:"rating"`
	Body         string  `json:"body"`
	IsVerified   bool    `json:"is_verified"`
	IsApproved   bool    `json:"is_approved"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
}

// RatingSummary 公开评分汇总；distribution 的键为 1~5 星
type RatingSummary struct {
	Average      *float64       `json:"average"`
	Count        int            `json:"count"`
	Distribution map[string]int `json:"distribution"`
}
