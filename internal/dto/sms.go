package dto

// ── 短信模块 DTO ──

// SMSListRequest 短信记录查询参数
type SMSListRequest struct {
	PaginationRequest
	Status  string `form:"status"   binding:"omitempty,oneof=Queue Sent Failed Canceled"`
	SMSType string `form:"sms_type" binding:"omitempty,oneof=OTP Promo Notification Transaction Account Other"`
	Phone   string `form:"phone"    binding:"omitempty,max=20"`
}

// SMSResponse 短信记录
type SMSResponse struct {
	ID               uint64  `json:"id"`
	PhoneNumber      string  `json:"phone_number"`
	Message          string  `json:"message"`
	SMSType          string  `json:"sms_type"`
	Status           string  `json:"status"`
	FailedReason     *string `json:"failed_reason"`
	FailedStatusCode *int    `json:"failed_status_code"`
	SentAt           *string `json:"sent_at"`
	ResponseAt       *string `json:"response_at"`
	CreatedAt        string  `json:"created_at"`
}

// DrainStatsResponse 队列处理统计
type DrainStatsResponse struct {
	Picked int `json:"picked"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
