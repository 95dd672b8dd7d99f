package model

import "time"

// 短信类型
const (
	SMSTypeOTP          = "OTP"
	SMSTypePromo        = "Promo"
	SMSTypeNotification = "Notification"
	SMSTypeTransaction  = "Transaction"
	SMSTypeAccount      = "Account"
	SMSTypeOther        = "Other"
)

// 短信状态：Queue → Sent | Failed | Canceled
const (
	SMSStatusQueue    = "Queue"
	SMSStatusSent     = "Sent"
	SMSStatusFailed   = "Failed"
	SMSStatusCanceled = "Canceled"
)

// SMSHistory 每条出站短信一行
// ResponseAt 仅在进入终态时写入
type SMSHistory struct {
	ID               uint64     `gorm:"primaryKey"                json:"id"`
	CreatedBy        *string    `gorm:"type:uuid"                 json:"created_by"`
	CreatedFor       *string    `gorm:"type:uuid"                 json:"created_for"`
	PhoneNumber      string     `gorm:"type:varchar(20);not null" json:"phone_number"`
	Message          string     `gorm:"type:text;not null"        json:"message"`
	SMSType          string     `gorm:"column:sms_type;type:varchar(20);not null" json:"sms_type"`
	Status           string     `gorm:"type:varchar(20);not null;default:'Queue'" json:"status"`
	FailedReason     *string    `gorm:"type:text"                 json:"failed_reason"`
	FailedStatusCode *int       `                                 json:"failed_status_code"`
	SentAt           *time.Time `                                 json:"sent_at"`
	ResponseAt       *time.Time `                                 json:"response_at"`
	BaseModel
}

// TableName 指定表名
func (SMSHistory) TableName() string { return "sms_histories" }

// IsTerminal 是否已处于终态
func (s *SMSHistory) IsTerminal() bool {
	return s.Status != SMSStatusQueue
}

// OTPVerification 验证码，每个手机号仅一行（最新一次）
type OTPVerification struct {
	ID          uint64    `gorm:"primaryKey"                          json:"id"`
	PhoneNumber string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone_number"`
	OTP         string    `gorm:"column:otp;type:varchar(6);not null" json:"-"`
	ExpiresAt   time.Time `gorm:"not null"                            json:"expires_at"`
	IsVerified  bool      `gorm:"not null;default:false"              json:"is_verified"`
	BaseModel
}

// TableName 指定表名
func (OTPVerification) TableName() string { return "otp_verifications" }

// IsExpired 是否已过期
func (o *OTPVerification) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// ContactMessage 落地页联系表单
type ContactMessage struct {
	ID      uint64 `gorm:"primaryKey"                 json:"id"`
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Email   string `gorm:"type:varchar(255);not null" json:"email"`
	Phone   string `gorm:"type:varchar(20);not null"  json:"phone"`
	Subject string `gorm:"type:varchar(255);not null" json:"subject"`
	Message string `gorm:"type:text;not null"         json:"message"`
	BaseModel
}

// TableName 指定表名
func (ContactMessage) TableName() string { return "contact_messages" }
