package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求；username 可填用户名或手机号
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      string  `json:"role"`
	IsActive  bool    `json:"is_active"`
	AcademyID *uint64 `json:"academy_id,omitempty"`
}

// ── 验证码 ──

// SendOTPRequest 发送验证码
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,bdphone"`
}

// VerifyOTPRequest 校验验证码
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,bdphone"`
	OTP         string `json:"otp"          binding:"required,len=6,numeric"`
}

// OTPSentResponse 验证码已发送
type OTPSentResponse struct {
	PhoneNumber string `json:"phone_number"`
	ExpiresAt   string `json:"expires_at"`
}
