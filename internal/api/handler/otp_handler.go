package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// OTPHandler 短信验证码 HTTP 处理器
type OTPHandler struct {
	otpSvc service.OTPService
	logger *zap.Logger
}

// NewOTPHandler 创建 OTPHandler
func NewOTPHandler(otpSvc service.OTPService, logger *zap.Logger) *OTPHandler {
	return &OTPHandler{otpSvc: otpSvc, logger: logger}
}

// Send 发送验证码
// POST /api/v1/send-otp
func (h *OTPHandler) Send(c *gin.Context) {
	var req dto.SendOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.otpSvc.Send(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.handleOTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{Success: true, Message: "验证码已发送", Data: result})
}

// Verify 校验验证码
// POST /api/v1/verify-otp
func (h *OTPHandler) Verify(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.otpSvc.Verify(c.Request.Context(), &req); err != nil {
		h.handleOTPError(c, err)
		return
	}

	response.OKMessage(c, "手机号验证成功")
}

// handleOTPError 验证码错误均按 otp 字段返回，便于前端定位输入框
func (h *OTPHandler) handleOTPError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOTPRateLimited):
		response.TooManyRequests(c, 12001, service.ErrOTPRateLimited.Error())
	case errors.Is(err, service.ErrOTPDeliveryFailed):
		response.FieldInvalid(c, 12002, "phone_number", service.ErrOTPDeliveryFailed.Error())
	case errors.Is(err, service.ErrOTPPhoneNotFound):
		response.FieldInvalid(c, 12003, "phone_number", service.ErrOTPPhoneNotFound.Error())
	case errors.Is(err, service.ErrOTPAlreadyVerified):
		response.FieldInvalid(c, 12004, "otp", service.ErrOTPAlreadyVerified.Error())
	case errors.Is(err, service.ErrOTPExpired):
		response.FieldInvalid(c, 12005, "otp", service.ErrOTPExpired.Error())
	case errors.Is(err, service.ErrOTPInvalid):
		response.FieldInvalid(c, 12006, "otp", service.ErrOTPInvalid.Error())
	default:
		handleCommonError(c, h.logger, err)
	}
}
