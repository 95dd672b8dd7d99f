package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// SMSHandler 短信记录管理接口
type SMSHandler struct {
	smsSvc service.SMSService
	logger *zap.Logger
}

// NewSMSHandler 创建 SMSHandler
func NewSMSHandler(smsSvc service.SMSService, logger *zap.Logger) *SMSHandler {
	return &SMSHandler{smsSvc: smsSvc, logger: logger}
}

// ListSMS GET /api/v1/sms
func (h *SMSHandler) ListSMS(c *gin.Context) {
	var req dto.SMSListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.smsSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleCommonError(c, h.logger, err)
		return
	}

	response.OKPage(c, list, meta)
}

// SendSMS 立即发送待发送短信
// POST /api/v1/sms/:id/send
func (h *SMSHandler) SendSMS(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	record, err := h.smsSvc.SendNow(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSMSNotFound):
			response.NotFound(c, 19001, "短信记录不存在")
		case errors.Is(err, service.ErrSMSNotQueued):
			response.Conflict(c, 19003, service.ErrSMSNotQueued.Error())
		default:
			handleCommonError(c, h.logger, err)
		}
		return
	}

	response.OK(c, record)
}

// CancelSMS 取消待发送短信
// POST /api/v1/sms/:id/cancel
func (h *SMSHandler) CancelSMS(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	record, err := h.smsSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSMSNotFound):
			response.NotFound(c, 19001, "短信记录不存在")
		case errors.Is(err, service.ErrSMSNotCancelable):
			response.BadRequest(c, 19002, service.ErrSMSNotCancelable.Error())
		default:
			handleCommonError(c, h.logger, err)
		}
		return
	}

	response.OK(c, record)
}
