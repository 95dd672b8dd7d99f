package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// EnrollmentHandler 报名模块 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
	logger        *zap.Logger
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc, logger: logger}
}

// ListEnrollments GET /api/v1/academy/enrollments
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.EnrollmentListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.enrollmentSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OKPage(c, list, meta)
}

// CreateEnrollment POST /api/v1/academy/enrollments
func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.Created(c, enrollment)
}

// UpdateEnrollment PATCH /api/v1/academy/enrollments/:id
func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// DeleteEnrollment DELETE /api/v1/academy/enrollments/:id
func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Delete(c.Request.Context(), p, id); err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OKMessage(c, "报名记录已删除")
}

func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	if writeFieldError(c, 16002, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 16001, "报名记录不存在")
	default:
		handleCommonError(c, h.logger, err)
	}
}
