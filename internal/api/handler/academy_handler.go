package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// AcademyHandler 机构模块 HTTP 处理器
type AcademyHandler struct {
	academySvc service.AcademyService
	logger     *zap.Logger
}

// NewAcademyHandler 创建 AcademyHandler
func NewAcademyHandler(academySvc service.AcademyService, logger *zap.Logger) *AcademyHandler {
	return &AcademyHandler{academySvc: academySvc, logger: logger}
}

// ListAcademies 机构列表
// GET /api/v1/academies
func (h *AcademyHandler) ListAcademies(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.AcademyListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.academySvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleAcademyError(c, err)
		return
	}

	response.OKPage(c, list, meta)
}

// CreateAcademy 创建机构及其登录账号
// POST /api/v1/academies
func (h *AcademyHandler) CreateAcademy(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateAcademyRequest
	if !bindJSON(c, &req) {
		return
	}

	academy, err := h.academySvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleAcademyError(c, err)
		return
	}

	response.Created(c, academy)
}

// MyAcademy 当前机构账号的机构信息
// GET /api/v1/academy/me
func (h *AcademyHandler) MyAcademy(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	academy, err := h.academySvc.MyAcademy(c.Request.Context(), p)
	if err != nil {
		h.handleAcademyError(c, err)
		return
	}

	response.OK(c, academy)
}

// GetAcademy 机构详情
// GET /api/v1/academy/:id
func (h *AcademyHandler) GetAcademy(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	academy, err := h.academySvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleAcademyError(c, err)
		return
	}

	response.OK(c, academy)
}

// UpdateAcademy 部分更新机构
// PATCH /api/v1/academy/:id
func (h *AcademyHandler) UpdateAcademy(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateAcademyRequest
	if !bindJSON(c, &req) {
		return
	}

	academy, err := h.academySvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleAcademyError(c, err)
		return
	}

	response.OK(c, academy)
}

// DeleteAcademy 级联删除机构
// DELETE /api/v1/academy/:id
func (h *AcademyHandler) DeleteAcademy(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	res, err := h.academySvc.Delete(c.Request.Context(), p, id)
	if err != nil {
		h.handleAcademyError(c, err)
		return
	}

	writeDeleteResult(c, res, 13001, "机构不存在")
}

// handleAcademyError 统一处理机构模块业务错误
func (h *AcademyHandler) handleAcademyError(c *gin.Context, err error) {
	if writeFieldError(c, 13002, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrAcademyNotFound):
		response.NotFound(c, 13001, "机构不存在")
	case errors.Is(err, service.ErrNoAcademyForUser):
		response.NotFound(c, 13003, "当前账号未关联机构")
	default:
		handleCommonError(c, h.logger, err)
	}
}
