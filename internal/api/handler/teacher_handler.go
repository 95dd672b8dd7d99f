package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// TeacherHandler 教师模块 HTTP 处理器
type TeacherHandler struct {
	teacherSvc service.TeacherService
	logger     *zap.Logger
}

// NewTeacherHandler 创建 TeacherHandler
func NewTeacherHandler(teacherSvc service.TeacherService, logger *zap.Logger) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc, logger: logger}
}

// ListTeachers GET /api/v1/academy/teachers
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.TeacherListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.teacherSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OKPage(c, list, meta)
}

// CreateTeacher 创建教师，科目、教育经历与荣誉一并写入
// POST /api/v1/academy/teachers
func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateTeacherRequest
	if !bindJSON(c, &req) {
		return
	}

	teacher, err := h.teacherSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.Created(c, teacher)
}

// GetTeacher GET /api/v1/academy/teachers/:id
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	teacher, err := h.teacherSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// UpdateTeacher PATCH /api/v1/academy/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTeacherRequest
	if !bindJSON(c, &req) {
		return
	}

	teacher, err := h.teacherSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// DeleteTeacher DELETE /api/v1/academy/teachers/:id
func (h *TeacherHandler) DeleteTeacher(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.teacherSvc.Delete(c.Request.Context(), p, id); err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OKMessage(c, "教师已删除")
}

func (h *TeacherHandler) handleTeacherError(c *gin.Context, err error) {
	if writeFieldError(c, 17002, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 17001, "教师不存在")
	default:
		handleCommonError(c, h.logger, err)
	}
}
