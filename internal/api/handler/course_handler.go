package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
	logger    *zap.Logger
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc, logger: logger}
}

// ListCourses 课程列表
// GET /api/v1/academy/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CourseListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.courseSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OKPage(c, list, meta)
}

// Dropdown 课程下拉选项
// GET /api/v1/academy/courses/dropdown
func (h *CourseHandler) Dropdown(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CourseDropdownRequest
	if !bindQuery(c, &req) {
		return
	}

	items, err := h.courseSvc.Dropdown(c.Request.Context(), p, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, items)
}

// CourseTypes 课程类型枚举
// GET /api/v1/academy/courses/types
func (h *CourseHandler) CourseTypes(c *gin.Context) {
	response.OK(c, h.courseSvc.CourseTypes())
}

// CreateCourse 创建课程，可同时创建班次
// POST /api/v1/academy/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// GetCourse 课程详情
// GET /api/v1/academy/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	course, err := h.courseSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// UpdateCourse 部分更新课程；batches 不为空时按声明式同步
// PATCH /api/v1/academy/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse 级联删除课程
// DELETE /api/v1/academy/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	res, err := h.courseSvc.Delete(c.Request.Context(), p, id)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	writeDeleteResult(c, res, 14001, "课程不存在")
}

// handleCourseError 统一处理课程模块业务错误
func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	if writeFieldError(c, 14002, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 14001, "课程不存在")
	default:
		handleCommonError(c, h.logger, err)
	}
}
