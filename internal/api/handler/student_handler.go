package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// StudentHandler 学员档案 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
	logger     *zap.Logger
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, logger: logger}
}

// ListStudents GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.StudentListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.studentSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OKPage(c, list, meta)
}

// GetStudent GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	student, err := h.studentSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// UpdateStudent PATCH /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// ActivateStudent POST /api/v1/students/:id/activate
func (h *StudentHandler) ActivateStudent(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivateStudent POST /api/v1/students/:id/deactivate
func (h *StudentHandler) DeactivateStudent(c *gin.Context) {
	h.setActive(c, false)
}

func (h *StudentHandler) setActive(c *gin.Context, active bool) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	student, err := h.studentSvc.SetActive(c.Request.Context(), p, id, active)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	if writeFieldError(c, 23002, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 23001, "学员不存在")
	case errors.Is(err, service.ErrStudentNoAccount):
		response.BadRequest(c, 23003, service.ErrStudentNoAccount.Error())
	default:
		handleCommonError(c, h.logger, err)
	}
}
