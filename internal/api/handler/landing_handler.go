package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// LandingHandler 落地页公开接口
type LandingHandler struct {
	landingSvc service.LandingService
	logger     *zap.Logger
}

// NewLandingHandler 创建 LandingHandler
func NewLandingHandler(landingSvc service.LandingService, logger *zap.Logger) *LandingHandler {
	return &LandingHandler{landingSvc: landingSvc, logger: logger}
}

// ── 机构 ──

// FeaturedAcademies GET /api/v1/landing/academies/featured
func (h *LandingHandler) FeaturedAcademies(c *gin.Context) {
	var req dto.FeaturedRequest
	if !bindQuery(c, &req) {
		return
	}

	list, err := h.landingSvc.FeaturedAcademies(c.Request.Context(), &req)
	if err != nil {
		h.handleLandingError(c, err)
		return
	}

	response.OK(c, list)
}

// ListAcademies GET /api/v1/landing/academies
func (h *LandingHandler) ListAcademies(c *gin.Context) {
	var req dto.LandingAcademyListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.landingSvc.ListAcademies(c.Request.Context(), &req)
	if err != nil {
		h.handleLandingError(c, err)
		return
	}

	response.OKPage(c, list, meta)
}

// ProgramOptions GET /api/v1/landing/academies/programs
func (h *LandingHandler) ProgramOptions(c *gin.Context) {
	names, err := h.landingSvc.ProgramOptions(c.Request.Context())
	if err != nil {
		h.handleLandingError(c, err)
		return
	}

	response.OK(c, names)
}

// AcademyDetail GET /api/v1/landing/academies/:id
func (h *LandingHandler) AcademyDetail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.landingSvc.AcademyDetail(c.Request.Context(), id)
	if err != nil {
		h.handleLandingError(c, err)
		return
	}

	response.OK(c, detail)
}

// ── 教师 ──

// FeaturedTeachers GET /api/v1/landing/teachers/featured
func (h *LandingHandler) FeaturedTeachers(c *gin.Context) {
	var req dto.FeaturedRequest
	if !bindQuery(c, &req) {
		return
	}

	list, err := h.landingSvc.FeaturedTeachers(c.Request.Context(), &req)
	if err != nil {
		h.handleLandingError(c, err)
		return
	}

	response.OK(c, list)
}

// ListTeachers GET /api/v1/landing/teachers
func (h *LandingHandler) ListTeachers(c *gin.Context) {
	var req dto.LandingTeacherListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.landingSvc.ListTeachers(c.Request.Context(), &req)
	if err != nil {
		h.handleLandingError(c, err)
		return
	}

	response.OKPage(c, list, meta)
}

// SubjectOptions GET /api/v1/landing/teachers/subjects
func (h *LandingHandler) SubjectOptions(c *gin.Context) {
	names, err := h.landingSvc.SubjectOptions(c.Request.Context())
	if err != nil {
		h.handleLandingError(c, err)
		return
	}

	response.OK(c, names)
}

// TeacherDetail GET /api/v1/landing/teachers/:id
func (h *LandingHandler) TeacherDetail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.landingSvc.TeacherDetail(c.Request.Context(), id)
	if err != nil {
		h.handleLandingError(c, err)
		return
	}

	response.OK(c, detail)
}

// ── 联系我们 ──

// SubmitContact POST /api/v1/landing/contact-us
func (h *LandingHandler) SubmitContact(c *gin.Context) {
	var req dto.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.landingSvc.SubmitContact(c.Request.Context(), &req); err != nil {
		h.handleLandingError(c, err)
		return
	}

	response.OKMessage(c, "提交成功，我们会尽快与您联系")
}

func (h *LandingHandler) handleLandingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAcademyNotFound):
		response.NotFound(c, 13001, "机构不存在")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 17001, "教师不存在")
	default:
		handleCommonError(c, h.logger, err)
	}
}
