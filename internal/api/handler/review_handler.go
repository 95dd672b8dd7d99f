package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// ReviewHandler 评价模块 HTTP 处理器
type ReviewHandler struct {
	reviewSvc service.ReviewService
	logger    *zap.Logger
}

// NewReviewHandler 创建 ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc, logger: logger}
}

type createReviewFunc func(ctx context.Context, p service.Principal, id uint64, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)

type moderateReviewFunc func(ctx context.Context, p service.Principal, id uint64, req *dto.ModerateReviewRequest) (*dto.ReviewResponse, error)

// CreateAcademyReview POST /api/v1/reviews/academies/:id
func (h *ReviewHandler) CreateAcademyReview(c *gin.Context) {
	h.create(c, h.reviewSvc.CreateAcademyReview)
}

// CreateTeacherReview POST /api/v1/reviews/teachers/:id
func (h *ReviewHandler) CreateTeacherReview(c *gin.Context) {
	h.create(c, h.reviewSvc.CreateTeacherReview)
}

// ModerateAcademyReview PATCH /api/v1/reviews/academies/:id/moderation
func (h *ReviewHandler) ModerateAcademyReview(c *gin.Context) {
	h.moderate(c, h.reviewSvc.ModerateAcademyReview)
}

// ModerateTeacherReview PATCH /api/v1/reviews/teachers/:id/moderation
func (h *ReviewHandler) ModerateTeacherReview(c *gin.Context) {
	h.moderate(c, h.reviewSvc.ModerateTeacherReview)
}

func (h *ReviewHandler) create(c *gin.Context, fn createReviewFunc) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := fn(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.Created(c, review)
}

func (h *ReviewHandler) moderate(c *gin.Context, fn moderateReviewFunc) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ModerateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := fn(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, review)
}

func (h *ReviewHandler) handleReviewError(c *gin.Context, err error) {
	if writeFieldError(c, 18002, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		response.NotFound(c, 18001, "评价不存在")
	case errors.Is(err, service.ErrAcademyNotFound):
		response.NotFound(c, 13001, "机构不存在")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 17001, "教师不存在")
	case errors.Is(err, service.ErrReviewExists):
		response.BadRequest(c, 18003, service.ErrReviewExists.Error())
	case errors.Is(err, service.ErrStudentRequired):
		response.Forbidden(c, 18004, service.ErrStudentRequired.Error())
	default:
		handleCommonError(c, h.logger, err)
	}
}
