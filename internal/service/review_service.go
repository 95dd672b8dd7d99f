package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
)

// ── 评价模块业务错误 ──

var (
	ErrReviewNotFound  = errors.New("评价不存在")
	ErrReviewExists    = errors.New("已评价过该教师")
	ErrInvalidRating   = errors.New("评分须在 0 到 5 之间")
	ErrStudentRequired = errors.New("仅学员可以提交评价")
)

const constraintTeacherReview = "uq_teacher_review_student"

// ReviewService 评价业务接口
//
// 设计说明：
//   - 新评价默认未审核，审核通过且有效的评价才计入公开评分
//   - 评分保留 1 位小数
type ReviewService interface {
	CreateAcademyReview(ctx context.Context, p Principal, academyID uint64, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	CreateTeacherReview(ctx context.Context, p Principal, teacherID uint64, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	ModerateAcademyReview(ctx context.Context, p Principal, id uint64, req *dto.ModerateReviewRequest) (*dto.ReviewResponse, error)
	ModerateTeacherReview(ctx context.Context, p Principal, id uint64, req *dto.ModerateReviewRequest) (*dto.ReviewResponse, error)
}

type reviewService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(repo *repository.Repository, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, logger: logger}
}

func (s *reviewService) CreateAcademyReview(ctx context.Context, p Principal, academyID uint64, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	student, err := s.reviewer(ctx, p)
	if err != nil {
		return nil, err
	}
	rating, err := normalizeRating(req.Rating)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Academy.GetByID(ctx, academyID); err != nil {
		return nil, mapNotFound(err, ErrAcademyNotFound)
	}

	review := &model.AcademyReview{
		AcademyID:    academyID,
		StudentID:    &student.ID,
		ReviewerName: reviewerName(req.ReviewerName, student),
		Rating:       rating,
		Body:         strings.TrimSpace(req.Body),
		IsVerified:   true,
		IsActive:     true,
	}
	if err := s.repo.Review.CreateAcademyReview(ctx, review); err != nil {
		s.logger.Error("创建机构评价失败", zap.Uint64("academy_id", academyID), zap.Error(err))
		return nil, err
	}
	resp := toAcademyReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) CreateTeacherReview(ctx context.Context, p Principal, teacherID uint64, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	student, err := s.reviewer(ctx, p)
	if err != nil {
		return nil, err
	}
	rating, err := normalizeRating(req.Rating)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Teacher.GetByID(ctx, teacherID); err != nil {
		return nil, mapNotFound(err, ErrTeacherNotFound)
	}

	exists, err := s.repo.Review.TeacherReviewExists(ctx, teacherID, student.ID)
	if err != nil {
		s.logger.Error("检查教师评价失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	review := &model.TeacherReview{
		TeacherID:    teacherID,
		StudentID:    &student.ID,
		ReviewerName: reviewerName(req.ReviewerName, student),
		Rating:       rating,
		Body:         strings.TrimSpace(req.Body),
		IsVerified:   true,
		IsActive:     true,
	}
	if err := s.repo.Review.CreateTeacherReview(ctx, review); err != nil {
		if pkgerrors.IsUniqueViolation(err, constraintTeacherReview) {
			return nil, ErrReviewExists
		}
		s.logger.Error("创建教师评价失败", zap.Uint64("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	resp := toTeacherReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) ModerateAcademyReview(ctx context.Context, p Principal, id uint64, req *dto.ModerateReviewRequest) (*dto.ReviewResponse, error) {
	if p.Role != model.RoleAdmin {
		return nil, ErrPermissionDenied
	}
	review, err := s.repo.Review.GetAcademyReview(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrReviewNotFound)
	}
	updates := moderationUpdates(req)
	if len(updates) > 0 {
		if err := s.repo.Review.UpdateAcademyReview(ctx, id, updates); err != nil {
			s.logger.Error("审核机构评价失败", zap.Uint64("review_id", id), zap.Error(err))
			return nil, err
		}
	}
	applyModeration(req, &review.IsApproved, &review.IsActive)
	resp := toAcademyReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) ModerateTeacherReview(ctx context.Context, p Principal, id uint64, req *dto.ModerateReviewRequest) (*dto.ReviewResponse, error) {
	if p.Role != model.RoleAdmin {
		return nil, ErrPermissionDenied
	}
	review, err := s.repo.Review.GetTeacherReview(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrReviewNotFound)
	}
	updates := moderationUpdates(req)
	if len(updates) > 0 {
		if err := s.repo.Review.UpdateTeacherReview(ctx, id, updates); err != nil {
			s.logger.Error("审核教师评价失败", zap.Uint64("review_id", id), zap.Error(err))
			return nil, err
		}
	}
	applyModeration(req, &review.IsApproved, &review.IsActive)
	resp := toTeacherReviewResponse(review)
	return &resp, nil
}

// reviewer 当前主体对应的学员
func (s *reviewService) reviewer(ctx context.Context, p Principal) (*model.Student, error) {
	if p.Role != model.RoleStudent {
		return nil, ErrStudentRequired
	}
	student, err := s.repo.Student.GetByUserID(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudentRequired
		}
		s.logger.Error("查询学员失败", zap.Error(err))
		return nil, err
	}
	return student, nil
}

// ── 辅助函数 ──

func normalizeRating(v *float64) (float64, error) {
	if v == nil || *v < 0 || *v > 5 {
		return 0, fieldErr("rating", ErrInvalidRating)
	}
	return round1(*v), nil
}

func reviewerName(given string, student *model.Student) string {
	if name := strings.TrimSpace(given); name != "" {
		return name
	}
	return student.Name
}

func moderationUpdates(req *dto.ModerateReviewRequest) map[string]interface{} {
	updates := make(map[string]interface{})
	if req.IsApproved != nil {
		updates["is_approved"] = *req.IsApproved
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	return updates
}

func applyModeration(req *dto.ModerateReviewRequest, approved, active *bool) {
	if req.IsApproved != nil {
		*approved = *req.IsApproved
	}
	if req.IsActive != nil {
		*active = *req.IsActive
	}
}

// summarizeRatings 由星级分组汇总公开评分：平均分保留 1 位小数
func summarizeRatings(buckets []repository.RatingBucket) dto.RatingSummary {
	summary := dto.RatingSummary{
		Distribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}
	var sum float64
	for _, b := range buckets {
		summary.Count += b.Count
		sum += b.Total
		summary.Distribution[strconv.Itoa(b.Star)] += b.Count
	}
	if summary.Count == 0 {
		return summary
	}
	avg := round1(sum / float64(summary.Count))
	summary.Average = &avg
	return summary
}

func toAcademyReviewResponse(r *model.AcademyReview) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:           r.ID,
		ReviewerName: r.ReviewerName,
		Rating:       r.Rating,
		Body:         r.Body,
		IsVerified:   r.IsVerified,
		IsApproved:   r.IsApproved,
		IsActive:     r.IsActive,
		CreatedAt:    formatTime(r.CreatedAt),
	}
}

func toTeacherReviewResponse(r *model.TeacherReview) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:           r.ID,
		ReviewerName: r.ReviewerName,
		Rating:       r.Rating,
		Body:         r.Body,
		IsVerified:   r.IsVerified,
		IsApproved:   r.IsApproved,
		IsActive:     r.IsActive,
		CreatedAt:    formatTime(r.CreatedAt),
	}
}
