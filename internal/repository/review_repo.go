package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
)

// ReviewRepository 机构与教师评价数据访问接口
type ReviewRepository interface {
	CreateAcademyReview(ctx context.Context, r *model.AcademyReview) error
	CreateTeacherReview(ctx context.Context, r *model.TeacherReview) error
	TeacherReviewExists(ctx context.Context, teacherID, studentID uint64) (bool, error)
	GetAcademyReview(ctx context.Context, id uint64) (*model.AcademyReview, error)
	GetTeacherReview(ctx context.Context, id uint64) (*model.TeacherReview, error)
	UpdateAcademyReview(ctx context.Context, id uint64, updates map[string]interface{}) error
	UpdateTeacherReview(ctx context.Context, id uint64, updates map[string]interface{}) error
	// ListPublicAcademyReviews 已审核且启用的评价（新→旧），最多 limit 条
	ListPublicAcademyReviews(ctx context.Context, academyID uint64, limit int) ([]model.AcademyReview, error)
	ListPublicTeacherReviews(ctx context.Context, teacherID uint64, limit int) ([]model.TeacherReview, error)
	// AcademyRatingBuckets 公开评价按星级分组统计
	AcademyRatingBuckets(ctx context.Context, academyID uint64) ([]RatingBucket, error)
	TeacherRatingBuckets(ctx context.Context, teacherID uint64) ([]RatingBucket, error)
}

// RatingBucket 单个星级的评价数与评分合计；星级为四舍五入后夹在 1~5
type RatingBucket struct {
	Star  int
	Count int
	Total float64
}

const (
	publicReviewCond = "is_approved = ? AND is_active = ?"
	// numeric 的 ROUND 为远离零取整
	ratingStarExpr = "GREATEST(1, LEAST(5, ROUND(rating)))::int"
)

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo 创建 ReviewRepository 实例
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) CreateAcademyReview(ctx context.Context, rv *model.AcademyReview) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *reviewRepo) CreateTeacherReview(ctx context.Context, rv *model.TeacherReview) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *reviewRepo) TeacherReviewExists(ctx context.Context, teacherID, studentID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TeacherReview{}).
		Where("teacher_id = ? AND student_id = ?", teacherID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepo) GetAcademyReview(ctx context.Context, id uint64) (*model.AcademyReview, error) {
	var rv model.AcademyReview
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepo) GetTeacherReview(ctx context.Context, id uint64) (*model.TeacherReview, error) {
	var rv model.TeacherReview
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepo) UpdateAcademyReview(ctx context.Context, id uint64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.AcademyReview{}).Where("id = ?", id).Updates(updates).Error
}

func (r *reviewRepo) UpdateTeacherReview(ctx context.Context, id uint64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.TeacherReview{}).Where("id = ?", id).Updates(updates).Error
}

func (r *reviewRepo) ListPublicAcademyReviews(ctx context.Context, academyID uint64, limit int) ([]model.AcademyReview, error) {
	var list []model.AcademyReview
	err := r.db.WithContext(ctx).
		Where("academy_id = ?", academyID).
		Where(publicReviewCond, true, true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *reviewRepo) ListPublicTeacherReviews(ctx context.Context, teacherID uint64, limit int) ([]model.TeacherReview, error) {
	var list []model.TeacherReview
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Where(publicReviewCond, true, true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *reviewRepo) AcademyRatingBuckets(ctx context.Context, academyID uint64) ([]RatingBucket, error) {
	return r.ratingBuckets(ctx, &model.AcademyReview{}, "academy_id = ?", academyID)
}

func (r *reviewRepo) TeacherRatingBuckets(ctx context.Context, teacherID uint64) ([]RatingBucket, error) {
	return r.ratingBuckets(ctx, &model.TeacherReview{}, "teacher_id = ?", teacherID)
}

func (r *reviewRepo) ratingBuckets(ctx context.Context, table interface{}, ownerCond string, ownerID uint64) ([]RatingBucket, error) {
	var buckets []RatingBucket
	err := r.db.WithContext(ctx).Model(table).
		Select(ratingStarExpr+" AS star, COUNT(*) AS count, COALESCE(SUM(rating), 0)::float8 AS total").
		Where(ownerCond, ownerID).
		Where(publicReviewCond, true, true).
		Group("star").
		Order("star").
		Scan(&buckets).Error
	return buckets, err
}
