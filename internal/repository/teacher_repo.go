package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// 教师评分子查询：仅统计已审核且有效的评价
const (
	teacherAvgRatingSQL = `(SELECT ROUND(AVG(tr.rating)::numeric, 1) FROM teacher_reviews tr
		WHERE tr.teacher_id = teachers.id AND tr.is_approved AND tr.is_active)`
	teacherReviewCountSQL = `(SELECT COUNT(*) FROM teacher_reviews tr
		WHERE tr.teacher_id = teachers.id AND tr.is_approved AND tr.is_active)`
	teacherRatingColumns = "teachers.*, " + teacherAvgRatingSQL + " AS avg_rating, " +
		teacherReviewCountSQL + " AS review_count"
)

// TeacherFilter 管理端教师列表过滤条件
type TeacherFilter struct {
	Search      string
	AcademyID   uint64
	Subject     string
	IsActive    *bool
	IsAvailable *bool
}

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	Create(ctx context.Context, t *model.Teacher) error
	GetByID(ctx context.Context, id uint64) (*model.Teacher, error)
	Update(ctx context.Context, id uint64, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint64) error
	// CountInAcademy 统计 ids 中属于该机构的教师数
	CountInAcademy(ctx context.Context, academyID uint64, ids []uint64) (int64, error)
	List(ctx context.Context, filter TeacherFilter, scope Scope, page pagination.Request) ([]model.Teacher, int64, error)
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, t *model.Teacher) error {
	return r.db.WithContext(ctx).Omit("Academy", "Reviews").Create(t).Error
}

func (r *teacherRepo) GetByID(ctx context.Context, id uint64) (*model.Teacher, error) {
	var t model.Teacher
	err := r.db.WithContext(ctx).
		Select(teacherRatingColumns).
		Preload("Academy").
		Preload("Subjects", func(db *gorm.DB) *gorm.DB { return db.Order("is_primary DESC, id ASC") }).
		Preload("Educations", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Achievements", func(db *gorm.DB) *gorm.DB { return db.Order("year DESC NULLS LAST, id ASC") }).
		Where("teachers.id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teacherRepo) Update(ctx context.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Teacher{}).Where("id = ?", id).Updates(updates).Error
}

func (r *teacherRepo) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Teacher{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teacherRepo) CountInAcademy(ctx context.Context, academyID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Teacher{}).
		Where("academy_id = ? AND id IN ?", academyID, ids).
		Count(&count).Error
	return count, err
}

func (r *teacherRepo) filtered(ctx context.Context, f TeacherFilter, scope Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Teacher{})
	q = applyScope(q, scope, scopeColumns{academy: "teachers.academy_id"})
	q = searchAny(q, f.Search, "teachers.full_name", "teachers.title", "teachers.email", "teachers.phone")
	if f.AcademyID != 0 {
		q = q.Where("teachers.academy_id = ?", f.AcademyID)
	}
	if f.Subject != "" {
		q = q.Where("EXISTS (SELECT 1 FROM teacher_subjects ts WHERE ts.teacher_id = teachers.id AND ts.subject = ?)", f.Subject)
	}
	if f.IsActive != nil {
		q = q.Where("teachers.is_active = ?", *f.IsActive)
	}
	if f.IsAvailable != nil {
		q = q.Where("teachers.is_available = ?", *f.IsAvailable)
	}
	return q
}

func (r *teacherRepo) List(ctx context.Context, f TeacherFilter, scope Scope, page pagination.Request) ([]model.Teacher, int64, error) {
	var total int64
	if err := r.filtered(ctx, f, scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.Teacher
	err := r.filtered(ctx, f, scope).
		Select(teacherRatingColumns).
		Preload("Subjects", func(db *gorm.DB) *gorm.DB { return db.Order("is_primary DESC, id ASC") }).
		Order("teachers.created_at DESC").
		Order("teachers.id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}
