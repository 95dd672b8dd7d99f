package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// 学员通过报名可见的课程
const studentCourseScopeSQL = `courses.id IN (SELECT b.course_id FROM batches b
	JOIN batch_enrollments e ON e.batch_id = b.id WHERE e.student_id = ?)`

// CourseFilter 课程列表过滤条件
type CourseFilter struct {
	Search     string
	AcademyID  uint64
	CourseType string
	MinFee     *float64
	MaxFee     *float64
	Ordering   string
}

var courseOrdering = map[string]string{
	"name":         "courses.name",
	"fee":          "courses.fee",
	"created_at":   "courses.created_at",
	"academy_name": "academies.name",
}

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	// GetByID 预加载机构与班次（含学员数、教师）
	GetByID(ctx context.Context, id uint64) (*model.Course, error)
	ExistsByName(ctx context.Context, academyID uint64, name string, excludeID uint64) (bool, error)
	Update(ctx context.Context, id uint64, updates map[string]interface{}) error
	// IsVisible 课程是否落在 scope 内
	IsVisible(ctx context.Context, id uint64, scope Scope) (bool, error)
	Delete(ctx context.Context, id uint64) error
	DeleteByAcademy(ctx context.Context, academyID uint64) (int64, error)
	List(ctx context.Context, filter CourseFilter, scope Scope, page pagination.Request) ([]model.Course, int64, error)
	// Dropdown 下拉选项，按名称搜索
	Dropdown(ctx context.Context, search string, academyID uint64, scope Scope) ([]model.Course, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

var courseScope = scopeColumns{academy: "courses.academy_id", student: studentCourseScopeSQL}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit("Batches", "Academy").Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id uint64) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Preload("Academy").
		Preload("Batches", func(db *gorm.DB) *gorm.DB {
			return db.Select(batchColumns).Order("batches.start_date DESC, batches.id ASC")
		}).
		Preload("Batches.Teachers").
		Where("courses.id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) ExistsByName(ctx context.Context, academyID uint64, name string, excludeID uint64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("academy_id = ? AND name = ?", academyID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *courseRepo) Update(ctx context.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Updates(updates).Error
}

func (r *courseRepo) IsVisible(ctx context.Context, id uint64, scope Scope) (bool, error) {
	var count int64
	q := applyScope(r.db.WithContext(ctx).Model(&model.Course{}), scope, courseScope)
	err := q.Where("courses.id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *courseRepo) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseRepo) DeleteByAcademy(ctx context.Context, academyID uint64) (int64, error) {
	result := r.db.WithContext(ctx).Where("academy_id = ?", academyID).Delete(&model.Course{})
	return result.RowsAffected, result.Error
}

func (r *courseRepo) filtered(ctx context.Context, f CourseFilter, scope Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Course{}).
		Joins("LEFT JOIN academies ON academies.id = courses.academy_id")
	q = applyScope(q, scope, courseScope)
	q = searchAny(q, f.Search, "courses.name", "courses.description", "academies.name")
	if f.AcademyID != 0 {
		q = q.Where("courses.academy_id = ?", f.AcademyID)
	}
	if f.CourseType != "" {
		q = q.Where("courses.course_type = ?", f.CourseType)
	}
	if f.MinFee != nil {
		q = q.Where("courses.fee >= ?", *f.MinFee)
	}
	if f.MaxFee != nil {
		q = q.Where("courses.fee <= ?", *f.MaxFee)
	}
	return q
}

func (r *courseRepo) List(ctx context.Context, f CourseFilter, scope Scope, page pagination.Request) ([]model.Course, int64, error) {
	var total int64
	if err := r.filtered(ctx, f, scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.Course
	q := r.filtered(ctx, f, scope).
		Select("courses.*").
		Preload("Academy").
		Preload("Batches", func(db *gorm.DB) *gorm.DB {
			return db.Select(batchColumns).Where("batches.is_active = ?", true).
				Order("batches.start_date DESC, batches.id ASC")
		})
	err := orderBy(q, f.Ordering, courseOrdering, "-created_at", "courses.id").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}

func (r *courseRepo) Dropdown(ctx context.Context, search string, academyID uint64, scope Scope) ([]model.Course, error) {
	q := r.db.WithContext(ctx).Model(&model.Course{}).Select("courses.id", "courses.name")
	q = applyScope(q, scope, courseScope)
	q = searchAny(q, search, "courses.name")
	if academyID != 0 {
		q = q.Where("courses.academy_id = ?", academyID)
	}
	var list []model.Course
	err := q.Order("courses.name ASC, courses.id ASC").Find(&list).Error
	return list, err
}
