package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// EnrollmentFilter 报名列表过滤条件
type EnrollmentFilter struct {
	AcademyID uint64
	BatchID   uint64
	StudentID uint64
	IsActive  *bool
}

// EnrollmentRepository 报名数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, e *model.BatchEnrollment) error
	GetByID(ctx context.Context, id uint64) (*model.BatchEnrollment, error)
	Exists(ctx context.Context, batchID, studentID uint64) (bool, error)
	Update(ctx context.Context, id uint64, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint64) error
	DeleteByBatchIDs(ctx context.Context, batchIDs []uint64) (int64, error)
	DeleteByCourse(ctx context.Context, courseID uint64) (int64, error)
	DeleteByAcademy(ctx context.Context, academyID uint64) (int64, error)
	// CountActiveStudents 机构下有效报名的去重学员数
	CountActiveStudents(ctx context.Context, academyID uint64) (int64, error)
	List(ctx context.Context, filter EnrollmentFilter, scope Scope, page pagination.Request) ([]model.BatchEnrollment, int64, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

var enrollmentScope = scopeColumns{
	academy: "courses.academy_id",
	student: "batch_enrollments.student_id = ?",
}

func (r *enrollmentRepo) Create(ctx context.Context, e *model.BatchEnrollment) error {
	return r.db.WithContext(ctx).Omit("Batch", "Student").Create(e).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id uint64) (*model.BatchEnrollment, error) {
	var e model.BatchEnrollment
	err := r.db.WithContext(ctx).
		Preload("Batch").
		Preload("Batch.Course").
		Preload("Student").
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) Exists(ctx context.Context, batchID, studentID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BatchEnrollment{}).
		Where("batch_id = ? AND student_id = ?", batchID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepo) Update(ctx context.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.BatchEnrollment{}).Where("id = ?", id).Updates(updates).Error
}

func (r *enrollmentRepo) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.BatchEnrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *enrollmentRepo) DeleteByBatchIDs(ctx context.Context, batchIDs []uint64) (int64, error) {
	if len(batchIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("batch_id IN ?", batchIDs).Delete(&model.BatchEnrollment{})
	return result.RowsAffected, result.Error
}

func (r *enrollmentRepo) DeleteByCourse(ctx context.Context, courseID uint64) (int64, error) {
	db := r.db.WithContext(ctx)
	batches := db.Model(&model.Batch{}).Select("id").Where("course_id = ?", courseID)
	result := db.Where("batch_id IN (?)", batches).Delete(&model.BatchEnrollment{})
	return result.RowsAffected, result.Error
}

func (r *enrollmentRepo) DeleteByAcademy(ctx context.Context, academyID uint64) (int64, error) {
	db := r.db.WithContext(ctx)
	courses := db.Model(&model.Course{}).Select("id").Where("academy_id = ?", academyID)
	batches := db.Model(&model.Batch{}).Select("id").Where("course_id IN (?)", courses)
	result := db.Where("batch_id IN (?)", batches).Delete(&model.BatchEnrollment{})
	return result.RowsAffected, result.Error
}

func (r *enrollmentRepo) CountActiveStudents(ctx context.Context, academyID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BatchEnrollment{}).
		Joins("JOIN batches ON batches.id = batch_enrollments.batch_id").
		Joins("JOIN courses ON courses.id = batches.course_id").
		Where("courses.academy_id = ? AND batch_enrollments.is_active", academyID).
		Distinct("batch_enrollments.student_id").
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) filtered(ctx context.Context, f EnrollmentFilter, scope Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.BatchEnrollment{}).
		Joins("JOIN batches ON batches.id = batch_enrollments.batch_id").
		Joins("JOIN courses ON courses.id = batches.course_id")
	q = applyScope(q, scope, enrollmentScope)
	if f.AcademyID != 0 {
		q = q.Where("courses.academy_id = ?", f.AcademyID)
	}
	if f.BatchID != 0 {
		q = q.Where("batch_enrollments.batch_id = ?", f.BatchID)
	}
	if f.StudentID != 0 {
		q = q.Where("batch_enrollments.student_id = ?", f.StudentID)
	}
	if f.IsActive != nil {
		q = q.Where("batch_enrollments.is_active = ?", *f.IsActive)
	}
	return q
}

func (r *enrollmentRepo) List(ctx context.Context, f EnrollmentFilter, scope Scope, page pagination.Request) ([]model.BatchEnrollment, int64, error) {
	var total int64
	if err := r.filtered(ctx, f, scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.BatchEnrollment
	err := r.filtered(ctx, f, scope).
		Select("batch_enrollments.*").
		Preload("Batch").
		Preload("Batch.Course").
		Preload("Student").
		Order("batch_enrollments.enrollment_date DESC").
		Order("batch_enrollments.id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}
