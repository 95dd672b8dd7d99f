package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// StudentFilter 学员列表过滤条件
type StudentFilter struct {
	Search   string
	BatchID  uint64
	IsActive *bool
}

// studentColumns 附带关联账号启用状态
const studentColumns = "students.*, users.is_active AS account_active"

// StudentRepository 学员数据访问接口
// 机构仅能看到在本机构有报名记录的学员
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id uint64) (*model.Student, error)
	GetByUserID(ctx context.Context, userID string) (*model.Student, error)
	// Update 仅更新 fields 指定的列
	Update(ctx context.Context, student *model.Student, fields ...string) error
	// GetVisible 范围外视为不存在
	GetVisible(ctx context.Context, id uint64, scope Scope) (*model.Student, error)
	List(ctx context.Context, filter StudentFilter, scope Scope, page pagination.Request) ([]model.Student, int64, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id uint64) (*model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student, fields ...string) error {
	q := r.db.WithContext(ctx).Model(student)
	if len(fields) > 0 {
		q = q.Select(fields)
	}
	return q.Updates(student).Error
}

func (r *studentRepo) scoped(ctx context.Context, scope Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Student{}).
		Joins("LEFT JOIN users ON users.user_id = students.user_id")
	switch {
	case scope.All:
		return q
	case scope.AcademyID != 0:
		return q.Where(`EXISTS (SELECT 1 FROM batch_enrollments be
			JOIN batches b ON b.id = be.batch_id
			JOIN courses c ON c.id = b.course_id
			WHERE be.student_id = students.id AND c.academy_id = ?)`, scope.AcademyID)
	case scope.StudentID != 0:
		return q.Where("students.id = ?", scope.StudentID)
	default:
		return q.Where("1 = 0")
	}
}

func (r *studentRepo) GetVisible(ctx context.Context, id uint64, scope Scope) (*model.Student, error) {
	var s model.Student
	err := r.scoped(ctx, scope).
		Select(studentColumns).
		Where("students.id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) filtered(ctx context.Context, f StudentFilter, scope Scope) *gorm.DB {
	q := searchAny(r.scoped(ctx, scope), f.Search, "students.name", "students.phone", "students.email")
	if f.BatchID != 0 {
		q = q.Where("EXISTS (SELECT 1 FROM batch_enrollments be WHERE be.student_id = students.id AND be.batch_id = ?)", f.BatchID)
	}
	if f.IsActive != nil {
		// 无账号的学员档案视为启用
		q = q.Where("COALESCE(users.is_active, TRUE) = ?", *f.IsActive)
	}
	return q
}

func (r *studentRepo) List(ctx context.Context, f StudentFilter, scope Scope, page pagination.Request) ([]model.Student, int64, error) {
	var total int64
	if err := r.filtered(ctx, f, scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.Student
	err := r.filtered(ctx, f, scope).
		Select(studentColumns).
		Order("students.name ASC").
		Order("students.id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}
