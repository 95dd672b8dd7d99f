package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

const (
	batchStudentCountSQL = `(SELECT COUNT(*) FROM batch_enrollments be
		WHERE be.batch_id = batches.id AND be.is_active)`
	batchColumns = "batches.*, " + batchStudentCountSQL + " AS student_count"

	studentBatchScopeSQL = `batches.id IN (SELECT e.batch_id FROM batch_enrollments e WHERE e.student_id = ?)`
)

// BatchFilter 班次列表过滤条件
type BatchFilter struct {
	Search      string
	AcademyID   uint64
	CourseID    uint64
	CourseType  string
	Name        string
	IsActive    *bool
	StartFrom   *time.Time
	StartTo     *time.Time
	EndFrom     *time.Time
	EndTo       *time.Time
	HasStudents *bool
	Ordering    string
}

var batchOrdering = map[string]string{
	"name":          "batches.name",
	"start_date":    "batches.start_date",
	"end_date":      "batches.end_date",
	"course_name":   "courses.name",
	"student_count": batchStudentCountSQL,
}

// BatchLink 班次与教师关联行
type BatchLink struct {
	BatchID   uint64
	TeacherID uint64
}

// TableName 指定表名
func (BatchLink) TableName() string { return "batch_teachers" }

// BatchRepository 班次数据访问接口
type BatchRepository interface {
	Create(ctx context.Context, batch *model.Batch) error
	GetByID(ctx context.Context, id uint64) (*model.Batch, error)
	// LockByID 事务内对班次加行锁（FOR UPDATE）
	LockByID(ctx context.Context, id uint64) error
	ListByCourse(ctx context.Context, courseID uint64) ([]model.Batch, error)
	ExistsByName(ctx context.Context, courseID uint64, name string, excludeID uint64) (bool, error)
	Update(ctx context.Context, id uint64, updates map[string]interface{}) error
	// IsVisible 班次是否落在 scope 内
	IsVisible(ctx context.Context, id uint64, scope Scope) (bool, error)
	// ReplaceTeachers 用 teacherIDs 整体替换班次的教师
	ReplaceTeachers(ctx context.Context, batchID uint64, teacherIDs []uint64) error
	// 以下删除均先移除教师关联行
	Delete(ctx context.Context, id uint64) error
	DeleteByIDs(ctx context.Context, ids []uint64) (int64, error)
	DeleteByCourse(ctx context.Context, courseID uint64) (int64, error)
	DeleteByAcademy(ctx context.Context, academyID uint64) (int64, error)
	List(ctx context.Context, filter BatchFilter, scope Scope, page pagination.Request) ([]model.Batch, int64, error)
}

type batchRepo struct {
	db *gorm.DB
}

// NewBatchRepo 创建 BatchRepository 实例
func NewBatchRepo(db *gorm.DB) BatchRepository {
	return &batchRepo{db: db}
}

var batchScope = scopeColumns{academy: "courses.academy_id", student: studentBatchScopeSQL}

func (r *batchRepo) Create(ctx context.Context, batch *model.Batch) error {
	return r.db.WithContext(ctx).Omit("Teachers", "Course").Create(batch).Error
}

func (r *batchRepo) GetByID(ctx context.Context, id uint64) (*model.Batch, error) {
	var b model.Batch
	err := r.db.WithContext(ctx).
		Select(batchColumns).
		Preload("Course").
		Preload("Course.Academy").
		Preload("Teachers").
		Where("batches.id = ?", id).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *batchRepo) LockByID(ctx context.Context, id uint64) error {
	var b model.Batch
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&b).Error
}

func (r *batchRepo) ListByCourse(ctx context.Context, courseID uint64) ([]model.Batch, error) {
	var list []model.Batch
	err := r.db.WithContext(ctx).
		Select(batchColumns).
		Where("batches.course_id = ?", courseID).
		Order("batches.id ASC").
		Find(&list).Error
	return list, err
}

func (r *batchRepo) ExistsByName(ctx context.Context, courseID uint64, name string, excludeID uint64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Batch{}).
		Where("course_id = ? AND name = ?", courseID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *batchRepo) Update(ctx context.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Batch{}).Where("id = ?", id).Updates(updates).Error
}

func (r *batchRepo) IsVisible(ctx context.Context, id uint64, scope Scope) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Batch{}).
		Joins("JOIN courses ON courses.id = batches.course_id")
	err := applyScope(q, scope, batchScope).Where("batches.id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *batchRepo) ReplaceTeachers(ctx context.Context, batchID uint64, teacherIDs []uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("batch_id = ?", batchID).Delete(&BatchLink{}).Error; err != nil {
		return err
	}
	if len(teacherIDs) == 0 {
		return nil
	}
	links := make([]BatchLink, 0, len(teacherIDs))
	seen := make(map[uint64]bool, len(teacherIDs))
	for _, tid := range teacherIDs {
		if seen[tid] {
			continue
		}
		seen[tid] = true
		links = append(links, BatchLink{BatchID: batchID, TeacherID: tid})
	}
	return db.Create(&links).Error
}

func (r *batchRepo) Delete(ctx context.Context, id uint64) error {
	n, err := r.DeleteByIDs(ctx, []uint64{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *batchRepo) DeleteByIDs(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("batch_id IN ?", ids).Delete(&BatchLink{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("id IN ?", ids).Delete(&model.Batch{})
	return result.RowsAffected, result.Error
}

func (r *batchRepo) DeleteByCourse(ctx context.Context, courseID uint64) (int64, error) {
	db := r.db.WithContext(ctx)
	sub := db.Model(&model.Batch{}).Select("id").Where("course_id = ?", courseID)
	if err := db.Where("batch_id IN (?)", sub).Delete(&BatchLink{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("course_id = ?", courseID).Delete(&model.Batch{})
	return result.RowsAffected, result.Error
}

func (r *batchRepo) DeleteByAcademy(ctx context.Context, academyID uint64) (int64, error) {
	db := r.db.WithContext(ctx)
	courses := db.Model(&model.Course{}).Select("id").Where("academy_id = ?", academyID)
	batches := db.Model(&model.Batch{}).Select("id").Where("course_id IN (?)", courses)
	if err := db.Where("batch_id IN (?)", batches).Delete(&BatchLink{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("course_id IN (?)", courses).Delete(&model.Batch{})
	return result.RowsAffected, result.Error
}

func (r *batchRepo) filtered(ctx context.Context, f BatchFilter, scope Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Batch{}).
		Joins("JOIN courses ON courses.id = batches.course_id").
		Joins("LEFT JOIN academies ON academies.id = courses.academy_id")
	q = applyScope(q, scope, batchScope)
	q = searchAny(q, f.Search, "batches.name", "batches.description", "courses.name", "academies.name")
	if f.AcademyID != 0 {
		q = q.Where("courses.academy_id = ?", f.AcademyID)
	}
	if f.CourseID != 0 {
		q = q.Where("batches.course_id = ?", f.CourseID)
	}
	if f.CourseType != "" {
		q = q.Where("courses.course_type = ?", f.CourseType)
	}
	if f.Name != "" {
		q = q.Where("batches.name ILIKE ?", likePattern(f.Name))
	}
	if f.IsActive != nil {
		q = q.Where("batches.is_active = ?", *f.IsActive)
	}
	if f.StartFrom != nil {
		q = q.Where("batches.start_date >= ?", *f.StartFrom)
	}
	if f.StartTo != nil {
		q = q.Where("batches.start_date <= ?", *f.StartTo)
	}
	if f.EndFrom != nil {
		q = q.Where("batches.end_date >= ?", *f.EndFrom)
	}
	if f.EndTo != nil {
		q = q.Where("batches.end_date <= ?", *f.EndTo)
	}
	if f.HasStudents != nil {
		if *f.HasStudents {
			q = q.Where(batchStudentCountSQL + " > 0")
		} else {
			q = q.Where(batchStudentCountSQL + " = 0")
		}
	}
	return q
}

func (r *batchRepo) List(ctx context.Context, f BatchFilter, scope Scope, page pagination.Request) ([]model.Batch, int64, error) {
	var total int64
	if err := r.filtered(ctx, f, scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.Batch
	q := r.filtered(ctx, f, scope).
		Select(batchColumns).
		Preload("Course").
		Preload("Course.Academy").
		Preload("Teachers")
	err := orderBy(q, f.Ordering, batchOrdering, "-start_date", "batches.id").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}
