package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// LandingAcademyFilter 落地页机构过滤条件
type LandingAcademyFilter struct {
	Search     string
	Program    string
	DivisionID uint64
	DistrictID uint64
	MinRating  *float64
}

// LandingTeacherFilter 落地页教师过滤条件
type LandingTeacherFilter struct {
	Search        string
	Subject       string
	MinExperience *int
	MaxExperience *int
	IsAvailable   *bool
	MinRating     *float64
}

// LandingRepository 公开落地页查询，仅返回所属用户有效的机构与教师
type LandingRepository interface {
	FeaturedAcademies(ctx context.Context, limit int) ([]model.Academy, error)
	ListAcademies(ctx context.Context, filter LandingAcademyFilter, page pagination.Request) ([]model.Academy, int64, error)
	GetAcademy(ctx context.Context, id uint64) (*model.Academy, error)
	FeaturedTeachers(ctx context.Context, limit int) ([]model.Teacher, error)
	ListTeachers(ctx context.Context, filter LandingTeacherFilter, page pagination.Request) ([]model.Teacher, int64, error)
	GetTeacher(ctx context.Context, id uint64) (*model.Teacher, error)
	// ProgramNames 有效项目名称去重排序
	ProgramNames(ctx context.Context) ([]string, error)
	// SubjectNames 有效教师的科目去重排序
	SubjectNames(ctx context.Context) ([]string, error)
}

type landingRepo struct {
	db *gorm.DB
}

// NewLandingRepo 创建 LandingRepository 实例
func NewLandingRepo(db *gorm.DB) LandingRepository {
	return &landingRepo{db: db}
}

func (r *landingRepo) publicAcademies(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Academy{}).
		Joins("JOIN users ON users.user_id = academies.user_id AND users.is_active").
		Where("academies.is_active")
}

func (r *landingRepo) publicTeachers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Teacher{}).
		Joins("JOIN academies ON academies.id = teachers.academy_id AND academies.is_active").
		Joins("JOIN users ON users.user_id = academies.user_id AND users.is_active").
		Where("teachers.is_active")
}

// ── 机构 ──

func (r *landingRepo) FeaturedAcademies(ctx context.Context, limit int) ([]model.Academy, error) {
	var list []model.Academy
	err := r.publicAcademies(ctx).
		Select(academyRatingColumns).
		Preload("Division").
		Preload("District").
		Where("academies.is_featured").
		Order("academies.created_at DESC").
		Order("academies.id ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *landingRepo) filteredAcademies(ctx context.Context, f LandingAcademyFilter) *gorm.DB {
	q := r.publicAcademies(ctx)
	q = searchAny(q, f.Search, "academies.name", "academies.description", "academies.short_description")
	if f.Program != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM academy_programs ap
			WHERE ap.academy_id = academies.id AND ap.is_active AND ap.name ILIKE ?)`, likePattern(f.Program))
	}
	if f.DivisionID != 0 {
		q = q.Where("academies.division_id = ?", f.DivisionID)
	}
	if f.DistrictID != 0 {
		q = q.Where("academies.district_id = ?", f.DistrictID)
	}
	if f.MinRating != nil {
		q = q.Where(academyAvgRatingSQL+" >= ?", *f.MinRating)
	}
	return q
}

func (r *landingRepo) ListAcademies(ctx context.Context, f LandingAcademyFilter, page pagination.Request) ([]model.Academy, int64, error) {
	var total int64
	if err := r.filteredAcademies(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.Academy
	err := r.filteredAcademies(ctx, f).
		Select(academyRatingColumns).
		Preload("Division").
		Preload("District").
		Preload("Programs", "is_active").
		Order("academies.is_featured DESC").
		Order(academyAvgRatingSQL + " DESC NULLS LAST").
		Order("academies.created_at DESC").
		Order("academies.id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}

func (r *landingRepo) GetAcademy(ctx context.Context, id uint64) (*model.Academy, error) {
	var a model.Academy
	err := r.publicAcademies(ctx).
		Select(academyRatingColumns).
		Preload("Division").
		Preload("District").
		Preload("Upazila").
		Preload("Gallery", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active").Order("sort_order ASC, id ASC")
		}).
		Preload("Facilities", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active").Order("name ASC")
		}).
		Preload("Programs", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active").Order("name ASC")
		}).
		Preload("Courses", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC, id ASC")
		}).
		Preload("Courses.Batches", func(db *gorm.DB) *gorm.DB {
			return db.Select(batchColumns).Where("batches.is_active").Order("batches.start_date ASC, batches.id ASC")
		}).
		Preload("Teachers", func(db *gorm.DB) *gorm.DB {
			return db.Select(teacherRatingColumns).
				Where("teachers.is_active").
				Order("teachers.is_featured DESC, teachers.full_name ASC")
		}).
		Preload("Teachers.Subjects").
		Where("academies.id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ── 教师 ──

func (r *landingRepo) FeaturedTeachers(ctx context.Context, limit int) ([]model.Teacher, error) {
	var list []model.Teacher
	err := r.publicTeachers(ctx).
		Select(teacherRatingColumns).
		Preload("Academy").
		Preload("Subjects").
		Where("teachers.is_featured").
		Order("teachers.created_at DESC").
		Order("teachers.id ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *landingRepo) filteredTeachers(ctx context.Context, f LandingTeacherFilter) *gorm.DB {
	q := r.publicTeachers(ctx)
	q = searchAny(q, f.Search, "teachers.full_name", "teachers.title", "teachers.bio")
	if f.Subject != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM teacher_subjects ts
			WHERE ts.teacher_id = teachers.id AND ts.subject ILIKE ?)`, likePattern(f.Subject))
	}
	if f.MinExperience != nil {
		q = q.Where("teachers.experience_years >= ?", *f.MinExperience)
	}
	if f.MaxExperience != nil {
		q = q.Where("teachers.experience_years <= ?", *f.MaxExperience)
	}
	if f.IsAvailable != nil {
		q = q.Where("teachers.is_available = ?", *f.IsAvailable)
	}
	if f.MinRating != nil {
		q = q.Where(teacherAvgRatingSQL+" >= ?", *f.MinRating)
	}
	return q
}

func (r *landingRepo) ListTeachers(ctx context.Context, f LandingTeacherFilter, page pagination.Request) ([]model.Teacher, int64, error) {
	var total int64
	if err := r.filteredTeachers(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.Teacher
	err := r.filteredTeachers(ctx, f).
		Select(teacherRatingColumns).
		Preload("Academy").
		Preload("Subjects").
		Order("teachers.is_featured DESC").
		Order("teachers.created_at DESC").
		Order("teachers.id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}

func (r *landingRepo) GetTeacher(ctx context.Context, id uint64) (*model.Teacher, error) {
	var t model.Teacher
	err := r.publicTeachers(ctx).
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

// ── 过滤选项 ──

func (r *landingRepo) ProgramNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.AcademyProgram{}).
		Where("is_active").
		Distinct("name").
		Order("name ASC").
		Pluck("name", &names).Error
	return names, err
}

func (r *landingRepo) SubjectNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.TeacherSubject{}).
		Joins("JOIN teachers ON teachers.id = teacher_subjects.teacher_id AND teachers.is_active").
		Distinct("teacher_subjects.subject").
		Order("teacher_subjects.subject ASC").
		Pluck("teacher_subjects.subject", &names).Error
	return names, err
}
