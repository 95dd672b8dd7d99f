package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// 机构评分子查询：仅统计已审核且有效的评价，平均分保留 1 位小数
const (
	academyAvgRatingSQL = `(SELECT ROUND(AVG(ar.rating)::numeric, 1) FROM academy_reviews ar
		WHERE ar.academy_id = academies.id AND ar.is_approved AND ar.is_active)`
	academyReviewCountSQL = `(SELECT COUNT(*) FROM academy_reviews ar
		WHERE ar.academy_id = academies.id AND ar.is_approved AND ar.is_active)`
	academyRatingColumns = "academies.*, " + academyAvgRatingSQL + " AS avg_rating, " +
		academyReviewCountSQL + " AS review_count"
)

// AcademyFilter 管理端机构列表过滤条件
type AcademyFilter struct {
	Search          string
	DivisionID      uint64
	DistrictID      uint64
	UpazilaID       uint64
	IsActive        *bool
	EstablishedYear *int
	Ordering        string
}

var academyOrdering = map[string]string{
	"id":               "academies.id",
	"name":             "academies.name",
	"created_at":       "academies.created_at",
	"established_year": "academies.established_year",
}

// AcademyRepository 机构数据访问接口
type AcademyRepository interface {
	Create(ctx context.Context, academy *model.Academy) error
	GetByID(ctx context.Context, id uint64) (*model.Academy, error)
	GetByUserID(ctx context.Context, userID string) (*model.Academy, error)
	// ExistsByName 名称忽略大小写比较
	ExistsByName(ctx context.Context, name string, excludeID uint64) (bool, error)
	// Update 带乐观锁的部分更新；版本不匹配时返回 ErrOptimisticLock
	Update(ctx context.Context, academy *model.Academy, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, filter AcademyFilter, scope Scope, page pagination.Request) ([]model.Academy, int64, error)
	// ListAll 导出用，不分页
	ListAll(ctx context.Context, filter AcademyFilter, scope Scope) ([]model.Academy, error)
}

type academyRepo struct {
	db *gorm.DB
}

// NewAcademyRepo 创建 AcademyRepository 实例
func NewAcademyRepo(db *gorm.DB) AcademyRepository {
	return &academyRepo{db: db}
}

func (r *academyRepo) Create(ctx context.Context, academy *model.Academy) error {
	return r.db.WithContext(ctx).Omit("avg_rating", "review_count").Create(academy).Error
}

func (r *academyRepo) GetByID(ctx context.Context, id uint64) (*model.Academy, error) {
	var a model.Academy
	err := r.db.WithContext(ctx).
		Select(academyRatingColumns).
		Preload("User").
		Preload("Division").
		Preload("District").
		Preload("Upazila").
		Where("academies.id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *academyRepo) GetByUserID(ctx context.Context, userID string) (*model.Academy, error) {
	var a model.Academy
	err := r.db.WithContext(ctx).
		Select(academyRatingColumns).
		Preload("User").
		Preload("Division").
		Preload("District").
		Preload("Upazila").
		Where("academies.user_id = ?", userID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *academyRepo) ExistsByName(ctx context.Context, name string, excludeID uint64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Academy{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *academyRepo) Update(ctx context.Context, academy *model.Academy, updates map[string]interface{}) error {
	oldVersion := academy.Version
	values := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = oldVersion + 1

	result := r.db.WithContext(ctx).
		Model(&model.Academy{}).
		Where("id = ? AND version = ?", academy.ID, oldVersion).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	academy.Version = oldVersion + 1
	return nil
}

func (r *academyRepo) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Academy{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *academyRepo) filtered(ctx context.Context, f AcademyFilter, scope Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Academy{})
	q = applyScope(q, scope, scopeColumns{academy: "academies.id"})
	q = searchAny(q, f.Search, "academies.name", "academies.description", "academies.email", "academies.contact_number")
	if f.DivisionID != 0 {
		q = q.Where("academies.division_id = ?", f.DivisionID)
	}
	if f.DistrictID != 0 {
		q = q.Where("academies.district_id = ?", f.DistrictID)
	}
	if f.UpazilaID != 0 {
		q = q.Where("academies.upazila_id = ?", f.UpazilaID)
	}
	if f.IsActive != nil {
		q = q.Where("academies.is_active = ?", *f.IsActive)
	}
	if f.EstablishedYear != nil {
		q = q.Where("academies.established_year = ?", *f.EstablishedYear)
	}
	return q
}

func (r *academyRepo) List(ctx context.Context, f AcademyFilter, scope Scope, page pagination.Request) ([]model.Academy, int64, error) {
	var total int64
	if err := r.filtered(ctx, f, scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.Academy
	q := r.filtered(ctx, f, scope).
		Select(academyRatingColumns).
		Preload("User").
		Preload("Division").
		Preload("District").
		Preload("Upazila")
	err := orderBy(q, f.Ordering, academyOrdering, "name", "academies.id").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}

func (r *academyRepo) ListAll(ctx context.Context, f AcademyFilter, scope Scope) ([]model.Academy, error) {
	var list []model.Academy
	q := r.filtered(ctx, f, scope).
		Select(academyRatingColumns).
		Preload("User").
		Preload("Division").
		Preload("District").
		Preload("Upazila")
	err := orderBy(q, f.Ordering, academyOrdering, "name", "academies.id").Find(&list).Error
	return list, err
}
