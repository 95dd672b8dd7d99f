package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// UserFilter 用户列表过滤条件
type UserFilter struct {
	Role     string
	IsActive *bool
	// Search 匹配用户名、手机号、邮箱与姓名
	Search string
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByLogin 按用户名或手机号查找
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	// Update 仅更新 fields 指定的列
	Update(ctx context.Context, user *model.User, fields ...string) error
	List(ctx context.Context, filter UserFilter, page pagination.Request) ([]model.User, int64, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR phone = ?", login, login).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN username = ? THEN 0 ELSE 1 END",
			Vars: []interface{}{login},
		}}).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username)
	if excludeID != "" {
		q = q.Where("user_id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	if email == "" {
		return false, nil
	}
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("LOWER(email) = LOWER(?)", email)
	if excludeID != "" {
		q = q.Where("user_id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *userRepo) Update(ctx context.Context, user *model.User, fields ...string) error {
	q := r.db.WithContext(ctx).Model(user)
	if len(fields) > 0 {
		q = q.Select(fields)
	}
	return q.Updates(user).Error
}

func (r *userRepo) List(ctx context.Context, f UserFilter, page pagination.Request) ([]model.User, int64, error) {
	q := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.User{})
		if f.Role != "" {
			db = db.Where("role = ?", f.Role)
		}
		if f.IsActive != nil {
			db = db.Where("is_active = ?", *f.IsActive)
		}
		if f.Search != "" {
			kw := likePattern(f.Search)
			db = db.Where(
				"username ILIKE ? OR phone ILIKE ? OR email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?",
				kw, kw, kw, kw, kw,
			)
		}
		return db
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.User
	err := q().
		Order("created_at DESC, user_id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}
