package repository

import (
	"context"

	"gorm.io/gorm"
)

// ChildStore 一对多子集合的存取，供声明式同步使用
type ChildStore[T any] interface {
	ListByParent(ctx context.Context, parentID uint64) ([]T, error)
	Create(ctx context.Context, item *T) error
	// Update 覆盖除主键与创建时间外的所有列
	Update(ctx context.Context, item *T) error
	// DeleteByIDs 仅删除属于 parentID 的行
	DeleteByIDs(ctx context.Context, parentID uint64, ids []uint64) (int64, error)
}

type gormChildStore[T any] struct {
	db           *gorm.DB
	parentColumn string
}

// NewChildStore 创建 ChildStore；parentColumn 为外键列名
func NewChildStore[T any](db *gorm.DB, parentColumn string) ChildStore[T] {
	return &gormChildStore[T]{db: db, parentColumn: parentColumn}
}

func (s *gormChildStore[T]) ListByParent(ctx context.Context, parentID uint64) ([]T, error) {
	var list []T
	err := s.db.WithContext(ctx).Where(s.parentColumn+" = ?", parentID).Order("id ASC").Find(&list).Error
	return list, err
}

func (s *gormChildStore[T]) Create(ctx context.Context, item *T) error {
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *gormChildStore[T]) Update(ctx context.Context, item *T) error {
	return s.db.WithContext(ctx).Model(item).Select("*").Omit("id", "created_at").Updates(item).Error
}

func (s *gormChildStore[T]) DeleteByIDs(ctx context.Context, parentID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var zero T
	result := s.db.WithContext(ctx).
		Where(s.parentColumn+" = ? AND id IN ?", parentID, ids).
		Delete(&zero)
	return result.RowsAffected, result.Error
}
