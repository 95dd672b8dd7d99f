package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
)

// GeoRepository 地理数据（只读）访问接口
type GeoRepository interface {
	GetDivision(ctx context.Context, id uint64) (*model.Division, error)
	GetDistrict(ctx context.Context, id uint64) (*model.District, error)
	GetUpazila(ctx context.Context, id uint64) (*model.Upazila, error)
	ListDivisions(ctx context.Context) ([]model.Division, error)
	// ListDistricts divisionID 为 0 时返回全部
	ListDistricts(ctx context.Context, divisionID uint64) ([]model.District, error)
	// ListUpazilas districtID 为 0 时返回全部
	ListUpazilas(ctx context.Context, districtID uint64) ([]model.Upazila, error)
}

type geoRepo struct {
	db *gorm.DB
}

// NewGeoRepo 创建 GeoRepository 实例
func NewGeoRepo(db *gorm.DB) GeoRepository {
	return &geoRepo{db: db}
}

func (r *geoRepo) GetDivision(ctx context.Context, id uint64) (*model.Division, error) {
	var d model.Division
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *geoRepo) GetDistrict(ctx context.Context, id uint64) (*model.District, error) {
	var d model.District
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *geoRepo) GetUpazila(ctx context.Context, id uint64) (*model.Upazila, error) {
	var u model.Upazila
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *geoRepo) ListDivisions(ctx context.Context) ([]model.Division, error) {
	var list []model.Division
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *geoRepo) ListDistricts(ctx context.Context, divisionID uint64) ([]model.District, error) {
	var list []model.District
	db := r.db.WithContext(ctx)
	if divisionID != 0 {
		db = db.Where("division_id = ?", divisionID)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *geoRepo) ListUpazilas(ctx context.Context, districtID uint64) ([]model.Upazila, error) {
	var list []model.Upazila
	db := r.db.WithContext(ctx)
	if districtID != 0 {
		db = db.Where("district_id = ?", districtID)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}
