package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
)

// GeoService 地理数据下拉接口，结果只读且走缓存
type GeoService interface {
	Divisions(ctx context.Context) ([]dto.GeoItem, error)
	// Districts division 为 0 时返回全部
	Districts(ctx context.Context, division uint64) ([]dto.GeoItem, error)
	// Upazilas district 为 0 时返回全部
	Upazilas(ctx context.Context, district uint64) ([]dto.GeoItem, error)
}

type geoService struct {
	repo     *repository.Repository
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewGeoService 创建 GeoService 实例
func NewGeoService(repo *repository.Repository, cache Cache, cacheTTL time.Duration, logger *zap.Logger) GeoService {
	return &geoService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *geoService) Divisions(ctx context.Context) ([]dto.GeoItem, error) {
	items, err := cached(ctx, s.cache, s.logger, cacheKeyDivisions, s.cacheTTL, func() ([]dto.GeoItem, error) {
		list, err := s.repo.Geo.ListDivisions(ctx)
		if err != nil {
			return nil, err
		}
		return geoItems(list, func(d *model.Division) dto.GeoItem {
			return dto.GeoItem{ID: d.ID, Name: d.Name, BnName: d.BnName}
		}), nil
	})
	if err != nil {
		s.logger.Error("查询行政区失败", zap.Error(err))
		return nil, err
	}
	return nonNil(items), nil
}

func (s *geoService) Districts(ctx context.Context, division uint64) ([]dto.GeoItem, error) {
	key := cacheKeyDistricts + strconv.FormatUint(division, 10)
	items, err := cached(ctx, s.cache, s.logger, key, s.cacheTTL, func() ([]dto.GeoItem, error) {
		list, err := s.repo.Geo.ListDistricts(ctx, division)
		if err != nil {
			return nil, err
		}
		return geoItems(list, func(d *model.District) dto.GeoItem {
			return dto.GeoItem{ID: d.ID, Name: d.Name, BnName: d.BnName}
		}), nil
	})
	if err != nil {
		s.logger.Error("查询县列表失败", zap.Uint64("division", division), zap.Error(err))
		return nil, err
	}
	return nonNil(items), nil
}

func (s *geoService) Upazilas(ctx context.Context, district uint64) ([]dto.GeoItem, error) {
	key := cacheKeyUpazilas + strconv.FormatUint(district, 10)
	items, err := cached(ctx, s.cache, s.logger, key, s.cacheTTL, func() ([]dto.GeoItem, error) {
		list, err := s.repo.Geo.ListUpazilas(ctx, district)
		if err != nil {
			return nil, err
		}
		return geoItems(list, func(u *model.Upazila) dto.GeoItem {
			return dto.GeoItem{ID: u.ID, Name: u.Name, BnName: u.BnName}
		}), nil
	})
	if err != nil {
		s.logger.Error("查询乡列表失败", zap.Uint64("district", district), zap.Error(err))
		return nil, err
	}
	return nonNil(items), nil
}

func geoItems[T any](list []T, conv func(*T) dto.GeoItem) []dto.GeoItem {
	out := make([]dto.GeoItem, len(list))
	for i := range list {
		out[i] = conv(&list[i])
	}
	return out
}
