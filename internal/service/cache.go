package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/pkg/redis"
)

// Cache 读缓存，由 *redis.Client 实现；未命中返回 redis.ErrCacheMiss
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RateLimiter 固定窗口限流
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// TokenBlacklist Token 黑名单
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// 缓存键
const (
	cacheKeyPrograms  = "landing:programs"
	cacheKeySubjects  = "landing:subjects"
	cacheKeyDivisions = "geo:divisions"
	cacheKeyDistricts = "geo:districts:"
	cacheKeyUpazilas  = "geo:upazilas:"
)

// cached 先读缓存，未命中时调用 load 并回写
// 缓存故障只记录日志，不影响主流程
func cached[T any](ctx context.Context, cache Cache, logger *zap.Logger, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var v T
	if cache != nil {
		err := cache.GetJSON(ctx, key, &v)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			logger.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if cache != nil {
		if err := cache.SetJSON(ctx, key, v, ttl); err != nil {
			logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

// invalidate 删除缓存键，失败只记录日志
func invalidate(ctx context.Context, cache Cache, logger *zap.Logger, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, keys...); err != nil {
		logger.Warn("删除缓存失败", zap.Strings("keys", keys), zap.Error(err))
	}
}
