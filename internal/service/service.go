package service

import (
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/config"
	"github.com/rajib3777/academia-sub001/internal/repository"
	"github.com/rajib3777/academia-sub001/pkg/jwt"
	"github.com/rajib3777/academia-sub001/pkg/redis"
	"github.com/rajib3777/academia-sub001/pkg/sms"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	OTP        OTPService
	SMS        SMSService
	Geo        GeoService
	Academy    AcademyService
	Course     CourseService
	Batch      BatchService
	Enrollment EnrollmentService
	Student    StudentService
	Teacher    TeacherService
	Review     ReviewService
	Landing    LandingService
	Export     ExportService
}

// NewService 创建 Service 聚合
// redisClient 为 nil 时关闭缓存、限流与 Token 黑名单
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	redisClient *redis.Client,
	smsSender sms.Sender,
	logger *zap.Logger,
) *Service {
	var (
		cache     Cache
		limiter   RateLimiter
		blacklist TokenBlacklist
	)
	if redisClient != nil {
		cache, limiter, blacklist = redisClient, redisClient, redisClient
	}

	smsSvc := NewSMSService(repo, smsSender, cfg.SMS.BatchSize, logger)
	otpSvc := NewOTPService(cfg.OTP, repo, smsSvc, limiter, logger)
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:       NewUserService(repo, otpSvc, logger),
		OTP:        otpSvc,
		SMS:        smsSvc,
		Geo:        NewGeoService(repo, cache, cfg.Cache.TTL, logger),
		Academy:    NewAcademyService(repo, smsSvc, cache, logger),
		Course:     NewCourseService(repo, logger),
		Batch:      NewBatchService(repo, logger),
		Enrollment: NewEnrollmentService(repo, logger),
		Student:    NewStudentService(repo, logger),
		Teacher:    NewTeacherService(repo, cache, logger),
		Review:     NewReviewService(repo, logger),
		Landing:    NewLandingService(repo, cache, cfg.Cache.TTL, logger),
		Export:     NewExportService(repo, logger),
	}
}
