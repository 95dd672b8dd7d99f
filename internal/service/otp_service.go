package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/config"
	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
)

// ── 验证码业务错误 ──

var (
	ErrOTPPhoneNotFound   = errors.New("该手机号未发送过验证码")
	ErrOTPAlreadyVerified = errors.New("验证码已使用")
	ErrOTPExpired         = errors.New("验证码已过期")
	ErrOTPInvalid         = errors.New("验证码错误")
	ErrOTPDeliveryFailed  = errors.New("验证码短信发送失败")
	ErrOTPRateLimited     = errors.New("验证码发送过于频繁，请稍后再试")
)

// ipLimitFactor 单个 IP 的发送上限为单号码上限的倍数
const ipLimitFactor = 3

// OTPService 验证码业务接口
//
// 设计说明：
//   - 每个手机号只保留最新一条验证码，重发即覆盖，旧码随之失效
//   - 发送时先落库短信记录再同步投递
type OTPService interface {
	Send(ctx context.Context, req *dto.SendOTPRequest, clientIP string) (*dto.OTPSentResponse, error)
	Verify(ctx context.Context, req *dto.VerifyOTPRequest) error
	IsPhoneVerified(ctx context.Context, phone string) (bool, error)
	// Purge 清理过期超过 maxAge 且未验证的记录
	Purge(ctx context.Context) (int64, error)
}

type otpService struct {
	cfg      config.OTPConfig
	repo     *repository.Repository
	sms      SMSService
	limiter  RateLimiter
	generate func() (string, error)
	now      func() time.Time
	logger   *zap.Logger
}

// NewOTPService 创建 OTPService 实例
func NewOTPService(cfg config.OTPConfig, repo *repository.Repository, sms SMSService, limiter RateLimiter, logger *zap.Logger) OTPService {
	return &otpService{
		cfg:      cfg,
		repo:     repo,
		sms:      sms,
		limiter:  limiter,
		generate: generateOTP,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *otpService) Send(ctx context.Context, req *dto.SendOTPRequest, clientIP string) (*dto.OTPSentResponse, error) {
	phone := req.PhoneNumber
	if err := s.checkLimit(ctx, "otp:phone:"+phone, s.cfg.RateLimit); err != nil {
		return nil, err
	}
	if clientIP != "" {
		if err := s.checkLimit(ctx, "otp:ip:"+clientIP, s.cfg.RateLimit*ipLimitFactor); err != nil {
			return nil, err
		}
	}

	code, err := s.generate()
	if err != nil {
		s.logger.Error("生成验证码失败", zap.Error(err))
		return nil, err
	}
	otp := &model.OTPVerification{
		PhoneNumber: phone,
		OTP:         code,
		ExpiresAt:   s.now().Add(s.cfg.TTL),
	}
	// 验证码行在发送完成前保持锁定，同号并发请求与校验按序执行
	var sent bool
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.OTP.Upsert(ctx, otp); err != nil {
			s.logger.Error("保存验证码失败", zap.String("phone", phone), zap.Error(err))
			return err
		}
		_, delivered, err := s.sms.Send(ctx, tx, QueueInput{
			Phone:   phone,
			Message: otpMessage(code, s.cfg.TTL),
			SMSType: model.SMSTypeOTP,
		})
		sent = delivered
		return err
	})
	if err != nil {
		return nil, err
	}
	if !sent {
		return nil, ErrOTPDeliveryFailed
	}

	return &dto.OTPSentResponse{
		PhoneNumber: phone,
		ExpiresAt:   formatTime(otp.ExpiresAt),
	}, nil
}

func (s *otpService) Verify(ctx context.Context, req *dto.VerifyOTPRequest) error {
	return s.repo.InTx(ctx, func(tx *repository.Repository) error {
		otp, err := tx.OTP.LockByPhone(ctx, req.PhoneNumber)
		if err != nil {
			if isNotFound(err) {
				return ErrOTPPhoneNotFound
			}
			s.logger.Error("查询验证码失败", zap.String("phone", req.PhoneNumber), zap.Error(err))
			return err
		}
		switch {
		case otp.IsVerified:
			return ErrOTPAlreadyVerified
		case otp.IsExpired(s.now()):
			return ErrOTPExpired
		case otp.OTP != req.OTP:
			return ErrOTPInvalid
		}
		if err := tx.OTP.MarkVerified(ctx, otp.ID); err != nil {
			s.logger.Error("标记验证码失败", zap.Uint64("otp_id", otp.ID), zap.Error(err))
			return err
		}
		return nil
	})
}

// IsPhoneVerified 已验证且未过期才视为通过
func (s *otpService) IsPhoneVerified(ctx context.Context, phone string) (bool, error) {
	otp, err := s.repo.OTP.GetByPhone(ctx, phone)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return otp.IsVerified && !otp.IsExpired(s.now()), nil
}

func (s *otpService) Purge(ctx context.Context) (int64, error) {
	n, err := s.repo.OTP.PurgeExpired(ctx, s.now().Add(-s.cfg.PurgeMaxAge))
	if err != nil {
		s.logger.Error("清理过期验证码失败", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// checkLimit 限流器故障时放行
func (s *otpService) checkLimit(ctx context.Context, key string, limit int) error {
	if s.limiter == nil || limit <= 0 {
		return nil
	}
	ok, err := s.limiter.CheckRateLimit(ctx, key, limit, s.cfg.RateWindow)
	if err != nil {
		s.logger.Warn("验证码限流检查失败", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !ok {
		return ErrOTPRateLimited
	}
	return nil
}

func otpMessage(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your Academia verification code is %s. It expires in %d minutes.", code, int(ttl.Minutes()))
}
