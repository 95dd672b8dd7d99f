package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajib3777/academia-sub001/config"
	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	"github.com/rajib3777/academia-sub001/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUserDisabled       = errors.New("账号已停用")
	ErrInvalidRefresh     = errors.New("refresh token 无效或已失效")
)

// AuthService 认证业务接口
type AuthService interface {
	// Login 用户名或手机号 + 密码登录
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Refresh 轮换 Token 对，旧 refresh token 进入黑名单
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout 将当前 access token 的 jti 加入黑名单直至其过期
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, p Principal) (*dto.UserResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	// 3. 生成 Token 对并构造响应
	return s.issue(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefresh
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("检查 Token 黑名单失败", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidRefresh
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidRefresh
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, claims)
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	if s.blacklist == nil {
		return nil
	}
	ttl := remaining(claims)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("写入 Token 黑名单失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, p Principal) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", p.UserID), zap.Error(err))
		return nil, err
	}
	academyID, err := s.academyOf(ctx, user)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user, academyID)
	return &resp, nil
}

func (s *authService) issue(ctx context.Context, user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}
	academyID, err := s.academyOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         toUserResponse(user, academyID),
	}, nil
}

// academyOf 机构角色返回其机构 id；机构资料尚未建立时返回 nil
func (s *authService) academyOf(ctx context.Context, user *model.User) (*uint64, error) {
	if user.Role != model.RoleAcademy {
		return nil, nil
	}
	academy, err := s.repo.Academy.GetByUserID(ctx, user.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		s.logger.Error("查询用户所属机构失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}
	return &academy.ID, nil
}

// revoke 尽力将 token 拉黑，失败只记录日志
func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.blacklist == nil || claims.ID == "" {
		return
	}
	if ttl := remaining(claims); ttl > 0 {
		if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("旧 RefreshToken 拉黑失败", zap.String("user_id", claims.UserID), zap.Error(err))
		}
	}
}

func remaining(claims *jwt.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return time.Until(claims.ExpiresAt.Time)
}
