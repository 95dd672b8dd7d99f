package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// ── 账号模块业务错误 ──

var (
	ErrPhoneNotVerified   = errors.New("手机号未通过验证码验证或验证已过期")
	ErrUserSelfDisable    = errors.New("不能停用自己的账号")
	ErrRoleNotAssignable  = errors.New("该角色不能通过此接口创建")
	ErrOldPasswordInvalid = errors.New("原密码错误")
)

// assignableRoles 管理端可直接创建的角色；机构与教师账号随各自模块创建
var assignableRoles = map[string]bool{
	model.RoleAdmin:   true,
	model.RoleStaff:   true,
	model.RoleStudent: true,
}

// UserService 账号业务接口
//
// 设计说明：
//   - Register 以验证码验证过的手机号为用户名，在单个事务内创建账号与学员档案
//   - 管理端创建与重置密码生成临时密码，仅在响应中返回一次
//   - 学员账号的姓名、邮箱变更同步到学员档案
type UserService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	List(ctx context.Context, p Principal, req *dto.UserListRequest) ([]dto.UserResponse, pagination.Meta, error)
	Create(ctx context.Context, p Principal, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error)
	// Update 管理员可改任意账号；本人仅可改姓名与邮箱
	Update(ctx context.Context, p Principal, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, p Principal, id string) (*dto.ResetPasswordResponse, error)
	ChangePassword(ctx context.Context, p Principal, req *dto.ChangePasswordRequest) error
	// EnsureAdmin 用户名不存在时创建管理员账号，返回是否新建
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

type userService struct {
	repo   *repository.Repository
	otp    OTPService
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, otp OTPService, logger *zap.Logger) UserService {
	return &userService{repo: repo, otp: otp, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Register — 学员自助注册
// ═══════════════════════════════════════════════════════════

func (s *userService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	verified, err := s.otp.IsPhoneVerified(ctx, req.Phone)
	if err != nil {
		s.logger.Error("查询手机号验证状态失败", zap.String("phone", req.Phone), zap.Error(err))
		return nil, err
	}
	if !verified {
		return nil, fieldErr("phone", ErrPhoneNotVerified)
	}
	if err := s.checkUnique(ctx, req.Phone, req.Email, ""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}
	user := &model.User{
		Username:     req.Phone,
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
		IsActive:     true,
	}
	if err := s.createWithProfile(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("学员已注册", zap.String("user_id", user.UserID))
	resp := toUserResponse(user, nil)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// 管理端
// ═══════════════════════════════════════════════════════════

func (s *userService) List(ctx context.Context, p Principal, req *dto.UserListRequest) ([]dto.UserResponse, pagination.Meta, error) {
	if p.Role != model.RoleAdmin {
		return nil, pagination.Meta{}, ErrPermissionDenied
	}
	page := req.ToRequest(pagination.ManageLimits)
	filter := repository.UserFilter{Role: req.Role, IsActive: req.IsActive, Search: req.Search}
	list, total, err := s.repo.User.List(ctx, filter, page)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	out := make([]dto.UserResponse, len(list))
	for i := range list {
		out[i] = toUserResponse(&list[i], nil)
	}
	return out, pagination.BuildMeta(total, page), nil
}

func (s *userService) Create(ctx context.Context, p Principal, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	if p.Role != model.RoleAdmin {
		return nil, ErrPermissionDenied
	}
	if !assignableRoles[req.Role] {
		return nil, fieldErr("role", ErrRoleNotAssignable)
	}
	if err := s.checkUnique(ctx, req.Phone, req.Email, ""); err != nil {
		return nil, err
	}

	password, hash, err := s.tempPassword()
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     req.Phone,
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.createWithProfile(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("账号已创建",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.String("created_by", p.UserID),
	)
	return &dto.CreateUserResponse{User: toUserResponse(user, nil), TempPassword: password}, nil
}

func (s *userService) Update(ctx context.Context, p Principal, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	self := p.UserID == id
	if p.Role != model.RoleAdmin && !self {
		return nil, ErrPermissionDenied
	}
	if req.IsActive != nil {
		if p.Role != model.RoleAdmin {
			return nil, ErrPermissionDenied
		}
		if self && !*req.IsActive {
			return nil, ErrUserSelfDisable
		}
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}

	var fields []string
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
		fields = append(fields, "first_name")
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
		fields = append(fields, "last_name")
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !strings.EqualFold(email, user.Email) {
			exists, err := s.repo.User.ExistsByEmail(ctx, email, id)
			if err != nil {
				s.logger.Error("检查邮箱失败", zap.Error(err))
				return nil, err
			}
			if exists {
				return nil, fieldErr("email", ErrEmailExists)
			}
		}
		user.Email = email
		fields = append(fields, "email")
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
		fields = append(fields, "is_active")
	}
	if len(fields) == 0 {
		resp := toUserResponse(user, nil)
		return &resp, nil
	}

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Update(ctx, user, fields...); err != nil {
			return err
		}
		if user.Role != model.RoleStudent {
			return nil
		}
		student, err := tx.Student.GetByUserID(ctx, user.UserID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		student.Name = user.FullName()
		student.Email = user.Email
		return tx.Student.Update(ctx, student, "name", "email")
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err, constraintUserEmail) {
			return nil, fieldErr("email", ErrEmailExists)
		}
		s.logger.Error("更新账号失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user, nil)
	return &resp, nil
}

func (s *userService) ResetPassword(ctx context.Context, p Principal, id string) (*dto.ResetPasswordResponse, error) {
	if p.Role != model.RoleAdmin {
		return nil, ErrPermissionDenied
	}
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}

	password, hash, err := s.tempPassword()
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	if err := s.repo.User.Update(ctx, user, "password_hash"); err != nil {
		s.logger.Error("重置密码失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("密码已重置", zap.String("user_id", id), zap.String("operator", p.UserID))
	return &dto.ResetPasswordResponse{TempPassword: password}, nil
}

func (s *userService) ChangePassword(ctx context.Context, p Principal, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, p.UserID)
	if err != nil {
		return mapNotFound(err, ErrUserNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return fieldErr("old_password", ErrOldPasswordInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.repo.User.Update(ctx, user, "password_hash"); err != nil {
		s.logger.Error("修改密码失败", zap.String("user_id", p.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	exists, err := s.repo.User.ExistsByUsername(ctx, username, "")
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := &model.User{
		Username:     username,
		FirstName:    "Admin",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, admin); err != nil {
		// 并发启动时由另一实例抢先创建
		if pkgerrors.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("已创建初始管理员", zap.String("username", username))
	return true, nil
}

// ── 内部方法 ──

// createWithProfile 创建账号；学员角色在同一事务内建立学员档案
func (s *userService) createWithProfile(ctx context.Context, user *model.User) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		if user.Role != model.RoleStudent {
			return nil
		}
		userID := user.UserID
		return tx.Student.Create(ctx, &model.Student{
			UserID: &userID,
			Name:   user.FullName(),
			Phone:  user.Phone,
			Email:  user.Email,
		})
	})
	if err == nil {
		return nil
	}
	switch {
	case pkgerrors.IsUniqueViolation(err, constraintUserEmail):
		return fieldErr("email", ErrEmailExists)
	case pkgerrors.IsUniqueViolation(err):
		return fieldErr("phone", ErrUsernameExists)
	}
	s.logger.Error("创建账号失败", zap.String("username", user.Username), zap.Error(err))
	return err
}

func (s *userService) checkUnique(ctx context.Context, username, email, excludeID string) error {
	exists, err := s.repo.User.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		s.logger.Error("检查用户名失败", zap.Error(err))
		return err
	}
	if exists {
		return fieldErr("phone", ErrUsernameExists)
	}
	exists, err = s.repo.User.ExistsByEmail(ctx, strings.TrimSpace(email), excludeID)
	if err != nil {
		s.logger.Error("检查邮箱失败", zap.Error(err))
		return err
	}
	if exists {
		return fieldErr("email", ErrEmailExists)
	}
	return nil
}

// tempPassword 返回明文临时密码及其哈希
func (s *userService) tempPassword() (string, string, error) {
	password, err := generatePassword()
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return "", "", err
	}
	return password, string(hash), nil
}
