package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// ── 学员模块业务错误 ──

var (
	ErrStudentNotFound  = errors.New("学员不存在")
	ErrStudentNoAccount = errors.New("学员未绑定账号")
)

// StudentService 学员档案业务接口
//
// 设计说明：
//   - 机构只能看到在本机构有报名记录的学员，学员只能看到本人
//   - 档案邮箱变更同步到关联账号
//   - 启停作用于关联账号，无账号的档案不能启停
type StudentService interface {
	List(ctx context.Context, p Principal, req *dto.StudentListRequest) ([]dto.StudentResponse, pagination.Meta, error)
	Get(ctx context.Context, p Principal, id uint64) (*dto.StudentResponse, error)
	// Update 管理员与员工可改任意学员；学员仅可改本人
	Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	SetActive(ctx context.Context, p Principal, id uint64, active bool) (*dto.StudentResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) List(ctx context.Context, p Principal, req *dto.StudentListRequest) ([]dto.StudentResponse, pagination.Meta, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	page := req.ToRequest(pagination.ManageLimits)
	filter := repository.StudentFilter{
		Search:   req.Search,
		BatchID:  req.BatchID,
		IsActive: req.IsActive,
	}
	list, total, err := s.repo.Student.List(ctx, filter, scope, page)
	if err != nil {
		s.logger.Error("查询学员列表失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	out := make([]dto.StudentResponse, len(list))
	for i := range list {
		out[i] = toStudentResponse(&list[i])
	}
	return out, pagination.BuildMeta(total, page), nil
}

func (s *studentService) Get(ctx context.Context, p Principal, id uint64) (*dto.StudentResponse, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, err
	}
	return s.get(ctx, id, scope)
}

func (s *studentService) Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	if err := s.authorizeSelf(ctx, p, id); err != nil {
		return nil, err
	}
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}

	var (
		fields    []string
		syncEmail bool
	)
	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
		fields = append(fields, "name")
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
		fields = append(fields, "phone")
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if student.UserID != nil && !strings.EqualFold(email, student.Email) {
			exists, err := s.repo.User.ExistsByEmail(ctx, email, *student.UserID)
			if err != nil {
				s.logger.Error("检查邮箱失败", zap.Error(err))
				return nil, err
			}
			if exists {
				return nil, fieldErr("email", ErrEmailExists)
			}
			syncEmail = true
		}
		student.Email = email
		fields = append(fields, "email")
	}
	if len(fields) == 0 {
		return s.get(ctx, id, repository.ScopeAll)
	}

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Student.Update(ctx, student, fields...); err != nil {
			return err
		}
		if !syncEmail {
			return nil
		}
		user, err := tx.User.GetByID(ctx, *student.UserID)
		if err != nil {
			return err
		}
		user.Email = student.Email
		return tx.User.Update(ctx, user, "email")
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err, constraintUserEmail) {
			return nil, fieldErr("email", ErrEmailExists)
		}
		s.logger.Error("更新学员失败", zap.Uint64("student_id", id), zap.Error(err))
		return nil, err
	}
	return s.get(ctx, id, repository.ScopeAll)
}

func (s *studentService) SetActive(ctx context.Context, p Principal, id uint64, active bool) (*dto.StudentResponse, error) {
	if !p.IsStaff() {
		return nil, ErrPermissionDenied
	}
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}
	if student.UserID == nil {
		return nil, ErrStudentNoAccount
	}
	user, err := s.repo.User.GetByID(ctx, *student.UserID)
	if err != nil {
		return nil, mapNotFound(err, ErrStudentNoAccount)
	}

	if user.IsActive != active {
		user.IsActive = active
		if err := s.repo.User.Update(ctx, user, "is_active"); err != nil {
			s.logger.Error("更新学员账号状态失败", zap.Uint64("student_id", id), zap.Error(err))
			return nil, err
		}
		s.logger.Info("学员账号状态已变更",
			zap.Uint64("student_id", id),
			zap.Bool("active", active),
			zap.String("operator", p.UserID),
		)
	}
	return s.get(ctx, id, repository.ScopeAll)
}

// ── 内部方法 ──

// authorizeSelf 员工放行；学员须为档案本人
func (s *studentService) authorizeSelf(ctx context.Context, p Principal, id uint64) error {
	if p.IsStaff() {
		return nil
	}
	if p.Role != model.RoleStudent {
		return ErrPermissionDenied
	}
	own, err := s.repo.Student.GetByUserID(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return ErrPermissionDenied
		}
		s.logger.Error("查询学员档案失败", zap.String("user_id", p.UserID), zap.Error(err))
		return err
	}
	if own.ID != id {
		return ErrPermissionDenied
	}
	return nil
}

func (s *studentService) get(ctx context.Context, id uint64, scope repository.Scope) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetVisible(ctx, id, scope)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学员失败", zap.Uint64("student_id", id), zap.Error(err))
		return nil, err
	}
	resp := toStudentResponse(student)
	return &resp, nil
}

func toStudentResponse(st *model.Student) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:         st.ID,
		UserID:     st.UserID,
		Name:       st.Name,
		Phone:      st.Phone,
		Email:      st.Email,
		HasAccount: st.UserID != nil,
		IsActive:   true,
		CreatedAt:  formatTime(st.CreatedAt),
	}
	if st.AccountActive != nil {
		resp.IsActive = *st.AccountActive
	}
	return resp
}
