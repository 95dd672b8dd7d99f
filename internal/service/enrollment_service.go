package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// ── 报名模块业务错误 ──

var (
	ErrEnrollmentNotFound   = errors.New("报名记录不存在")
	ErrEnrollmentExists     = errors.New("该学员已报名此班次")
	ErrAttendanceOutOfRange = errors.New("出勤率须在 0 到 100 之间")
)

const constraintEnrollment = "uq_enrollment_batch_student"

// EnrollmentService 报名业务接口
//
// 设计说明：
//   - 写操作前校验班次归属
//   - Create 在事务内对班次加行锁后再判重，避免并发重复报名
type EnrollmentService interface {
	Create(ctx context.Context, p Principal, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error)
	Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateEnrollmentRequest) (*dto.EnrollmentResponse, error)
	Delete(ctx context.Context, p Principal, id uint64) error
	Get(ctx context.Context, p Principal, id uint64) (*dto.EnrollmentResponse, error)
	List(ctx context.Context, p Principal, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, pagination.Meta, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, now: time.Now, logger: logger}
}

func (s *enrollmentService) Create(ctx context.Context, p Principal, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	if _, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceBatch, ID: req.BatchID}); err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			return nil, fieldErr("batch_id", ErrReferenceNotFound)
		}
		return nil, err
	}
	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		return nil, mapNotFound(err, fieldErr("student_id", ErrReferenceNotFound))
	}

	attendance := 0.0
	if req.AttendancePercentage != nil {
		attendance = *req.AttendancePercentage
	}
	if err := checkAttendance(attendance); err != nil {
		return nil, err
	}

	enrolledOn := datatypes.Date(s.now())
	if req.EnrollmentDate != nil {
		d, err := parseDate("enrollment_date", *req.EnrollmentDate)
		if err != nil {
			return nil, err
		}
		enrolledOn = d
	}

	enrollment := &model.BatchEnrollment{
		BatchID:              req.BatchID,
		StudentID:            req.StudentID,
		EnrollmentDate:       enrolledOn,
		IsActive:             true,
		AttendancePercentage: attendance,
		Remarks:              req.Remarks,
	}
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Batch.LockByID(ctx, req.BatchID); err != nil {
			return err
		}
		exists, err := tx.Enrollment.Exists(ctx, req.BatchID, req.StudentID)
		if err != nil {
			return err
		}
		if exists {
			return ErrEnrollmentExists
		}
		return tx.Enrollment.Create(ctx, enrollment)
	})
	if err != nil {
		if errors.Is(err, ErrEnrollmentExists) || pkgerrors.IsUniqueViolation(err, constraintEnrollment) {
			return nil, fieldErr("student_id", ErrEnrollmentExists)
		}
		if isNotFound(err) {
			return nil, fieldErr("batch_id", ErrReferenceNotFound)
		}
		s.logger.Error("创建报名失败", zap.Error(err))
		return nil, err
	}
	return s.get(ctx, enrollment.ID)
}

func (s *enrollmentService) Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrEnrollmentNotFound)
	}
	if _, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceBatch, ID: enrollment.BatchID}); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.CompletionDate != nil {
		d, err := parseDatePtr("completion_date", req.CompletionDate)
		if err != nil {
			return nil, err
		}
		if d == nil {
			updates["completion_date"] = nil
		} else {
			updates["completion_date"] = *d
		}
	}
	if req.AttendancePercentage != nil {
		if err := checkAttendance(*req.AttendancePercentage); err != nil {
			return nil, err
		}
		updates["attendance_percentage"] = *req.AttendancePercentage
	}
	if req.Remarks != nil {
		updates["remarks"] = *req.Remarks
	}

	if err := s.repo.Enrollment.Update(ctx, id, updates); err != nil {
		s.logger.Error("更新报名失败", zap.Uint64("enrollment_id", id), zap.Error(err))
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *enrollmentService) Delete(ctx context.Context, p Principal, id uint64) error {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, ErrEnrollmentNotFound)
	}
	if _, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceBatch, ID: enrollment.BatchID}); err != nil {
		return err
	}
	if err := s.repo.Enrollment.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrEnrollmentNotFound
		}
		s.logger.Error("删除报名失败", zap.Uint64("enrollment_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *enrollmentService) Get(ctx context.Context, p Principal, id uint64) (*dto.EnrollmentResponse, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, err
	}
	enrollment, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询报名失败", zap.Uint64("enrollment_id", id), zap.Error(err))
		return nil, err
	}
	if !enrollmentVisible(enrollment, scope) {
		return nil, ErrEnrollmentNotFound
	}
	resp := toEnrollmentResponse(enrollment)
	return &resp, nil
}

func (s *enrollmentService) get(ctx context.Context, id uint64) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询报名失败", zap.Uint64("enrollment_id", id), zap.Error(err))
		return nil, err
	}
	resp := toEnrollmentResponse(enrollment)
	return &resp, nil
}

func (s *enrollmentService) List(ctx context.Context, p Principal, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, pagination.Meta, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	page := req.ToRequest(pagination.ManageLimits)
	filter := repository.EnrollmentFilter{
		BatchID:   req.BatchID,
		StudentID: req.StudentID,
		IsActive:  req.IsActive,
	}
	list, total, err := s.repo.Enrollment.List(ctx, filter, scope, page)
	if err != nil {
		s.logger.Error("查询报名列表失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	out := make([]dto.EnrollmentResponse, len(list))
	for i := range list {
		out[i] = toEnrollmentResponse(&list[i])
	}
	return out, pagination.BuildMeta(total, page), nil
}

// ── 辅助函数 ──

func checkAttendance(v float64) error {
	if v < 0 || v > 100 {
		return fieldErr("attendance_percentage", ErrAttendanceOutOfRange)
	}
	return nil
}

func enrollmentVisible(e *model.BatchEnrollment, scope repository.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.AcademyID != 0:
		return e.Batch != nil && e.Batch.Course != nil && e.Batch.Course.AcademyID == scope.AcademyID
	case scope.StudentID != 0:
		return e.StudentID == scope.StudentID
	default:
		return false
	}
}

func toEnrollmentResponse(e *model.BatchEnrollment) dto.EnrollmentResponse {
	resp := dto.EnrollmentResponse{
		ID:                   e.ID,
		BatchID:              e.BatchID,
		StudentID:            e.StudentID,
		EnrollmentDate:       formatDate(e.EnrollmentDate),
		IsActive:             e.IsActive,
		CompletionDate:       formatDatePtr(e.CompletionDate),
		AttendancePercentage: e.AttendancePercentage,
		Remarks:              e.Remarks,
	}
	if e.Batch != nil {
		resp.BatchName = e.Batch.Name
		if e.Batch.Course != nil {
			resp.CourseName = e.Batch.Course.Name
		}
	}
	if e.Student != nil {
		resp.StudentName = e.Student.Name
	}
	return resp
}
