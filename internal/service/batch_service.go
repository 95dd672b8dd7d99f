package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// ── 班次模块业务错误 ──

var (
	ErrBatchNotFound       = errors.New("班次不存在")
	ErrBatchNameExists     = errors.New("该课程下已存在同名班次")
	ErrInvalidDateRange    = errors.New("结束日期不能早于开始日期")
	ErrTeacherNotInAcademy = errors.New("教师不属于该机构")
)

const (
	constraintBatchName      = "uq_batch_name_per_course"
	constraintBatchDateRange = "chk_batch_date_range"
)

// BatchService 班次业务接口
type BatchService interface {
	Create(ctx context.Context, p Principal, req *dto.CreateBatchRequest) (*dto.BatchResponse, error)
	Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateBatchRequest) (*dto.BatchResponse, error)
	Delete(ctx context.Context, p Principal, id uint64) (DeleteResult, error)
	Get(ctx context.Context, p Principal, id uint64) (*dto.BatchResponse, error)
	List(ctx context.Context, p Principal, req *dto.BatchListRequest) ([]dto.BatchResponse, pagination.Meta, error)
}

type batchService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewBatchService 创建 BatchService 实例
func NewBatchService(repo *repository.Repository, logger *zap.Logger) BatchService {
	return &batchService{repo: repo, now: time.Now, logger: logger}
}

func (s *batchService) Create(ctx context.Context, p Principal, req *dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	academyID, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceCourse, ID: req.CourseID})
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, fieldErr("course_id", ErrReferenceNotFound)
		}
		return nil, err
	}

	start, end, err := parseBatchDates("", req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.Batch.ExistsByName(ctx, req.CourseID, name, 0)
	if err != nil {
		s.logger.Error("检查班次名称失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, fieldErr("name", ErrBatchNameExists)
	}
	if err := s.checkTeachers(ctx, academyID, req.TeacherIDs); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	batch := &model.Batch{
		CourseID:    req.CourseID,
		Name:        name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		IsActive:    isActive,
	}
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Batch.Create(ctx, batch); err != nil {
			return err
		}
		if len(req.TeacherIDs) == 0 {
			return nil
		}
		return tx.Batch.ReplaceTeachers(ctx, batch.ID, req.TeacherIDs)
	})
	if err != nil {
		if mapped := mapCourseConstraint(err); mapped != nil {
			return nil, batchField(mapped)
		}
		s.logger.Error("创建班次失败", zap.Error(err))
		return nil, err
	}
	return s.get(ctx, batch.ID)
}

func (s *batchService) Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateBatchRequest) (*dto.BatchResponse, error) {
	academyID, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceBatch, ID: id})
	if err != nil {
		return nil, err
	}
	batch, err := s.repo.Batch.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrBatchNotFound)
	}

	// 日期按合并后的取值校验区间
	start, end := batch.StartDate, batch.EndDate
	updates := make(map[string]interface{})
	if req.StartDate != nil {
		if start, err = parseDate("start_date", *req.StartDate); err != nil {
			return nil, err
		}
		updates["start_date"] = start
	}
	if req.EndDate != nil {
		if end, err = parseDatePtr("end_date", req.EndDate); err != nil {
			return nil, err
		}
		if end == nil {
			updates["end_date"] = nil
		} else {
			updates["end_date"] = *end
		}
	}
	if end != nil && time.Time(*end).Before(time.Time(start)) {
		return nil, fieldErr("end_date", ErrInvalidDateRange)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != batch.Name {
			exists, err := s.repo.Batch.ExistsByName(ctx, batch.CourseID, name, id)
			if err != nil {
				s.logger.Error("检查班次名称失败", zap.Error(err))
				return nil, err
			}
			if exists {
				return nil, fieldErr("name", ErrBatchNameExists)
			}
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.TeacherIDs != nil {
		if err := s.checkTeachers(ctx, academyID, req.TeacherIDs); err != nil {
			return nil, err
		}
	}

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Batch.Update(ctx, id, updates); err != nil {
			return err
		}
		if req.TeacherIDs == nil {
			return nil
		}
		return tx.Batch.ReplaceTeachers(ctx, id, req.TeacherIDs)
	})
	if err != nil {
		if mapped := mapCourseConstraint(err); mapped != nil {
			return nil, batchField(mapped)
		}
		s.logger.Error("更新班次失败", zap.Uint64("batch_id", id), zap.Error(err))
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *batchService) Delete(ctx context.Context, p Principal, id uint64) (DeleteResult, error) {
	if _, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceBatch, ID: id}); err != nil {
		switch {
		case errors.Is(err, ErrBatchNotFound):
			return DeleteResult{Outcome: DeleteOutcomeNotFound}, nil
		case errors.Is(err, ErrPermissionDenied):
			return DeleteResult{}, err
		default:
			return classifyDelete(s.logger, DeleteResult{}, err, zap.Uint64("batch_id", id)), nil
		}
	}

	var res DeleteResult
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		var err error
		if res.Enrollments, err = tx.Enrollment.DeleteByBatchIDs(ctx, []uint64{id}); err != nil {
			return err
		}
		if err := tx.Batch.Delete(ctx, id); err != nil {
			return err
		}
		res.Batches = 1
		return nil
	})
	return classifyDelete(s.logger, res, err, zap.Uint64("batch_id", id)), nil
}

func (s *batchService) Get(ctx context.Context, p Principal, id uint64) (*dto.BatchResponse, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, err
	}
	if !scope.All {
		visible, err := s.repo.Batch.IsVisible(ctx, id, scope)
		if err != nil {
			s.logger.Error("检查班次可见性失败", zap.Error(err))
			return nil, err
		}
		if !visible {
			return nil, ErrBatchNotFound
		}
	}
	return s.get(ctx, id)
}

func (s *batchService) get(ctx context.Context, id uint64) (*dto.BatchResponse, error) {
	batch, err := s.repo.Batch.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBatchNotFound
		}
		s.logger.Error("查询班次失败", zap.Uint64("batch_id", id), zap.Error(err))
		return nil, err
	}
	resp := toBatchResponse(batch, s.now())
	return &resp, nil
}

func (s *batchService) List(ctx context.Context, p Principal, req *dto.BatchListRequest) ([]dto.BatchResponse, pagination.Meta, error) {
	filter := repository.BatchFilter{
		Search:      req.Search,
		AcademyID:   req.AcademyID,
		CourseID:    req.CourseID,
		CourseType:  req.CourseType,
		Name:        req.Name,
		IsActive:    req.IsActive,
		HasStudents: req.HasStudents,
		Ordering:    req.Ordering,
	}
	var err error
	if filter.StartFrom, err = parseDateFilter("start_date_from", req.StartDateFrom); err != nil {
		return nil, pagination.Meta{}, err
	}
	if filter.StartTo, err = parseDateFilter("start_date_to", req.StartDateTo); err != nil {
		return nil, pagination.Meta{}, err
	}
	if filter.EndFrom, err = parseDateFilter("end_date_from", req.EndDateFrom); err != nil {
		return nil, pagination.Meta{}, err
	}
	if filter.EndTo, err = parseDateFilter("end_date_to", req.EndDateTo); err != nil {
		return nil, pagination.Meta{}, err
	}

	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	page := req.ToRequest(pagination.ManageLimits)
	list, total, err := s.repo.Batch.List(ctx, filter, scope, page)
	if err != nil {
		s.logger.Error("查询班次列表失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	now := s.now()
	out := make([]dto.BatchResponse, len(list))
	for i := range list {
		out[i] = toBatchResponse(&list[i], now)
	}
	return out, pagination.BuildMeta(total, page), nil
}

// checkTeachers 教师须全部属于同一机构
func (s *batchService) checkTeachers(ctx context.Context, academyID uint64, ids []uint64) error {
	unique := dedupIDs(ids)
	if len(unique) == 0 {
		return nil
	}
	n, err := s.repo.Teacher.CountInAcademy(ctx, academyID, unique)
	if err != nil {
		s.logger.Error("校验班次教师失败", zap.Error(err))
		return err
	}
	if n != int64(len(unique)) {
		return fieldErr("teacher_ids", ErrTeacherNotInAcademy)
	}
	return nil
}

// ── 辅助函数 ──

// parseBatchDates 解析开始/结束日期并校验区间；prefix 用于嵌套字段名
func parseBatchDates(prefix, start string, end *string) (datatypes.Date, *datatypes.Date, error) {
	s, err := parseDate(prefix+"start_date", start)
	if err != nil {
		return datatypes.Date{}, nil, err
	}
	e, err := parseDatePtr(prefix+"end_date", end)
	if err != nil {
		return datatypes.Date{}, nil, err
	}
	if e != nil && time.Time(*e).Before(time.Time(s)) {
		return datatypes.Date{}, nil, fieldErr(prefix+"end_date", ErrInvalidDateRange)
	}
	return s, e, nil
}

// batchField 单个班次接口中，约束冲突字段不带 batches 前缀
func batchField(err error) error {
	var fe *FieldError
	if errors.As(err, &fe) && fe.Field == "batches" {
		return fieldErr("name", fe.Err)
	}
	return err
}

func dedupIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func toBatchResponse(b *model.Batch, now time.Time) dto.BatchResponse {
	resp := dto.BatchResponse{
		ID:           b.ID,
		CourseID:     b.CourseID,
		Name:         b.Name,
		Description:  b.Description,
		StartDate:    formatDate(b.StartDate),
		EndDate:      formatDatePtr(b.EndDate),
		IsActive:     b.IsActive,
		Status:       b.Status(now),
		StudentCount: b.StudentCount,
		Teachers:     make([]dto.TeacherBrief, 0, len(b.Teachers)),
		CreatedAt:    formatTime(b.CreatedAt),
	}
	if b.Course != nil {
		resp.CourseName = b.Course.Name
		if b.Course.Academy != nil {
			resp.AcademyName = b.Course.Academy.Name
		}
	}
	for _, t := range b.Teachers {
		resp.Teachers = append(resp.Teachers, dto.TeacherBrief{ID: t.ID, FullName: t.FullName})
	}
	return resp
}
