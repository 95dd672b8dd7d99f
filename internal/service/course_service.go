package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound   = errors.New("课程不存在")
	ErrCourseNameExists = errors.New("该机构下已存在同名课程")
)

const constraintCourseName = "uq_course_name_per_academy"

// CourseService 课程业务接口
//
// 设计说明：
//   - 所属机构由主体决定：机构账号取自身，管理员/员工须显式指定 academy_id
//   - Update 携带 batches 时按声明式同步：未出现的既有班次连同报名一起删除，
//     无 id 的新建，有 id 的原地更新；不属于该课程的 id 返回 ErrBatchNotFound
type CourseService interface {
	Create(ctx context.Context, p Principal, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, p Principal, id uint64) (DeleteResult, error)
	Get(ctx context.Context, p Principal, id uint64) (*dto.CourseResponse, error)
	List(ctx context.Context, p Principal, req *dto.CourseListRequest) ([]dto.CourseResponse, pagination.Meta, error)
	Dropdown(ctx context.Context, p Principal, req *dto.CourseDropdownRequest) ([]dto.DropdownItem, error)
	CourseTypes() []dto.ChoiceItem
}

type courseService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, now: time.Now, logger: logger}
}

// courseBatch 已校验的内嵌班次输入
type courseBatch struct {
	in    dto.CourseBatchInput
	batch model.Batch
}

func (s *courseService) Create(ctx context.Context, p Principal, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	academyID, err := targetAcademy(ctx, s.repo, p, req.AcademyID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.Course.ExistsByName(ctx, academyID, name, 0)
	if err != nil {
		s.logger.Error("检查课程名称失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, fieldErr("name", ErrCourseNameExists)
	}

	batches, err := buildCourseBatches(req.Batches)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		AcademyID:   academyID,
		Name:        name,
		Description: req.Description,
		Fee:         req.Fee,
		CourseType:  req.CourseType,
	}
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Course.Create(ctx, course); err != nil {
			return err
		}
		for i := range batches {
			b := batches[i].batch
			b.CourseID = course.ID
			if err := tx.Batch.Create(ctx, &b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if mapped := mapCourseConstraint(err); mapped != nil {
			return nil, mapped
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	return s.get(ctx, course.ID)
}

func (s *courseService) Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	if _, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceCourse, ID: id}); err != nil {
		return nil, err
	}
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
		if name != course.Name {
			exists, err := s.repo.Course.ExistsByName(ctx, course.AcademyID, name, id)
			if err != nil {
				s.logger.Error("检查课程名称失败", zap.Error(err))
				return nil, err
			}
			if exists {
				return nil, fieldErr("name", ErrCourseNameExists)
			}
		}
	}

	var batches []courseBatch
	if req.Batches != nil {
		if batches, err = buildCourseBatches(req.Batches); err != nil {
			return nil, err
		}
	}

	updates := applyCoursePatch(req)
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Course.Update(ctx, id, updates); err != nil {
			return err
		}
		if req.Batches == nil {
			return nil
		}
		return syncCourseBatches(ctx, tx, id, batches)
	})
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			return nil, fieldErr("batches", ErrBatchNotFound)
		}
		if mapped := mapCourseConstraint(err); mapped != nil {
			return nil, mapped
		}
		s.logger.Error("更新课程失败", zap.Uint64("course_id", id), zap.Error(err))
		return nil, err
	}
	return s.get(ctx, id)
}

// applyCoursePatch 白名单合并：仅非空字段写入
func applyCoursePatch(req *dto.UpdateCourseRequest) map[string]interface{} {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Fee != nil {
		updates["fee"] = *req.Fee
	}
	if req.CourseType != nil {
		updates["course_type"] = *req.CourseType
	}
	return updates
}

// syncCourseBatches 声明式同步课程的班次
func syncCourseBatches(ctx context.Context, tx *repository.Repository, courseID uint64, incoming []courseBatch) error {
	existing, err := tx.Batch.ListByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	ids := make([]uint64, len(existing))
	for i, b := range existing {
		ids[i] = b.ID
	}

	plan := planSync(ids, incoming, func(cb courseBatch) *uint64 { return cb.in.ID })
	if len(plan.Unknown) > 0 {
		return ErrBatchNotFound
	}

	// 先删除再写入，释放被移除班次占用的名称
	if _, err := tx.Enrollment.DeleteByBatchIDs(ctx, plan.Delete); err != nil {
		return err
	}
	if _, err := tx.Batch.DeleteByIDs(ctx, plan.Delete); err != nil {
		return err
	}
	for _, cb := range plan.Update {
		if err := tx.Batch.Update(ctx, *cb.in.ID, batchInputUpdates(cb)); err != nil {
			return err
		}
	}
	for _, cb := range plan.Create {
		b := cb.batch
		b.CourseID = courseID
		if err := tx.Batch.Create(ctx, &b); err != nil {
			return err
		}
	}
	return nil
}

// batchInputUpdates 内嵌班次为完整表示：未给出 end_date 即清空
func batchInputUpdates(cb courseBatch) map[string]interface{} {
	updates := map[string]interface{}{
		"name":        cb.batch.Name,
		"description": cb.batch.Description,
		"start_date":  cb.batch.StartDate,
		"end_date":    nil,
	}
	if cb.batch.EndDate != nil {
		updates["end_date"] = *cb.batch.EndDate
	}
	if cb.in.IsActive != nil {
		updates["is_active"] = *cb.in.IsActive
	}
	return updates
}

// buildCourseBatches 校验日期区间与请求内名称唯一
func buildCourseBatches(inputs []dto.CourseBatchInput) ([]courseBatch, error) {
	out := make([]courseBatch, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		prefix := fmt.Sprintf("batches[%d].", i)
		name := strings.TrimSpace(in.Name)
		if seen[name] {
			return nil, fieldErr(prefix+"name", ErrBatchNameExists)
		}
		seen[name] = true

		start, end, err := parseBatchDates(prefix, in.StartDate, in.EndDate)
		if err != nil {
			return nil, err
		}
		isActive := true
		if in.IsActive != nil {
			isActive = *in.IsActive
		}
		in.Name = name
		out = append(out, courseBatch{
			in: in,
			batch: model.Batch{
				Name:        name,
				Description: in.Description,
				StartDate:   start,
				EndDate:     end,
				IsActive:    isActive,
			},
		})
	}
	return out, nil
}

func (s *courseService) Delete(ctx context.Context, p Principal, id uint64) (DeleteResult, error) {
	if _, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceCourse, ID: id}); err != nil {
		switch {
		case errors.Is(err, ErrCourseNotFound):
			return DeleteResult{Outcome: DeleteOutcomeNotFound}, nil
		case errors.Is(err, ErrPermissionDenied):
			return DeleteResult{}, err
		default:
			return classifyDelete(s.logger, DeleteResult{}, err, zap.Uint64("course_id", id)), nil
		}
	}

	var res DeleteResult
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		var err error
		if res.Enrollments, err = tx.Enrollment.DeleteByCourse(ctx, id); err != nil {
			return err
		}
		if res.Batches, err = tx.Batch.DeleteByCourse(ctx, id); err != nil {
			return err
		}
		if err := tx.Course.Delete(ctx, id); err != nil {
			return err
		}
		res.Courses = 1
		return nil
	})
	return classifyDelete(s.logger, res, err, zap.Uint64("course_id", id)), nil
}

func (s *courseService) Get(ctx context.Context, p Principal, id uint64) (*dto.CourseResponse, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, err
	}
	if !scope.All {
		visible, err := s.repo.Course.IsVisible(ctx, id, scope)
		if err != nil {
			s.logger.Error("检查课程可见性失败", zap.Error(err))
			return nil, err
		}
		if !visible {
			return nil, ErrCourseNotFound
		}
	}
	return s.get(ctx, id)
}

func (s *courseService) get(ctx context.Context, id uint64) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Uint64("course_id", id), zap.Error(err))
		return nil, err
	}
	resp := toCourseResponse(course, s.now())
	return &resp, nil
}

func (s *courseService) List(ctx context.Context, p Principal, req *dto.CourseListRequest) ([]dto.CourseResponse, pagination.Meta, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	page := req.ToRequest(pagination.ManageLimits)
	filter := repository.CourseFilter{
		Search:     req.Search,
		AcademyID:  req.AcademyID,
		CourseType: req.CourseType,
		MinFee:     req.MinFee,
		MaxFee:     req.MaxFee,
		Ordering:   req.Ordering,
	}
	list, total, err := s.repo.Course.List(ctx, filter, scope, page)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	now := s.now()
	out := make([]dto.CourseResponse, len(list))
	for i := range list {
		out[i] = toCourseResponse(&list[i], now)
	}
	return out, pagination.BuildMeta(total, page), nil
}

func (s *courseService) Dropdown(ctx context.Context, p Principal, req *dto.CourseDropdownRequest) ([]dto.DropdownItem, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, err
	}
	list, err := s.repo.Course.Dropdown(ctx, req.Search, req.AcademyID, scope)
	if err != nil {
		s.logger.Error("查询课程下拉失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.DropdownItem, len(list))
	for i, c := range list {
		out[i] = dto.DropdownItem{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

func (s *courseService) CourseTypes() []dto.ChoiceItem {
	out := make([]dto.ChoiceItem, len(model.CourseTypeLabels))
	for i, l := range model.CourseTypeLabels {
		out[i] = dto.ChoiceItem{Value: l.Value, Label: l.Label}
	}
	return out
}

// ── 辅助函数 ──

// mapCourseConstraint 将课程/班次约束冲突映射为业务错误；无法识别时返回 nil
func mapCourseConstraint(err error) error {
	switch {
	case pkgerrors.IsUniqueViolation(err, constraintCourseName):
		return fieldErr("name", ErrCourseNameExists)
	case pkgerrors.IsUniqueViolation(err, constraintBatchName):
		return fieldErr("batches", ErrBatchNameExists)
	case pkgerrors.IsCheckViolation(err, constraintBatchDateRange):
		return fieldErr("end_date", ErrInvalidDateRange)
	default:
		return nil
	}
}

func courseTypeLabel(v string) string {
	for _, l := range model.CourseTypeLabels {
		if l.Value == v {
			return l.Label
		}
	}
	return v
}

func toCourseResponse(c *model.Course, now time.Time) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:              c.ID,
		AcademyID:       c.AcademyID,
		Name:            c.Name,
		Description:     c.Description,
		Fee:             c.Fee,
		CourseType:      c.CourseType,
		CourseTypeLabel: courseTypeLabel(c.CourseType),
		Batches:         make([]dto.BatchResponse, 0, len(c.Batches)),
		CreatedAt:       formatTime(c.CreatedAt),
		UpdatedAt:       formatTime(c.UpdatedAt),
	}
	if c.Academy != nil {
		resp.AcademyName = c.Academy.Name
	}
	for i := range c.Batches {
		resp.Batches = append(resp.Batches, toBatchResponse(&c.Batches[i], now))
	}
	return resp
}
