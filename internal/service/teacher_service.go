package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// ── 教师模块业务错误 ──

var (
	ErrTeacherNotFound         = errors.New("教师不存在")
	ErrMultiplePrimarySubjects = errors.New("只能设置一个主讲科目")
	ErrDuplicateSubject        = errors.New("科目重复")
	ErrSubjectNotFound         = errors.New("科目不存在")
	ErrEducationNotFound       = errors.New("教育经历不存在")
	ErrAchievementNotFound     = errors.New("荣誉成就不存在")
)

// TeacherService 教师管理业务接口
//
// 子集合（科目/教育经历/荣誉）与课程班次一样按声明式同步
type TeacherService interface {
	Create(ctx context.Context, p Principal, req *dto.CreateTeacherRequest) (*dto.TeacherResponse, error)
	Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateTeacherRequest) (*dto.TeacherResponse, error)
	Delete(ctx context.Context, p Principal, id uint64) error
	Get(ctx context.Context, p Principal, id uint64) (*dto.TeacherResponse, error)
	List(ctx context.Context, p Principal, req *dto.TeacherListRequest) ([]dto.TeacherResponse, pagination.Meta, error)
}

type teacherService struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
}

// NewTeacherService 创建 TeacherService 实例
// 教师及其科目变更后清除落地页科目选项缓存；cache 可为 nil
func NewTeacherService(repo *repository.Repository, cache Cache, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, cache: cache, logger: logger}
}

func (s *teacherService) Create(ctx context.Context, p Principal, req *dto.CreateTeacherRequest) (*dto.TeacherResponse, error) {
	academyID, err := targetAcademy(ctx, s.repo, p, req.AcademyID)
	if err != nil {
		return nil, err
	}
	if err := checkSubjects(req.Subjects); err != nil {
		return nil, err
	}

	isAvailable, isActive := true, true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	teacher := &model.Teacher{
		AcademyID:       academyID,
		FullName:        strings.TrimSpace(req.FullName),
		Title:           req.Title,
		Bio:             req.Bio,
		ExperienceYears: req.ExperienceYears,
		Location:        req.Location,
		LinkedinURL:     req.LinkedinURL,
		Email:           req.Email,
		Phone:           req.Phone,
		ProfilePicture:  req.ProfilePicture,
		IsFeatured:      req.IsFeatured,
		IsAvailable:     isAvailable,
		IsActive:        isActive,
	}
	for _, in := range req.Subjects {
		teacher.Subjects = append(teacher.Subjects, buildSubject(0)(in))
	}
	for _, in := range req.Educations {
		teacher.Educations = append(teacher.Educations, buildEducation(0)(in))
	}
	for _, in := range req.Achievements {
		teacher.Achievements = append(teacher.Achievements, buildAchievement(0)(in))
	}

	if err := s.repo.Teacher.Create(ctx, teacher); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, fieldErr("subjects", ErrDuplicateSubject)
		}
		s.logger.Error("创建教师失败", zap.Error(err))
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cacheKeySubjects)
	return s.get(ctx, teacher.ID)
}

func (s *teacherService) Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateTeacherRequest) (*dto.TeacherResponse, error) {
	if _, err := s.authorizeTeacher(ctx, p, id); err != nil {
		return nil, err
	}
	if req.Subjects != nil {
		if err := checkSubjects(req.Subjects); err != nil {
			return nil, err
		}
	}

	updates := applyTeacherPatch(req)
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Teacher.Update(ctx, id, updates); err != nil {
			return err
		}
		if req.Subjects != nil {
			err := syncChildren(ctx, tx.TeacherSubjects, id, req.Subjects,
				func(in dto.SubjectInput) *uint64 { return in.ID },
				func(m model.TeacherSubject) uint64 { return m.ID },
				buildSubject(id), fieldErr("subjects", ErrSubjectNotFound))
			if err != nil {
				return err
			}
		}
		if req.Educations != nil {
			err := syncChildren(ctx, tx.TeacherEducations, id, req.Educations,
				func(in dto.EducationInput) *uint64 { return in.ID },
				func(m model.TeacherEducation) uint64 { return m.ID },
				buildEducation(id), fieldErr("educations", ErrEducationNotFound))
			if err != nil {
				return err
			}
		}
		if req.Achievements != nil {
			return syncChildren(ctx, tx.TeacherAchievements, id, req.Achievements,
				func(in dto.AchievementInput) *uint64 { return in.ID },
				func(m model.TeacherAchievement) uint64 { return m.ID },
				buildAchievement(id), fieldErr("achievements", ErrAchievementNotFound))
		}
		return nil
	})
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			return nil, err
		}
		if pkgerrors.IsUniqueViolation(err) {
			return nil, fieldErr("subjects", ErrDuplicateSubject)
		}
		s.logger.Error("更新教师失败", zap.Uint64("teacher_id", id), zap.Error(err))
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cacheKeySubjects)
	return s.get(ctx, id)
}

// applyTeacherPatch 白名单合并：仅非空字段写入
func applyTeacherPatch(req *dto.UpdateTeacherRequest) map[string]interface{} {
	updates := make(map[string]interface{})
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.ExperienceYears != nil {
		updates["experience_years"] = *req.ExperienceYears
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.LinkedinURL != nil {
		updates["linkedin_url"] = *req.LinkedinURL
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.ProfilePicture != nil {
		updates["profile_picture"] = *req.ProfilePicture
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	return updates
}

func (s *teacherService) Delete(ctx context.Context, p Principal, id uint64) error {
	if _, err := s.authorizeTeacher(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Teacher.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrTeacherNotFound
		}
		s.logger.Error("删除教师失败", zap.Uint64("teacher_id", id), zap.Error(err))
		return err
	}
	invalidate(ctx, s.cache, s.logger, cacheKeySubjects)
	return nil
}

func (s *teacherService) Get(ctx context.Context, p Principal, id uint64) (*dto.TeacherResponse, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, err
	}
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.Uint64("teacher_id", id), zap.Error(err))
		return nil, err
	}
	if !scope.All && scope.AcademyID != teacher.AcademyID {
		return nil, ErrTeacherNotFound
	}
	resp := toTeacherResponse(teacher)
	return &resp, nil
}

func (s *teacherService) get(ctx context.Context, id uint64) (*dto.TeacherResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.Uint64("teacher_id", id), zap.Error(err))
		return nil, err
	}
	resp := toTeacherResponse(teacher)
	return &resp, nil
}

func (s *teacherService) List(ctx context.Context, p Principal, req *dto.TeacherListRequest) ([]dto.TeacherResponse, pagination.Meta, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	page := req.ToRequest(pagination.ManageLimits)
	filter := repository.TeacherFilter{
		Search:      req.Search,
		AcademyID:   req.AcademyID,
		Subject:     req.Subject,
		IsActive:    req.IsActive,
		IsAvailable: req.IsAvailable,
	}
	list, total, err := s.repo.Teacher.List(ctx, filter, scope, page)
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	out := make([]dto.TeacherResponse, len(list))
	for i := range list {
		out[i] = toTeacherResponse(&list[i])
	}
	return out, pagination.BuildMeta(total, page), nil
}

// authorizeTeacher 教师归属于机构，按机构做归属校验
func (s *teacherService) authorizeTeacher(ctx context.Context, p Principal, id uint64) (*model.Teacher, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTeacherNotFound)
	}
	if _, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceAcademy, ID: teacher.AcademyID}); err != nil {
		return nil, err
	}
	return teacher, nil
}

// ── 辅助函数 ──

// checkSubjects 至多一个主讲科目，且科目不重复
func checkSubjects(subjects []dto.SubjectInput) error {
	primary := 0
	seen := make(map[string]bool, len(subjects))
	for i, in := range subjects {
		if in.IsPrimary {
			primary++
		}
		key := strings.ToLower(strings.TrimSpace(in.Subject))
		if seen[key] {
			return fieldErr(fmt.Sprintf("subjects[%d].subject", i), ErrDuplicateSubject)
		}
		seen[key] = true
	}
	if primary > 1 {
		return fieldErr("subjects", ErrMultiplePrimarySubjects)
	}
	return nil
}

func buildSubject(teacherID uint64) func(dto.SubjectInput) model.TeacherSubject {
	return func(in dto.SubjectInput) model.TeacherSubject {
		m := model.TeacherSubject{
			TeacherID: teacherID,
			Subject:   strings.TrimSpace(in.Subject),
			IsPrimary: in.IsPrimary,
		}
		if in.ID != nil {
			m.ID = *in.ID
		}
		return m
	}
}

func buildEducation(teacherID uint64) func(dto.EducationInput) model.TeacherEducation {
	return func(in dto.EducationInput) model.TeacherEducation {
		m := model.TeacherEducation{
			TeacherID:   teacherID,
			Degree:      in.Degree,
			Institution: in.Institution,
			Year:        in.Year,
			Order:       in.Order,
		}
		if in.ID != nil {
			m.ID = *in.ID
		}
		return m
	}
}

func buildAchievement(teacherID uint64) func(dto.AchievementInput) model.TeacherAchievement {
	return func(in dto.AchievementInput) model.TeacherAchievement {
		m := model.TeacherAchievement{
			TeacherID:   teacherID,
			Title:       in.Title,
			Description: in.Description,
			Year:        in.Year,
		}
		if in.ID != nil {
			m.ID = *in.ID
		}
		return m
	}
}

func toSubjectResponses(list []model.TeacherSubject) []dto.SubjectResponse {
	out := make([]dto.SubjectResponse, len(list))
	for i, s := range list {
		out[i] = dto.SubjectResponse{ID: s.ID, Subject: s.Subject, IsPrimary: s.IsPrimary}
	}
	return out
}

func toTeacherResponse(t *model.Teacher) dto.TeacherResponse {
	resp := dto.TeacherResponse{
		ID:              t.ID,
		AcademyID:       t.AcademyID,
		FullName:        t.FullName,
		Title:           t.Title,
		Bio:             t.Bio,
		ExperienceYears: t.ExperienceYears,
		Location:        t.Location,
		LinkedinURL:     t.LinkedinURL,
		Email:           t.Email,
		Phone:           t.Phone,
		ProfilePicture:  t.ProfilePicture,
		IsFeatured:      t.IsFeatured,
		IsAvailable:     t.IsAvailable,
		IsActive:        t.IsActive,
		AvgRating:       t.AvgRating,
		ReviewCount:     t.ReviewCount,
		Subjects:        toSubjectResponses(t.Subjects),
		CreatedAt:       formatTime(t.CreatedAt),
	}
	if t.Academy != nil {
		resp.AcademyName = t.Academy.Name
	}
	for _, e := range t.Educations {
		resp.Educations = append(resp.Educations, dto.EducationResponse{
			ID: e.ID, Degree: e.Degree, Institution: e.Institution, Year: e.Year, Order: e.Order,
		})
	}
	for _, a := range t.Achievements {
		resp.Achievements = append(resp.Achievements, dto.AchievementResponse{
			ID: a.ID, Title: a.Title, Description: a.Description, Year: a.Year,
		})
	}
	return resp
}
