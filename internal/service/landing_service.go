package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// latestReviewLimit 详情页展示的最新公开评价条数
const latestReviewLimit = 10

// LandingService 公开落地页业务接口
//
// 设计说明：
//   - 只返回所属机构用户有效的机构与教师
//   - 评分汇总只统计已审核且有效的评价
//   - 过滤选项走 Redis 读缓存
type LandingService interface {
	FeaturedAcademies(ctx context.Context, req *dto.FeaturedRequest) ([]dto.LandingAcademyCard, error)
	ListAcademies(ctx context.Context, req *dto.LandingAcademyListRequest) ([]dto.LandingAcademyCard, pagination.Meta, error)
	AcademyDetail(ctx context.Context, id uint64) (*dto.LandingAcademyDetail, error)
	FeaturedTeachers(ctx context.Context, req *dto.FeaturedRequest) ([]dto.LandingTeacherCard, error)
	ListTeachers(ctx context.Context, req *dto.LandingTeacherListRequest) ([]dto.LandingTeacherCard, pagination.Meta, error)
	TeacherDetail(ctx context.Context, id uint64) (*dto.LandingTeacherDetail, error)
	ProgramOptions(ctx context.Context) ([]string, error)
	SubjectOptions(ctx context.Context) ([]string, error)
	SubmitContact(ctx context.Context, req *dto.ContactRequest) error
}

type landingService struct {
	repo     *repository.Repository
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewLandingService 创建 LandingService 实例
func NewLandingService(repo *repository.Repository, cache Cache, cacheTTL time.Duration, logger *zap.Logger) LandingService {
	return &landingService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// ── 机构 ──

func (s *landingService) FeaturedAcademies(ctx context.Context, req *dto.FeaturedRequest) ([]dto.LandingAcademyCard, error) {
	list, err := s.repo.Landing.FeaturedAcademies(ctx, pagination.FeaturedLimits.ClampSize(req.Limit))
	if err != nil {
		s.logger.Error("查询推荐机构失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.LandingAcademyCard, len(list))
	for i := range list {
		out[i] = toLandingAcademyCard(&list[i])
	}
	return out, nil
}

func (s *landingService) ListAcademies(ctx context.Context, req *dto.LandingAcademyListRequest) ([]dto.LandingAcademyCard, pagination.Meta, error) {
	page := req.ToRequest(pagination.LandingLimits)
	filter := repository.LandingAcademyFilter{
		Search:     req.Search,
		Program:    strings.TrimSpace(req.Program),
		DivisionID: req.Division,
		DistrictID: req.District,
		MinRating:  req.MinRating,
	}
	list, total, err := s.repo.Landing.ListAcademies(ctx, filter, page)
	if err != nil {
		s.logger.Error("查询落地页机构失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	out := make([]dto.LandingAcademyCard, len(list))
	for i := range list {
		out[i] = toLandingAcademyCard(&list[i])
	}
	return out, pagination.BuildMeta(total, page), nil
}

func (s *landingService) AcademyDetail(ctx context.Context, id uint64) (*dto.LandingAcademyDetail, error) {
	academy, err := s.repo.Landing.GetAcademy(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAcademyNotFound
		}
		s.logger.Error("查询机构详情失败", zap.Uint64("academy_id", id), zap.Error(err))
		return nil, err
	}

	students, err := s.repo.Enrollment.CountActiveStudents(ctx, id)
	if err != nil {
		s.logger.Error("统计在读学员失败", zap.Uint64("academy_id", id), zap.Error(err))
		return nil, err
	}

	reviews, err := s.repo.Review.ListPublicAcademyReviews(ctx, id, latestReviewLimit)
	if err != nil {
		s.logger.Error("查询机构评价失败", zap.Uint64("academy_id", id), zap.Error(err))
		return nil, err
	}
	buckets, err := s.repo.Review.AcademyRatingBuckets(ctx, id)
	if err != nil {
		s.logger.Error("统计机构评分失败", zap.Uint64("academy_id", id), zap.Error(err))
		return nil, err
	}
	latest := make([]dto.ReviewResponse, len(reviews))
	for i := range reviews {
		latest[i] = toAcademyReviewResponse(&reviews[i])
	}

	now := s.now()
	detail := &dto.LandingAcademyDetail{
		LandingAcademyCard: toLandingAcademyCard(academy),
		Description:        academy.Description,
		Website:            academy.Website,
		ContactNumber:      academy.ContactNumber,
		Email:              academy.Email,
		EstablishedYear:    academy.EstablishedYear,
		AreaOrUnion:        academy.AreaOrUnion,
		StreetAddress:      academy.StreetAddress,
		PostalCode:         academy.PostalCode,
		TotalStudents:      students,
		Gallery:            make([]dto.GalleryItem, 0, len(academy.Gallery)),
		Facilities:         make([]dto.NamedItem, 0, len(academy.Facilities)),
		ProgramList:        make([]dto.NamedItem, 0, len(academy.Programs)),
		Courses:            make([]dto.LandingCourse, 0, len(academy.Courses)),
		Teachers:           make([]dto.LandingTeacherCard, 0, len(academy.Teachers)),
		Reviews:            latest,
		Rating:             summarizeRatings(buckets),
	}
	if academy.Upazila != nil {
		detail.Upazila = academy.Upazila.Name
	}
	for _, g := range academy.Gallery {
		detail.Gallery = append(detail.Gallery, dto.GalleryItem{
			ID: g.ID, ImageURL: g.ImageURL, Title: g.Title, Description: g.Description, Order: g.Order,
		})
	}
	for _, f := range academy.Facilities {
		detail.Facilities = append(detail.Facilities, dto.NamedItem{ID: f.ID, Name: f.Name, Description: f.Description})
	}
	for _, p := range academy.Programs {
		detail.ProgramList = append(detail.ProgramList, dto.NamedItem{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	for i := range academy.Courses {
		c := &academy.Courses[i]
		course := dto.LandingCourse{
			ID:              c.ID,
			Name:            c.Name,
			Description:     c.Description,
			Fee:             c.Fee,
			CourseType:      c.CourseType,
			CourseTypeLabel: courseTypeLabel(c.CourseType),
			Batches:         make([]dto.BatchResponse, 0, len(c.Batches)),
		}
		for j := range c.Batches {
			course.Batches = append(course.Batches, toBatchResponse(&c.Batches[j], now))
		}
		detail.Courses = append(detail.Courses, course)
	}
	for i := range academy.Teachers {
		t := &academy.Teachers[i]
		if t.Academy == nil {
			t.Academy = academy
		}
		detail.Teachers = append(detail.Teachers, toLandingTeacherCard(t))
	}
	return detail, nil
}

// ── 教师 ──

func (s *landingService) FeaturedTeachers(ctx context.Context, req *dto.FeaturedRequest) ([]dto.LandingTeacherCard, error) {
	list, err := s.repo.Landing.FeaturedTeachers(ctx, pagination.FeaturedTeacherLimits.ClampSize(req.Limit))
	if err != nil {
		s.logger.Error("查询推荐教师失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.LandingTeacherCard, len(list))
	for i := range list {
		out[i] = toLandingTeacherCard(&list[i])
	}
	return out, nil
}

func (s *landingService) ListTeachers(ctx context.Context, req *dto.LandingTeacherListRequest) ([]dto.LandingTeacherCard, pagination.Meta, error) {
	page := req.ToRequest(pagination.LandingLimits)
	filter := repository.LandingTeacherFilter{
		Search:        req.Search,
		Subject:       strings.TrimSpace(req.Subject),
		MinExperience: req.MinExperience,
		MaxExperience: req.MaxExperience,
		IsAvailable:   req.IsAvailable,
		MinRating:     req.MinRating,
	}
	list, total, err := s.repo.Landing.ListTeachers(ctx, filter, page)
	if err != nil {
		s.logger.Error("查询落地页教师失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	out := make([]dto.LandingTeacherCard, len(list))
	for i := range list {
		out[i] = toLandingTeacherCard(&list[i])
	}
	return out, pagination.BuildMeta(total, page), nil
}

func (s *landingService) TeacherDetail(ctx context.Context, id uint64) (*dto.LandingTeacherDetail, error) {
	teacher, err := s.repo.Landing.GetTeacher(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师详情失败", zap.Uint64("teacher_id", id), zap.Error(err))
		return nil, err
	}

	reviews, err := s.repo.Review.ListPublicTeacherReviews(ctx, id, latestReviewLimit)
	if err != nil {
		s.logger.Error("查询教师评价失败", zap.Uint64("teacher_id", id), zap.Error(err))
		return nil, err
	}
	buckets, err := s.repo.Review.TeacherRatingBuckets(ctx, id)
	if err != nil {
		s.logger.Error("统计教师评分失败", zap.Uint64("teacher_id", id), zap.Error(err))
		return nil, err
	}
	latest := make([]dto.ReviewResponse, len(reviews))
	for i := range reviews {
		latest[i] = toTeacherReviewResponse(&reviews[i])
	}

	detail := &dto.LandingTeacherDetail{
		LandingTeacherCard: toLandingTeacherCard(teacher),
		Bio:                teacher.Bio,
		LinkedinURL:        teacher.LinkedinURL,
		Email:              teacher.Email,
		Phone:              teacher.Phone,
		Educations:         make([]dto.EducationResponse, 0, len(teacher.Educations)),
		Achievements:       make([]dto.AchievementResponse, 0, len(teacher.Achievements)),
		Reviews:            latest,
		Rating:             summarizeRatings(buckets),
	}
	for _, e := range teacher.Educations {
		detail.Educations = append(detail.Educations, dto.EducationResponse{
			ID: e.ID, Degree: e.Degree, Institution: e.Institution, Year: e.Year, Order: e.Order,
		})
	}
	for _, a := range teacher.Achievements {
		detail.Achievements = append(detail.Achievements, dto.AchievementResponse{
			ID: a.ID, Title: a.Title, Description: a.Description, Year: a.Year,
		})
	}
	return detail, nil
}

// ── 过滤选项 ──

func (s *landingService) ProgramOptions(ctx context.Context) ([]string, error) {
	names, err := cached(ctx, s.cache, s.logger, cacheKeyPrograms, s.cacheTTL, func() ([]string, error) {
		return s.repo.Landing.ProgramNames(ctx)
	})
	if err != nil {
		s.logger.Error("查询项目选项失败", zap.Error(err))
		return nil, err
	}
	return nonNil(names), nil
}

func (s *landingService) SubjectOptions(ctx context.Context) ([]string, error) {
	names, err := cached(ctx, s.cache, s.logger, cacheKeySubjects, s.cacheTTL, func() ([]string, error) {
		return s.repo.Landing.SubjectNames(ctx)
	})
	if err != nil {
		s.logger.Error("查询科目选项失败", zap.Error(err))
		return nil, err
	}
	return nonNil(names), nil
}

func (s *landingService) SubmitContact(ctx context.Context, req *dto.ContactRequest) error {
	msg := &model.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.repo.Contact.Create(ctx, msg); err != nil {
		s.logger.Error("保存联系表单失败", zap.Error(err))
		return err
	}
	s.logger.Info("收到联系表单", zap.Uint64("id", msg.ID), zap.String("subject", msg.Subject))
	return nil
}

// ── 辅助函数 ──

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

func toLandingAcademyCard(a *model.Academy) dto.LandingAcademyCard {
	card := dto.LandingAcademyCard{
		ID:               a.ID,
		Name:             a.Name,
		ShortDescription: a.ShortDescription,
		Logo:             a.Logo,
		CoverImage:       a.CoverImage,
		IsFeatured:       a.IsFeatured,
		FeaturedSubject:  a.FeaturedSubject,
		AvgRating:        a.AvgRating,
		ReviewCount:      a.ReviewCount,
	}
	if a.Division != nil {
		card.Division = a.Division.Name
	}
	if a.District != nil {
		card.District = a.District.Name
	}
	for _, p := range a.Programs {
		card.Programs = append(card.Programs, p.Name)
	}
	return card
}

func toLandingTeacherCard(t *model.Teacher) dto.LandingTeacherCard {
	card := dto.LandingTeacherCard{
		ID:              t.ID,
		FullName:        t.FullName,
		Title:           t.Title,
		ProfilePicture:  t.ProfilePicture,
		ExperienceYears: t.ExperienceYears,
		Location:        t.Location,
		IsFeatured:      t.IsFeatured,
		IsAvailable:     t.IsAvailable,
		AcademyID:       t.AcademyID,
		AvgRating:       t.AvgRating,
		ReviewCount:     t.ReviewCount,
		Subjects:        make([]string, 0, len(t.Subjects)),
	}
	if t.Academy != nil {
		card.AcademyName = t.Academy.Name
	}
	for _, sub := range t.Subjects {
		card.Subjects = append(card.Subjects, sub.Subject)
		if sub.IsPrimary && card.PrimarySubject == "" {
			card.PrimarySubject = sub.Subject
		}
	}
	return card
}
