package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// ── 机构模块业务错误 ──

var (
	ErrAcademyNotFound   = errors.New("机构不存在")
	ErrAcademyNameExists = errors.New("机构名称已存在")
	ErrAcademyIDRequired = errors.New("必须指定所属机构")
	ErrUsernameExists    = errors.New("用户名已被使用")
	ErrEmailExists       = errors.New("邮箱已被使用")
	ErrGeoMismatch       = errors.New("行政区划层级不匹配")
	ErrNoAcademyForUser  = errors.New("当前账号未关联机构")
)

// 唯一约束名
const (
	constraintAcademyName = "uq_academies_name_ci"
	constraintUserEmail   = "uq_users_email"
)

// AcademyService 机构业务接口
//
// 设计说明：
//   - Create 在单个事务内创建账号、机构并将账号短信入队
//   - Update 按白名单合并非空字段，version 列做乐观锁
//   - Delete 返回分类结果，不向调用方暴露存储层错误
type AcademyService interface {
	Create(ctx context.Context, p Principal, req *dto.CreateAcademyRequest) (*dto.AcademyResponse, error)
	Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateAcademyRequest) (*dto.AcademyResponse, error)
	// Delete 仅在权限不足时返回 error，其余情况体现在 DeleteResult.Outcome
	Delete(ctx context.Context, p Principal, id uint64) (DeleteResult, error)
	Get(ctx context.Context, p Principal, id uint64) (*dto.AcademyResponse, error)
	List(ctx context.Context, p Principal, req *dto.AcademyListRequest) ([]dto.AcademyResponse, pagination.Meta, error)
	MyAcademy(ctx context.Context, p Principal) (*dto.AcademyResponse, error)
}

type academyService struct {
	repo   *repository.Repository
	sms    SMSService
	cache  Cache
	logger *zap.Logger
}

// NewAcademyService 创建 AcademyService 实例；cache 可为 nil
func NewAcademyService(repo *repository.Repository, sms SMSService, cache Cache, logger *zap.Logger) AcademyService {
	return &academyService{repo: repo, sms: sms, cache: cache, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Create — 创建机构及其登录账号
// ═══════════════════════════════════════════════════════════

func (s *academyService) Create(ctx context.Context, p Principal, req *dto.CreateAcademyRequest) (*dto.AcademyResponse, error) {
	if p.Role != model.RoleAdmin {
		return nil, ErrPermissionDenied
	}

	// 1. 行政区划
	if err := validateGeo(ctx, s.repo, req.DivisionID, req.DistrictID, req.UpazilaID); err != nil {
		return nil, err
	}

	// 2. 唯一性
	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.Academy.ExistsByName(ctx, name, 0)
	if err != nil {
		s.logger.Error("检查机构名称失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, fieldErr("name", ErrAcademyNameExists)
	}
	if err := s.checkUserUnique(ctx, req.User.Phone, req.User.Email, ""); err != nil {
		return nil, err
	}

	// 3. 初始密码
	password, err := generatePassword()
	if err != nil {
		s.logger.Error("生成初始密码失败", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	user := &model.User{
		Username:     req.User.Phone,
		Email:        strings.TrimSpace(req.User.Email),
		Phone:        req.User.Phone,
		FirstName:    req.User.FirstName,
		LastName:     req.User.LastName,
		PasswordHash: string(hash),
		Role:         model.RoleAcademy,
		IsActive:     true,
	}
	academy := &model.Academy{
		Name:             name,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Logo:             req.Logo,
		CoverImage:       req.CoverImage,
		Website:          req.Website,
		ContactNumber:    req.ContactNumber,
		Email:            req.Email,
		EstablishedYear:  req.EstablishedYear,
		DivisionID:       req.DivisionID,
		DistrictID:       req.DistrictID,
		UpazilaID:        req.UpazilaID,
		AreaOrUnion:      req.AreaOrUnion,
		StreetAddress:    req.StreetAddress,
		PostalCode:       req.PostalCode,
		IsFeatured:       req.IsFeatured,
		FeaturedSubject:  req.FeaturedSubject,
		IsActive:         isActive,
	}

	// 4. 事务：账号 → 机构 → 账号短信
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		academy.UserID = user.UserID
		if err := tx.Academy.Create(ctx, academy); err != nil {
			return err
		}
		createdBy := p.UserID
		createdFor := user.UserID
		_, err := s.sms.Queue(ctx, tx, QueueInput{
			Phone:      user.Phone,
			Message:    accountMessage(academy.Name, user.Username, password),
			SMSType:    model.SMSTypeAccount,
			CreatedBy:  &createdBy,
			CreatedFor: &createdFor,
		})
		return err
	})
	if err != nil {
		if mapped := mapAcademyUnique(err); mapped != nil {
			return nil, mapped
		}
		s.logger.Error("创建机构失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("机构已创建",
		zap.Uint64("academy_id", academy.ID),
		zap.String("user_id", user.UserID),
	)
	return s.get(ctx, academy.ID)
}

// ═══════════════════════════════════════════════════════════
// Update — 部分更新（乐观锁）
// ═══════════════════════════════════════════════════════════

func (s *academyService) Update(ctx context.Context, p Principal, id uint64, req *dto.UpdateAcademyRequest) (*dto.AcademyResponse, error) {
	if p.Role != model.RoleAdmin && p.Role != model.RoleAcademy {
		return nil, ErrPermissionDenied
	}
	if _, err := authorize(ctx, s.repo, p, Resource{Kind: ResourceAcademy, ID: id}); err != nil {
		return nil, err
	}

	academy, err := s.repo.Academy.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrAcademyNotFound)
	}
	if req.Version != nil && *req.Version != academy.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}
	// 推荐与启停仅限管理员与员工；原值回传不视为修改
	if !p.IsStaff() && (changesFlag(req.IsFeatured, academy.IsFeatured) || changesFlag(req.IsActive, academy.IsActive)) {
		return nil, ErrPermissionDenied
	}

	// 1. 名称：仅在实际变更时复查
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
		if name != academy.Name {
			exists, err := s.repo.Academy.ExistsByName(ctx, name, id)
			if err != nil {
				s.logger.Error("检查机构名称失败", zap.Error(err))
				return nil, err
			}
			if exists {
				return nil, fieldErr("name", ErrAcademyNameExists)
			}
		}
	}

	// 2. 行政区划：按合并后的取值校验
	if req.DivisionID != nil || req.DistrictID != nil || req.UpazilaID != nil {
		division, district, upazila := academy.DivisionID, academy.DistrictID, academy.UpazilaID
		if req.DivisionID != nil {
			division = req.DivisionID
		}
		if req.DistrictID != nil {
			district = req.DistrictID
		}
		if req.UpazilaID != nil {
			upazila = req.UpazilaID
		}
		if err := validateGeo(ctx, s.repo, division, district, upazila); err != nil {
			return nil, err
		}
	}

	// 3. 账号子补丁
	user, userFields, err := s.applyUserPatch(ctx, academy, req.User)
	if err != nil {
		return nil, err
	}

	updates := applyAcademyPatch(req, p.IsStaff())
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Academy.Update(ctx, academy, updates); err != nil {
			return err
		}
		if len(userFields) > 0 {
			return tx.User.Update(ctx, user, userFields...)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		if mapped := mapAcademyUnique(err); mapped != nil {
			return nil, mapped
		}
		s.logger.Error("更新机构失败", zap.Uint64("academy_id", id), zap.Error(err))
		return nil, err
	}
	return s.get(ctx, id)
}

// applyAcademyPatch 白名单合并：仅非空字段写入
func applyAcademyPatch(req *dto.UpdateAcademyRequest, staff bool) map[string]interface{} {
	updates := make(map[string]interface{})
	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	setString("name", req.Name)
	setString("description", req.Description)
	setString("short_description", req.ShortDescription)
	setString("logo", req.Logo)
	setString("cover_image", req.CoverImage)
	setString("website", req.Website)
	setString("contact_number", req.ContactNumber)
	setString("email", req.Email)
	setString("area_or_union", req.AreaOrUnion)
	setString("street_address", req.StreetAddress)
	setString("postal_code", req.PostalCode)
	setString("featured_subject", req.FeaturedSubject)
	if req.EstablishedYear != nil {
		updates["established_year"] = *req.EstablishedYear
	}
	if req.DivisionID != nil {
		updates["division_id"] = *req.DivisionID
	}
	if req.DistrictID != nil {
		updates["district_id"] = *req.DistrictID
	}
	if req.UpazilaID != nil {
		updates["upazila_id"] = *req.UpazilaID
	}
	if staff && req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if staff && req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	return updates
}

// applyUserPatch 返回待更新的用户与列名；无变更时列名为空
func (s *academyService) applyUserPatch(ctx context.Context, academy *model.Academy, in *dto.UpdateAcademyUserInput) (*model.User, []string, error) {
	if in == nil {
		return nil, nil, nil
	}
	user := academy.User
	if user == nil {
		u, err := s.repo.User.GetByID(ctx, academy.UserID)
		if err != nil {
			s.logger.Error("查询机构账号失败", zap.String("user_id", academy.UserID), zap.Error(err))
			return nil, nil, err
		}
		user = u
	}

	var fields []string
	if in.Username != nil && *in.Username != user.Username {
		exists, err := s.repo.User.ExistsByUsername(ctx, *in.Username, user.UserID)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			return nil, nil, fieldErr("user.username", ErrUsernameExists)
		}
		user.Username = *in.Username
		fields = append(fields, "username")
	}
	if in.Email != nil && !strings.EqualFold(*in.Email, user.Email) {
		email := strings.TrimSpace(*in.Email)
		exists, err := s.repo.User.ExistsByEmail(ctx, email, user.UserID)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			return nil, nil, fieldErr("user.email", ErrEmailExists)
		}
		user.Email = email
		fields = append(fields, "email")
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
		fields = append(fields, "first_name")
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
		fields = append(fields, "last_name")
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
		fields = append(fields, "phone")
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("密码加密失败", zap.Error(err))
			return nil, nil, err
		}
		user.PasswordHash = string(hash)
		fields = append(fields, "password_hash")
	}
	return user, fields, nil
}

// ═══════════════════════════════════════════════════════════
// Delete — 级联删除
// ═══════════════════════════════════════════════════════════
//
// 顺序：报名 → 班次教师关联 → 班次 → 课程 → 机构（相册/设施/项目/教师由外键级联）
// 学员记录不受影响

func (s *academyService) Delete(ctx context.Context, p Principal, id uint64) (DeleteResult, error) {
	if p.Role != model.RoleAdmin {
		return DeleteResult{}, ErrPermissionDenied
	}

	var res DeleteResult
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		var err error
		if res.Enrollments, err = tx.Enrollment.DeleteByAcademy(ctx, id); err != nil {
			return err
		}
		if res.Batches, err = tx.Batch.DeleteByAcademy(ctx, id); err != nil {
			return err
		}
		if res.Courses, err = tx.Course.DeleteByAcademy(ctx, id); err != nil {
			return err
		}
		return tx.Academy.Delete(ctx, id)
	})
	res = classifyDelete(s.logger, res, err, zap.Uint64("academy_id", id))
	if res.Outcome == DeleteOutcomeDeleted {
		// 项目与教师随机构级联删除
		invalidate(ctx, s.cache, s.logger, cacheKeyPrograms, cacheKeySubjects)
	}
	return res, nil
}

// classifyDelete 将事务结果归类；失败时计数清零（事务已回滚）
func classifyDelete(logger *zap.Logger, res DeleteResult, err error, fields ...zap.Field) DeleteResult {
	switch {
	case err == nil:
		res.Outcome = DeleteOutcomeDeleted
		return res
	case isNotFound(err):
		return DeleteResult{Outcome: DeleteOutcomeNotFound}
	case pkgerrors.IsForeignKeyViolation(err):
		logger.Warn("删除被外键约束阻止", append(fields, zap.Error(err))...)
		return DeleteResult{Outcome: DeleteOutcomeConflict}
	default:
		logger.Error("级联删除失败", append(fields, zap.Error(err))...)
		return DeleteResult{Outcome: DeleteOutcomeFailed}
	}
}

// ═══════════════════════════════════════════════════════════
// 查询
// ═══════════════════════════════════════════════════════════

func (s *academyService) Get(ctx context.Context, p Principal, id uint64) (*dto.AcademyResponse, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, err
	}
	if !scope.All && scope.AcademyID != id {
		return nil, ErrAcademyNotFound
	}
	return s.get(ctx, id)
}

func (s *academyService) get(ctx context.Context, id uint64) (*dto.AcademyResponse, error) {
	academy, err := s.repo.Academy.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAcademyNotFound
		}
		s.logger.Error("查询机构失败", zap.Uint64("academy_id", id), zap.Error(err))
		return nil, err
	}
	resp := toAcademyResponse(academy)
	return &resp, nil
}

func (s *academyService) List(ctx context.Context, p Principal, req *dto.AcademyListRequest) ([]dto.AcademyResponse, pagination.Meta, error) {
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	page := req.ToRequest(pagination.ManageLimits)
	list, total, err := s.repo.Academy.List(ctx, academyFilter(req), scope, page)
	if err != nil {
		s.logger.Error("查询机构列表失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	out := make([]dto.AcademyResponse, len(list))
	for i := range list {
		out[i] = toAcademyResponse(&list[i])
	}
	return out, pagination.BuildMeta(total, page), nil
}

func (s *academyService) MyAcademy(ctx context.Context, p Principal) (*dto.AcademyResponse, error) {
	if p.Role != model.RoleAcademy {
		return nil, ErrPermissionDenied
	}
	academy, err := s.repo.Academy.GetByUserID(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoAcademyForUser
		}
		s.logger.Error("查询当前机构失败", zap.Error(err))
		return nil, err
	}
	resp := toAcademyResponse(academy)
	return &resp, nil
}

// ── 辅助函数 ──

func academyFilter(req *dto.AcademyListRequest) repository.AcademyFilter {
	return repository.AcademyFilter{
		Search:          req.Search,
		DivisionID:      req.Division,
		DistrictID:      req.District,
		UpazilaID:       req.Upazila,
		IsActive:        req.IsActive,
		EstablishedYear: req.EstablishedYear,
		Ordering:        req.Ordering,
	}
}

// validateGeo 校验行政区划存在且父子关系一致
func validateGeo(ctx context.Context, repo *repository.Repository, divisionID, districtID, upazilaID *uint64) error {
	if divisionID != nil {
		if _, err := repo.Geo.GetDivision(ctx, *divisionID); err != nil {
			return mapNotFound(err, fieldErr("division", ErrReferenceNotFound))
		}
	}
	if districtID != nil {
		d, err := repo.Geo.GetDistrict(ctx, *districtID)
		if err != nil {
			return mapNotFound(err, fieldErr("district", ErrReferenceNotFound))
		}
		if divisionID != nil && d.DivisionID != *divisionID {
			return fieldErr("district", ErrGeoMismatch)
		}
	}
	if upazilaID != nil {
		u, err := repo.Geo.GetUpazila(ctx, *upazilaID)
		if err != nil {
			return mapNotFound(err, fieldErr("upazila", ErrReferenceNotFound))
		}
		if districtID != nil && u.DistrictID != *districtID {
			return fieldErr("upazila", ErrGeoMismatch)
		}
	}
	return nil
}

// checkUserUnique 账号用户名取手机号
func (s *academyService) checkUserUnique(ctx context.Context, username, email, excludeID string) error {
	exists, err := s.repo.User.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		s.logger.Error("检查用户名失败", zap.Error(err))
		return err
	}
	if exists {
		return fieldErr("user.phone", ErrUsernameExists)
	}
	exists, err = s.repo.User.ExistsByEmail(ctx, strings.TrimSpace(email), excludeID)
	if err != nil {
		s.logger.Error("检查邮箱失败", zap.Error(err))
		return err
	}
	if exists {
		return fieldErr("user.email", ErrEmailExists)
	}
	return nil
}

// mapAcademyUnique 将事务内的唯一约束冲突映射为业务错误；非唯一冲突返回 nil
func mapAcademyUnique(err error) error {
	switch {
	case pkgerrors.IsUniqueViolation(err, constraintAcademyName):
		return fieldErr("name", ErrAcademyNameExists)
	case pkgerrors.IsUniqueViolation(err, constraintUserEmail):
		return fieldErr("user.email", ErrEmailExists)
	case pkgerrors.IsUniqueViolation(err):
		return fieldErr("user.username", ErrUsernameExists)
	default:
		return nil
	}
}

func changesFlag(v *bool, current bool) bool {
	return v != nil && *v != current
}

func accountMessage(academyName, username, password string) string {
	return fmt.Sprintf("Welcome to Academia, %s. Username: %s Password: %s", academyName, username, password)
}

func toGeoItem[T any](v *T, id func(*T) uint64, name func(*T) (string, string)) *dto.GeoItem {
	if v == nil {
		return nil
	}
	n, bn := name(v)
	return &dto.GeoItem{ID: id(v), Name: n, BnName: bn}
}

func toAcademyResponse(a *model.Academy) dto.AcademyResponse {
	resp := dto.AcademyResponse{
		ID:               a.ID,
		Name:             a.Name,
		Description:      a.Description,
		ShortDescription: a.ShortDescription,
		Logo:             a.Logo,
		CoverImage:       a.CoverImage,
		Website:          a.Website,
		ContactNumber:    a.ContactNumber,
		Email:            a.Email,
		EstablishedYear:  a.EstablishedYear,
		AreaOrUnion:      a.AreaOrUnion,
		StreetAddress:    a.StreetAddress,
		PostalCode:       a.PostalCode,
		IsFeatured:       a.IsFeatured,
		FeaturedSubject:  a.FeaturedSubject,
		IsActive:         a.IsActive,
		AvgRating:        a.AvgRating,
		ReviewCount:      a.ReviewCount,
		Version:          a.Version,
		CreatedAt:        formatTime(a.CreatedAt),
		UpdatedAt:        formatTime(a.UpdatedAt),
	}
	resp.Division = toGeoItem(a.Division,
		func(d *model.Division) uint64 { return d.ID },
		func(d *model.Division) (string, string) { return d.Name, d.BnName })
	resp.District = toGeoItem(a.District,
		func(d *model.District) uint64 { return d.ID },
		func(d *model.District) (string, string) { return d.Name, d.BnName })
	resp.Upazila = toGeoItem(a.Upazila,
		func(u *model.Upazila) uint64 { return u.ID },
		func(u *model.Upazila) (string, string) { return u.Name, u.BnName })
	if a.User != nil {
		u := toUserResponse(a.User, &a.ID)
		resp.User = &u
	}
	return resp
}

func toUserResponse(u *model.User, academyID *uint64) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		AcademyID: academyID,
	}
}
