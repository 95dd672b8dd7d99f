package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
)

// ── 通用业务错误 ──

var (
	ErrPermissionDenied  = errors.New("无权操作该资源")
	ErrReferenceNotFound = errors.New("关联数据不存在")
	ErrInvalidDate       = errors.New("日期格式应为 YYYY-MM-DD")
)

// FieldError 带字段名的业务校验错误，可用 errors.Is 匹配内部哨兵错误
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// ── 请求主体 ──

// Principal 当前请求主体，由 JWT 上下文构造
type Principal struct {
	UserID string
	Role   string
}

// IsStaff 管理员或员工，不受机构范围限制
func (p Principal) IsStaff() bool {
	return p.Role == model.RoleAdmin || p.Role == model.RoleStaff
}

// resolveScope 将主体解析为列表可见范围
func resolveScope(ctx context.Context, repo *repository.Repository, p Principal) (repository.Scope, error) {
	switch p.Role {
	case model.RoleAdmin, model.RoleStaff:
		return repository.ScopeAll, nil
	case model.RoleAcademy:
		academy, err := repo.Academy.GetByUserID(ctx, p.UserID)
		if err != nil {
			if isNotFound(err) {
				return repository.Scope{}, nil
			}
			return repository.Scope{}, err
		}
		return repository.Scope{AcademyID: academy.ID}, nil
	case model.RoleStudent:
		student, err := repo.Student.GetByUserID(ctx, p.UserID)
		if err != nil {
			if isNotFound(err) {
				return repository.Scope{}, nil
			}
			return repository.Scope{}, err
		}
		return repository.Scope{StudentID: student.ID}, nil
	default:
		return repository.Scope{}, nil
	}
}

// ── 归属校验 ──

// ResourceKind 受归属校验的资源类型
type ResourceKind int

const (
	ResourceAcademy ResourceKind = iota + 1
	ResourceCourse
	ResourceBatch
)

// Resource 待校验的资源
type Resource struct {
	Kind ResourceKind
	ID   uint64
}

// owningAcademy 解析资源所属机构 id；资源不存在时返回对应的 NotFound 错误
func (r Resource) owningAcademy(ctx context.Context, repo *repository.Repository) (uint64, error) {
	switch r.Kind {
	case ResourceAcademy:
		a, err := repo.Academy.GetByID(ctx, r.ID)
		if err != nil {
			return 0, mapNotFound(err, ErrAcademyNotFound)
		}
		return a.ID, nil
	case ResourceCourse:
		c, err := repo.Course.GetByID(ctx, r.ID)
		if err != nil {
			return 0, mapNotFound(err, ErrCourseNotFound)
		}
		return c.AcademyID, nil
	case ResourceBatch:
		b, err := repo.Batch.GetByID(ctx, r.ID)
		if err != nil {
			return 0, mapNotFound(err, ErrBatchNotFound)
		}
		if b.Course == nil {
			c, err := repo.Course.GetByID(ctx, b.CourseID)
			if err != nil {
				return 0, mapNotFound(err, ErrCourseNotFound)
			}
			return c.AcademyID, nil
		}
		return b.Course.AcademyID, nil
	default:
		return 0, fmt.Errorf("未知资源类型: %d", r.Kind)
	}
}

// authorize 写操作前的归属校验：管理员/员工直接通过，机构仅能操作自身资源
func authorize(ctx context.Context, repo *repository.Repository, p Principal, res Resource) (uint64, error) {
	academyID, err := res.owningAcademy(ctx, repo)
	if err != nil {
		return 0, err
	}
	if p.IsStaff() {
		return academyID, nil
	}
	if p.Role != model.RoleAcademy {
		return 0, ErrPermissionDenied
	}
	own, err := repo.Academy.GetByUserID(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return 0, ErrPermissionDenied
		}
		return 0, err
	}
	if own.ID != academyID {
		return 0, ErrPermissionDenied
	}
	return academyID, nil
}

// targetAcademy 新建资源时确定所属机构：机构账号取自身，管理员/员工须显式指定
func targetAcademy(ctx context.Context, repo *repository.Repository, p Principal, requested *uint64) (uint64, error) {
	switch {
	case p.Role == model.RoleAcademy:
		own, err := repo.Academy.GetByUserID(ctx, p.UserID)
		if err != nil {
			if isNotFound(err) {
				return 0, ErrPermissionDenied
			}
			return 0, err
		}
		if requested != nil && *requested != own.ID {
			return 0, ErrPermissionDenied
		}
		return own.ID, nil
	case p.IsStaff():
		if requested == nil || *requested == 0 {
			return 0, fieldErr("academy_id", ErrAcademyIDRequired)
		}
		if _, err := repo.Academy.GetByID(ctx, *requested); err != nil {
			if isNotFound(err) {
				return 0, fieldErr("academy_id", ErrReferenceNotFound)
			}
			return 0, err
		}
		return *requested, nil
	default:
		return 0, ErrPermissionDenied
	}
}

// ── 声明式同步 ──

// syncPlan 子集合同步计划：不在传入集合中的既有 id 删除，无 id 新建，有 id 原地更新
type syncPlan[I any] struct {
	Create  []I
	Update  []I
	Delete  []uint64
	Unknown []uint64
}

func planSync[I any](existing []uint64, incoming []I, idOf func(I) *uint64) syncPlan[I] {
	var plan syncPlan[I]
	known := make(map[uint64]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}
	kept := make(map[uint64]bool, len(incoming))
	for _, item := range incoming {
		id := idOf(item)
		switch {
		case id == nil || *id == 0:
			plan.Create = append(plan.Create, item)
		case known[*id]:
			kept[*id] = true
			plan.Update = append(plan.Update, item)
		default:
			plan.Unknown = append(plan.Unknown, *id)
		}
	}
	for _, id := range existing {
		if !kept[id] {
			plan.Delete = append(plan.Delete, id)
		}
	}
	return plan
}

// syncChildren 将 incoming 声明式同步到 store；build 负责把输入转换为带父 id 的模型
func syncChildren[T any, I any](
	ctx context.Context,
	store repository.ChildStore[T],
	parentID uint64,
	incoming []I,
	inputID func(I) *uint64,
	modelID func(T) uint64,
	build func(I) T,
	unknownErr error,
) error {
	existing, err := store.ListByParent(ctx, parentID)
	if err != nil {
		return err
	}
	ids := make([]uint64, len(existing))
	for i, e := range existing {
		ids[i] = modelID(e)
	}

	plan := planSync(ids, incoming, inputID)
	if len(plan.Unknown) > 0 {
		return unknownErr
	}
	if _, err := store.DeleteByIDs(ctx, parentID, plan.Delete); err != nil {
		return err
	}
	for _, in := range plan.Update {
		item := build(in)
		if err := store.Update(ctx, &item); err != nil {
			return err
		}
	}
	for _, in := range plan.Create {
		item := build(in)
		if err := store.Create(ctx, &item); err != nil {
			return err
		}
	}
	return nil
}

// ── 级联删除结果 ──

// DeleteOutcome 删除结果类型
type DeleteOutcome string

const (
	DeleteOutcomeDeleted  DeleteOutcome = "deleted"
	DeleteOutcomeNotFound DeleteOutcome = "not_found"
	DeleteOutcomeConflict DeleteOutcome = "conflict"
	DeleteOutcomeFailed   DeleteOutcome = "failed"
)

// DeleteResult 级联删除结果与各层删除计数
type DeleteResult struct {
	Outcome     DeleteOutcome
	Enrollments int64
	Batches     int64
	Courses     int64
}

// ToResponse 转换为响应
func (r DeleteResult) ToResponse() dto.DeleteResultResponse {
	return dto.DeleteResultResponse{
		Outcome:     string(r.Outcome),
		Enrollments: r.Enrollments,
		Batches:     r.Batches,
		Courses:     r.Courses,
	}
}

// ── 辅助函数 ──

const dateLayout = "2006-01-02"

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// mapNotFound 将 gorm 未找到错误映射为业务错误，其余错误原样返回
func mapNotFound(err, target error) error {
	if isNotFound(err) {
		return target
	}
	return err
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).Format(dateLayout)
}

func formatDatePtr(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := formatDate(*d)
	return &s
}

func parseDate(field, s string) (datatypes.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return datatypes.Date{}, fieldErr(field, ErrInvalidDate)
	}
	return datatypes.Date(t), nil
}

// parseDatePtr 空指针或空串视为未设置
func parseDatePtr(field string, s *string) (*datatypes.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := parseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseDateFilter(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fieldErr(field, ErrInvalidDate)
	}
	return &t, nil
}

// round1 保留 1 位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

// randomString 使用 crypto/rand 从 alphabet 中生成定长字符串
func randomString(n int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// generatePassword 生成 10 位初始密码
func generatePassword() (string, error) {
	return randomString(10, passwordAlphabet)
}

// generateOTP 生成 6 位数字验证码
func generateOTP() (string, error) {
	return randomString(6, "0123456789")
}
