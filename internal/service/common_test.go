package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
)

// ── planSync ──

type syncInput struct {
	id   *uint64
	name string
}

func TestPlanSync(t *testing.T) {
	idOf := func(in syncInput) *uint64 { return in.id }
	zero := uint64(0)

	plan := planSync([]uint64{1, 2, 3}, []syncInput{
		{id: u64Ptr(1), name: "keep"},
		{name: "new"},
		{id: &zero, name: "zero-is-new"},
		{id: u64Ptr(9), name: "unknown"},
	}, idOf)

	if len(plan.Create) != 2 {
		t.Errorf("期望新建 2 条，实际=%d", len(plan.Create))
	}
	if len(plan.Update) != 1 || plan.Update[0].name != "keep" {
		t.Errorf("期望更新 keep，实际=%+v", plan.Update)
	}
	if !reflect.DeepEqual(plan.Delete, []uint64{2, 3}) {
		t.Errorf("期望删除 [2 3]，实际=%v", plan.Delete)
	}
	if !reflect.DeepEqual(plan.Unknown, []uint64{9}) {
		t.Errorf("期望未知 [9]，实际=%v", plan.Unknown)
	}
}

func TestPlanSync_EmptyIncomingDeletesAll(t *testing.T) {
	plan := planSync([]uint64{4, 5}, []syncInput{}, func(in syncInput) *uint64 { return in.id })
	if !reflect.DeepEqual(plan.Delete, []uint64{4, 5}) || len(plan.Create)+len(plan.Update) != 0 {
		t.Errorf("空集合应删除全部，实际=%+v", plan)
	}
}

// ── resolveScope / authorize ──

func TestResolveScope(t *testing.T) {
	db := newMockDB()
	repo := newMockRepository(db)
	a, academyP := db.seedAcademy("A")
	s, studentP := db.seedStudent("S")

	tests := []struct {
		name string
		p    Principal
		want repository.Scope
	}{
		{"管理员", adminPrincipal, repository.ScopeAll},
		{"员工", Principal{UserID: "staff", Role: model.RoleStaff}, repository.ScopeAll},
		{"机构", academyP, repository.Scope{AcademyID: a.ID}},
		{"学员", studentP, repository.Scope{StudentID: s.ID}},
		{"无资料的机构账号", Principal{UserID: "ghost", Role: model.RoleAcademy}, repository.Scope{}},
		{"未知角色", Principal{UserID: "x", Role: "guest"}, repository.Scope{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveScope(context.Background(), repo, tt.p)
			if err != nil {
				t.Fatalf("resolveScope 不应返回 error: %v", err)
			}
			if got != tt.want {
				t.Errorf("期望=%+v，实际=%+v", tt.want, got)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	db := newMockDB()
	repo := newMockRepository(db)
	a, academyP := db.seedAcademy("A")
	other, _ := db.seedAcademy("B")
	b := db.seedBatch(db.seedCourse(a.ID, "C").ID, "B1")
	_, studentP := db.seedStudent("S")

	if id, err := authorize(context.Background(), repo, academyP, Resource{Kind: ResourceBatch, ID: b.ID}); err != nil || id != a.ID {
		t.Errorf("本机构班次应通过，实际 id=%d err=%v", id, err)
	}
	if _, err := authorize(context.Background(), repo, academyP, Resource{Kind: ResourceAcademy, ID: other.ID}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("他人机构期望 ErrPermissionDenied，实际: %v", err)
	}
	if _, err := authorize(context.Background(), repo, studentP, Resource{Kind: ResourceAcademy, ID: a.ID}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("学员写操作期望 ErrPermissionDenied，实际: %v", err)
	}
	if _, err := authorize(context.Background(), repo, adminPrincipal, Resource{Kind: ResourceCourse, ID: 404}); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("资源不存在期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── 辅助函数 ──

func TestFieldError_Unwrap(t *testing.T) {
	err := fieldErr("rating", ErrInvalidRating)
	if !errors.Is(err, ErrInvalidRating) {
		t.Error("FieldError 应可通过 errors.Is 匹配内部错误")
	}
	if err.Error() != "rating: "+ErrInvalidRating.Error() {
		t.Errorf("错误信息格式错误: %s", err.Error())
	}
}

func TestParseDate(t *testing.T) {
	if _, err := parseDate("start_date", "2026-02-30"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("非法日期期望 ErrInvalidDate，实际: %v", err)
	}
	d, err := parseDatePtr("end_date", strPtr(""))
	if err != nil || d != nil {
		t.Errorf("空串应视为未设置，实际 d=%v err=%v", d, err)
	}
	if got := formatDate(testDate("2026-01-09")); got != "2026-01-09" {
		t.Errorf("期望 2026-01-09，实际=%s", got)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{4.25, 4.3},
		{4.24, 4.2},
		{0, 0},
		{5, 5},
	}
	for _, tt := range tests {
		if got := round1(tt.in); got != tt.want {
			t.Errorf("round1(%v) 期望=%v，实际=%v", tt.in, tt.want, got)
		}
	}
}

func TestGeneratePassword(t *testing.T) {
	pw, err := generatePassword()
	if err != nil {
		t.Fatalf("generatePassword 应成功: %v", err)
	}
	if len(pw) != 10 {
		t.Errorf("期望 10 位，实际=%q", pw)
	}
}
