package model

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func date(y int, m time.Month, d int) datatypes.Date {
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestBatchStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	end := date(2025, 6, 30)
	past := date(2025, 6, 14)
	today := date(2025, 6, 15)

	tests := []struct {
		name  string
		batch Batch
		want  string
	}{
		{"未开始", Batch{StartDate: date(2025, 7, 1)}, BatchStatusUpcoming},
		{"进行中", Batch{StartDate: date(2025, 6, 1), EndDate: &end}, BatchStatusOngoing},
		{"当天开始", Batch{StartDate: today}, BatchStatusOngoing},
		{"当天结束", Batch{StartDate: date(2025, 6, 1), EndDate: &today}, BatchStatusOngoing},
		{"已结束", Batch{StartDate: date(2025, 5, 1), EndDate: &past}, BatchStatusCompleted},
		{"无结束日期", Batch{StartDate: date(2024, 1, 1)}, BatchStatusOngoing},
	}
	for _, tt := range tests {
		if got := tt.batch.Status(now); got != tt.want {
			t.Errorf("%s: Status()=%s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestOTPIsExpired(t *testing.T) {
	now := time.Now()
	o := OTPVerification{ExpiresAt: now.Add(time.Minute)}
	if o.IsExpired(now) {
		t.Error("未到期不应判定过期")
	}
	if !o.IsExpired(now.Add(2 * time.Minute)) {
		t.Error("到期后应判定过期")
	}
}

func TestUserFullName(t *testing.T) {
	cases := []struct {
		u    User
		want string
	}{
		{User{FirstName: "Rahim", LastName: "Uddin"}, "Rahim Uddin"},
		{User{FirstName: "Rahim"}, "Rahim"},
		{User{LastName: "Uddin"}, "Uddin"},
	}
	for _, c := range cases {
		if got := c.u.FullName(); got != c.want {
			t.Errorf("FullName()=%q, want %q", got, c.want)
		}
	}
}

func TestReviewIsPublic(t *testing.T) {
	r := AcademyReview{IsApproved: true, IsActive: true}
	if !r.IsPublic() {
		t.Error("已审核且有效的评价应公开")
	}
	r.IsActive = false
	if r.IsPublic() {
		t.Error("无效评价不应公开")
	}
	tr := TeacherReview{IsApproved: false, IsActive: true}
	if tr.IsPublic() {
		t.Error("未审核评价不应公开")
	}
}

func TestCourseTypeValues(t *testing.T) {
	vals := CourseTypeValues()
	if len(vals) != 7 || vals[0] != CourseTypeBangla || vals[6] != CourseTypeICT {
		t.Errorf("课程类型列表异常: %v", vals)
	}
}
