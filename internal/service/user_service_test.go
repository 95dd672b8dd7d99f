package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajib3777/academia-sub001/config"
	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
)

// ── 测试辅助 ──

const registerPhone = "01811112222"

func setupTestUserService() (UserService, *mockDB) {
	db := newMockDB()
	repo := newMockRepository(db)
	logger := zap.NewNop()
	otp := NewOTPService(config.OTPConfig{TTL: 5 * time.Minute}, repo, nil, nil, logger)
	return NewUserService(repo, otp, logger), db
}

// markPhoneVerified 模拟手机号已完成验证码验证
func markPhoneVerified(db *mockDB, phone string, expiresAt time.Time) {
	db.otps[phone] = &model.OTPVerification{
		ID:          db.id(),
		PhoneNumber: phone,
		OTP:         "123456",
		ExpiresAt:   expiresAt,
		IsVerified:  true,
	}
}

func newRegisterRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Phone:     registerPhone,
		Password:  "s3cret-pass",
		FirstName: "Karim",
		LastName:  "Uddin",
		Email:     "karim@example.com",
	}
}

func seedUser(db *mockDB, id, role string) *model.User {
	u := &model.User{UserID: id, Username: id, Phone: id, FirstName: "Old", Role: role, IsActive: true}
	db.users[id] = u
	return u
}

func studentOf(db *mockDB, userID string) *model.Student {
	for _, s := range db.students {
		if s.UserID != nil && *s.UserID == userID {
			return s
		}
	}
	return nil
}

// ── Register ──

func TestUserService_Register_Success(t *testing.T) {
	svc, db := setupTestUserService()
	markPhoneVerified(db, registerPhone, time.Now().Add(time.Hour))

	resp, err := svc.Register(context.Background(), newRegisterRequest())
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if resp.Username != registerPhone || resp.Role != model.RoleStudent || !resp.IsActive {
		t.Errorf("期望学员账号且用户名取手机号，实际=%+v", resp)
	}

	user := db.users[resp.ID]
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")) != nil {
		t.Error("密码应以 bcrypt 保存")
	}
	student := studentOf(db, resp.ID)
	if student == nil {
		t.Fatal("期望同时创建学员档案")
	}
	if student.Name != "Karim Uddin" || student.Phone != registerPhone || student.Email != "karim@example.com" {
		t.Errorf("学员档案字段不符，实际=%+v", student)
	}
}

func TestUserService_Register_PhoneNotVerified(t *testing.T) {
	tests := []struct {
		name  string
		setup func(db *mockDB)
	}{
		{"未发送验证码", func(db *mockDB) {}},
		{"验证码未验证", func(db *mockDB) {
			markPhoneVerified(db, registerPhone, time.Now().Add(time.Hour))
			db.otps[registerPhone].IsVerified = false
		}},
		{"验证已过期", func(db *mockDB) { markPhoneVerified(db, registerPhone, time.Now().Add(-time.Minute)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := setupTestUserService()
			tt.setup(db)

			_, err := svc.Register(context.Background(), newRegisterRequest())
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Field != "phone" || !errors.Is(err, ErrPhoneNotVerified) {
				t.Errorf("期望 phone 字段 ErrPhoneNotVerified，实际: %v", err)
			}
			if len(db.users) != 0 || len(db.students) != 0 {
				t.Error("校验失败时不应写入账号或学员")
			}
		})
	}
}

func TestUserService_Register_Duplicate(t *testing.T) {
	svc, db := setupTestUserService()
	markPhoneVerified(db, registerPhone, time.Now().Add(time.Hour))
	if _, err := svc.Register(context.Background(), newRegisterRequest()); err != nil {
		t.Fatalf("首次注册应成功: %v", err)
	}

	_, err := svc.Register(context.Background(), newRegisterRequest())
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("重复手机号期望 ErrUsernameExists，实际: %v", err)
	}

	other := newRegisterRequest()
	other.Phone = "01899998888"
	markPhoneVerified(db, other.Phone, time.Now().Add(time.Hour))
	if _, err := svc.Register(context.Background(), other); !errors.Is(err, ErrEmailExists) {
		t.Errorf("重复邮箱期望 ErrEmailExists，实际: %v", err)
	}
}

// ── List ──

func TestUserService_List(t *testing.T) {
	svc, db := setupTestUserService()
	seedUser(db, "u-1", model.RoleStudent)
	seedUser(db, "u-2", model.RoleStaff)
	seedUser(db, "u-3", model.RoleStudent).IsActive = false

	list, meta, err := svc.List(context.Background(), adminPrincipal, &dto.UserListRequest{Role: model.RoleStudent, IsActive: boolPtr(true)})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 1 || list[0].ID != "u-1" || meta.TotalItems != 1 {
		t.Errorf("期望仅返回启用的学员 u-1，实际=%+v", list)
	}

	if _, _, err := svc.List(context.Background(), Principal{UserID: "s", Role: model.RoleStaff}, &dto.UserListRequest{}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("非管理员期望 ErrPermissionDenied，实际: %v", err)
	}
}

// ── Create ──

func TestUserService_Create_StudentWithProfile(t *testing.T) {
	svc, db := setupTestUserService()

	resp, err := svc.Create(context.Background(), adminPrincipal, &dto.CreateUserRequest{
		Phone: "01900000001", FirstName: "Nila", Role: model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if len(resp.TempPassword) != 10 {
		t.Errorf("期望 10 位临时密码，实际=%q", resp.TempPassword)
	}
	user := db.users[resp.User.ID]
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(resp.TempPassword)) != nil {
		t.Error("临时密码应与保存的哈希一致")
	}
	if studentOf(db, resp.User.ID) == nil {
		t.Error("学员角色应同时创建学员档案")
	}
}

func TestUserService_Create_StaffHasNoProfile(t *testing.T) {
	svc, db := setupTestUserService()

	resp, err := svc.Create(context.Background(), adminPrincipal, &dto.CreateUserRequest{
		Phone: "01900000002", FirstName: "Sara", Role: model.RoleStaff,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if studentOf(db, resp.User.ID) != nil {
		t.Error("员工账号不应创建学员档案")
	}
}

func TestUserService_Create_Rejects(t *testing.T) {
	svc, _ := setupTestUserService()

	_, err := svc.Create(context.Background(), adminPrincipal, &dto.CreateUserRequest{Phone: "01900000003", FirstName: "A", Role: model.RoleAcademy})
	if !errors.Is(err, ErrRoleNotAssignable) {
		t.Errorf("机构角色期望 ErrRoleNotAssignable，实际: %v", err)
	}
	_, err = svc.Create(context.Background(), Principal{UserID: "s", Role: model.RoleStaff}, &dto.CreateUserRequest{Phone: "01900000003", FirstName: "A", Role: model.RoleStudent})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("非管理员期望 ErrPermissionDenied，实际: %v", err)
	}
}

// ── Update ──

func TestUserService_Update_SyncsStudentProfile(t *testing.T) {
	svc, db := setupTestUserService()
	seedUser(db, "u-1", model.RoleStudent)
	uid := "u-1"
	db.students[1] = &model.Student{ID: 1, UserID: &uid, Name: "Old"}

	resp, err := svc.Update(context.Background(), adminPrincipal, "u-1", &dto.UpdateUserRequest{
		FirstName: strPtr("New"),
		LastName:  strPtr("Name"),
		Email:     strPtr("new@example.com"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.FirstName != "New" || resp.Email != "new@example.com" {
		t.Errorf("账号字段未更新，实际=%+v", resp)
	}
	if db.students[1].Name != "New Name" || db.students[1].Email != "new@example.com" {
		t.Errorf("学员档案应同步，实际=%+v", db.students[1])
	}
}

func TestUserService_Update_Permissions(t *testing.T) {
	svc, db := setupTestUserService()
	seedUser(db, "u-1", model.RoleStudent)
	seedUser(db, "u-2", model.RoleStudent)
	self := Principal{UserID: "u-1", Role: model.RoleStudent}

	if _, err := svc.Update(context.Background(), self, "u-1", &dto.UpdateUserRequest{FirstName: strPtr("Me")}); err != nil {
		t.Errorf("本人修改姓名应成功: %v", err)
	}
	if _, err := svc.Update(context.Background(), self, "u-2", &dto.UpdateUserRequest{FirstName: strPtr("X")}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("修改他人账号期望 ErrPermissionDenied，实际: %v", err)
	}
	if _, err := svc.Update(context.Background(), self, "u-1", &dto.UpdateUserRequest{IsActive: boolPtr(true)}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("本人修改启用状态期望 ErrPermissionDenied，实际: %v", err)
	}

	seedUser(db, adminPrincipal.UserID, model.RoleAdmin)
	if _, err := svc.Update(context.Background(), adminPrincipal, adminPrincipal.UserID, &dto.UpdateUserRequest{IsActive: boolPtr(false)}); !errors.Is(err, ErrUserSelfDisable) {
		t.Errorf("管理员停用自己期望 ErrUserSelfDisable，实际: %v", err)
	}
	if _, err := svc.Update(context.Background(), adminPrincipal, "u-2", &dto.UpdateUserRequest{IsActive: boolPtr(false)}); err != nil {
		t.Fatalf("管理员停用他人应成功: %v", err)
	}
	if db.users["u-2"].IsActive {
		t.Error("期望 u-2 已停用")
	}
}

func TestUserService_Update_EmailConflict(t *testing.T) {
	svc, db := setupTestUserService()
	seedUser(db, "u-1", model.RoleStaff)
	seedUser(db, "u-2", model.RoleStaff).Email = "taken@example.com"

	_, err := svc.Update(context.Background(), adminPrincipal, "u-1", &dto.UpdateUserRequest{Email: strPtr("TAKEN@example.com")})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
	if _, err := svc.Update(context.Background(), adminPrincipal, "ghost", &dto.UpdateUserRequest{}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── 密码 ──

func TestUserService_ResetPassword(t *testing.T) {
	svc, db := setupTestUserService()
	seedUser(db, "u-1", model.RoleStudent)

	resp, err := svc.ResetPassword(context.Background(), adminPrincipal, "u-1")
	if err != nil {
		t.Fatalf("ResetPassword 应成功: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(db.users["u-1"].PasswordHash), []byte(resp.TempPassword)) != nil {
		t.Error("重置后的哈希应匹配临时密码")
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, db := setupTestUserService()
	hash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	seedUser(db, "u-1", model.RoleStudent).PasswordHash = string(hash)
	p := Principal{UserID: "u-1", Role: model.RoleStudent}

	err := svc.ChangePassword(context.Background(), p, &dto.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "new-password"})
	if !errors.Is(err, ErrOldPasswordInvalid) {
		t.Errorf("期望 ErrOldPasswordInvalid，实际: %v", err)
	}
	if err := svc.ChangePassword(context.Background(), p, &dto.ChangePasswordRequest{OldPassword: "old-password", NewPassword: "new-password"}); err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(db.users["u-1"].PasswordHash), []byte("new-password")) != nil {
		t.Error("新密码应生效")
	}
}

// ── EnsureAdmin ──

func TestUserService_EnsureAdmin(t *testing.T) {
	svc, db := setupTestUserService()

	created, err := svc.EnsureAdmin(context.Background(), "root", "root-password")
	if err != nil || !created {
		t.Fatalf("首次应创建管理员，实际 created=%v err=%v", created, err)
	}
	created, err = svc.EnsureAdmin(context.Background(), "root", "root-password")
	if err != nil || created {
		t.Errorf("已存在时不应重复创建，实际 created=%v err=%v", created, err)
	}

	count := 0
	for _, u := range db.users {
		if u.Username == "root" && u.Role == model.RoleAdmin && u.IsActive {
			count++
		}
	}
	if count != 1 {
		t.Errorf("期望 1 个管理员账号，实际=%d", count)
	}
}
