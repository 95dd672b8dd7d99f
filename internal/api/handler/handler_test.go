package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	"github.com/rajib3777/academia-sub001/internal/service"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/jwt"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
	"github.com/rajib3777/academia-sub001/pkg/response"
	"github.com/rajib3777/academia-sub001/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(validation.PhoneRule, validation.OneOfRule("coursetype", model.CourseTypeValues()...)); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutClaims  *jwt.Claims
	logoutErr     error
	meResult      *dto.UserResponse
	meErr         error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, claims *jwt.Claims) error {
	m.logoutClaims = claims
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ service.Principal) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock OTPService ──

type mockOTPService struct {
	sendResult *dto.OTPSentResponse
	sendErr    error
	sendIP     string
	verifyErr  error
}

func (m *mockOTPService) Send(_ context.Context, _ *dto.SendOTPRequest, clientIP string) (*dto.OTPSentResponse, error) {
	m.sendIP = clientIP
	return m.sendResult, m.sendErr
}
func (m *mockOTPService) Verify(_ context.Context, _ *dto.VerifyOTPRequest) error {
	return m.verifyErr
}
func (m *mockOTPService) IsPhoneVerified(_ context.Context, _ string) (bool, error) {
	return false, nil
}
func (m *mockOTPService) Purge(_ context.Context) (int64, error) {
	return 0, nil
}

// ── Mock AcademyService ──

type mockAcademyService struct {
	result    *dto.AcademyResponse
	err       error
	list      []dto.AcademyResponse
	meta      pagination.Meta
	deleteRes service.DeleteResult
	deleteErr error
	principal service.Principal
}

func (m *mockAcademyService) Create(_ context.Context, p service.Principal, _ *dto.CreateAcademyRequest) (*dto.AcademyResponse, error) {
	m.principal = p
	return m.result, m.err
}
func (m *mockAcademyService) Update(_ context.Context, p service.Principal, _ uint64, _ *dto.UpdateAcademyRequest) (*dto.AcademyResponse, error) {
	m.principal = p
	return m.result, m.err
}
func (m *mockAcademyService) Delete(_ context.Context, _ service.Principal, _ uint64) (service.DeleteResult, error) {
	return m.deleteRes, m.deleteErr
}
func (m *mockAcademyService) Get(_ context.Context, p service.Principal, _ uint64) (*dto.AcademyResponse, error) {
	m.principal = p
	return m.result, m.err
}
func (m *mockAcademyService) List(_ context.Context, _ service.Principal, _ *dto.AcademyListRequest) ([]dto.AcademyResponse, pagination.Meta, error) {
	return m.list, m.meta, m.err
}
func (m *mockAcademyService) MyAcademy(_ context.Context, _ service.Principal) (*dto.AcademyResponse, error) {
	return m.result, m.err
}

// ── Mock EnrollmentService ──

type mockEnrollmentService struct {
	result    *dto.EnrollmentResponse
	err       error
	deleteErr error
}

func (m *mockEnrollmentService) Create(_ context.Context, _ service.Principal, _ *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	return m.result, m.err
}
func (m *mockEnrollmentService) Update(_ context.Context, _ service.Principal, _ uint64, _ *dto.UpdateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	return m.result, m.err
}
func (m *mockEnrollmentService) Delete(_ context.Context, _ service.Principal, _ uint64) error {
	return m.deleteErr
}
func (m *mockEnrollmentService) Get(_ context.Context, _ service.Principal, _ uint64) (*dto.EnrollmentResponse, error) {
	return m.result, m.err
}
func (m *mockEnrollmentService) List(_ context.Context, _ service.Principal, _ *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, pagination.Meta, error) {
	return nil, pagination.Meta{}, m.err
}

// ── Mock ReviewService ──

type mockReviewService struct {
	result *dto.ReviewResponse
	err    error
}

func (m *mockReviewService) CreateAcademyReview(_ context.Context, _ service.Principal, _ uint64, _ *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	return m.result, m.err
}
func (m *mockReviewService) CreateTeacherReview(_ context.Context, _ service.Principal, _ uint64, _ *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	return m.result, m.err
}
func (m *mockReviewService) ModerateAcademyReview(_ context.Context, _ service.Principal, _ uint64, _ *dto.ModerateReviewRequest) (*dto.ReviewResponse, error) {
	return m.result, m.err
}
func (m *mockReviewService) ModerateTeacherReview(_ context.Context, _ service.Principal, _ uint64, _ *dto.ModerateReviewRequest) (*dto.ReviewResponse, error) {
	return m.result, m.err
}

// ── Mock SMSService ──

type mockSMSService struct {
	sendErr      error
	cancelResult *dto.SMSResponse
	cancelErr    error
}

func (m *mockSMSService) Queue(_ context.Context, _ *repository.Repository, _ service.QueueInput) (*model.SMSHistory, error) {
	return nil, nil
}
func (m *mockSMSService) Send(_ context.Context, _ *repository.Repository, _ service.QueueInput) (*model.SMSHistory, bool, error) {
	return nil, false, nil
}
func (m *mockSMSService) Deliver(_ context.Context, _ *model.SMSHistory) (bool, error) {
	return false, nil
}
func (m *mockSMSService) DrainQueue(_ context.Context) (service.DrainStats, error) {
	return service.DrainStats{}, nil
}
func (m *mockSMSService) SendNow(_ context.Context, _ uint64) (*dto.SMSResponse, error) {
	return m.cancelResult, m.sendErr
}
func (m *mockSMSService) Cancel(_ context.Context, _ uint64) (*dto.SMSResponse, error) {
	return m.cancelResult, m.cancelErr
}
func (m *mockSMSService) List(_ context.Context, _ *dto.SMSListRequest) ([]dto.SMSResponse, pagination.Meta, error) {
	return []dto.SMSResponse{}, pagination.Meta{}, nil
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportAcademies(_ context.Context, _ service.Principal, _ *dto.AcademyListRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func withAuth(role string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxKeyUserID, "test-user-id")
		c.Set(ctxKeyRole, role)
		c.Set(ctxKeyClaims, &jwt.Claims{UserID: "test-user-id", Role: role, TokenType: jwt.TokenTypeAccess})
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func serve(method, route, target string, body io.Reader, h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, h)

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func hasFieldError(resp response.Response, field string) bool {
	for _, e := range resp.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{loginResult: &dto.TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}}
	h := NewAuthHandler(mock, zap.NewNop())

	w := serve("POST", "/auth/login", "/auth/login",
		jsonBody(dto.LoginRequest{Username: "01711111111", Password: "secret"}), h.Login)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if !resp.Success || resp.Code != 0 {
		t.Errorf("expected success envelope, got %+v", resp)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())

	w := serve("POST", "/auth/login", "/auth/login", strings.NewReader("invalid json"), h.Login)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !hasFieldError(parseResponse(w), "non_field_errors") {
		t.Errorf("expected non_field_errors, got %s", w.Body.String())
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())

	w := serve("POST", "/auth/login", "/auth/login", jsonBody(map[string]string{}), h.Login)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10001 || !hasFieldError(resp, "username") || !hasFieldError(resp, "password") {
		t.Errorf("expected field errors for username and password, got %+v", resp.Errors)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, zap.NewNop())

	w := serve("POST", "/auth/login", "/auth/login",
		jsonBody(dto.LoginRequest{Username: "x", Password: "wrong"}), h.Login)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrInvalidRefresh}, zap.NewNop())

	w := serve("POST", "/auth/refresh", "/auth/refresh",
		jsonBody(dto.RefreshTokenRequest{RefreshToken: "old"}), h.RefreshToken)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_PassesClaims(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock, zap.NewNop())

	w := serve("POST", "/auth/logout", "/auth/logout", nil, withAuth(model.RoleStudent, h.Logout))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutClaims == nil || mock.logoutClaims.UserID != "test-user-id" {
		t.Errorf("expected claims passed to service, got %+v", mock.logoutClaims)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())

	w := serve("GET", "/auth/me", "/auth/me", nil, h.Me)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Me_InternalErrorHidden(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{meErr: errors.New("pq: connection refused")}, zap.NewNop())

	w := serve("GET", "/auth/me", "/auth/me", nil, withAuth(model.RoleAdmin, h.Me))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Error("internal error details must not leak")
	}
}

// ═══════════════════════════════════════════════════════════
// OTPHandler Tests
// ═══════════════════════════════════════════════════════════

func TestOTPHandler_Send_InvalidPhone(t *testing.T) {
	h := NewOTPHandler(&mockOTPService{}, zap.NewNop())

	w := serve("POST", "/send-otp", "/send-otp", jsonBody(dto.SendOTPRequest{PhoneNumber: "12345"}), h.Send)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !hasFieldError(parseResponse(w), "phone_number") {
		t.Errorf("expected phone_number field error, got %s", w.Body.String())
	}
}

func TestOTPHandler_Send_Success(t *testing.T) {
	mock := &mockOTPService{sendResult: &dto.OTPSentResponse{PhoneNumber: "01711111111"}}
	h := NewOTPHandler(mock, zap.NewNop())

	w := serve("POST", "/send-otp", "/send-otp", jsonBody(dto.SendOTPRequest{PhoneNumber: "01711111111"}), h.Send)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.sendIP == "" {
		t.Error("expected client IP passed to service")
	}
}

func TestOTPHandler_Send_RateLimited(t *testing.T) {
	h := NewOTPHandler(&mockOTPService{sendErr: service.ErrOTPRateLimited}, zap.NewNop())

	w := serve("POST", "/send-otp", "/send-otp", jsonBody(dto.SendOTPRequest{PhoneNumber: "01711111111"}), h.Send)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}

func TestOTPHandler_Verify_Errors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"expired", service.ErrOTPExpired, "otp"},
		{"invalid", service.ErrOTPInvalid, "otp"},
		{"used", service.ErrOTPAlreadyVerified, "otp"},
		{"unknown phone", service.ErrOTPPhoneNotFound, "phone_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOTPHandler(&mockOTPService{verifyErr: tt.err}, zap.NewNop())

			w := serve("POST", "/verify-otp", "/verify-otp",
				jsonBody(dto.VerifyOTPRequest{PhoneNumber: "01711111111", OTP: "123456"}), h.Verify)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if !hasFieldError(parseResponse(w), tt.field) {
				t.Errorf("expected %s field error, got %s", tt.field, w.Body.String())
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// AcademyHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAcademyHandler_List_Pagination(t *testing.T) {
	mock := &mockAcademyService{
		list: []dto.AcademyResponse{{ID: 1, Name: "Alpha"}},
		meta: pagination.Meta{Page: 1, PageSize: 10, TotalItems: 1, TotalPages: 1},
	}
	h := NewAcademyHandler(mock, zap.NewNop())

	w := serve("GET", "/academies", "/academies?page=1", nil, withAuth(model.RoleAdmin, h.ListAcademies))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Pagination == nil || resp.Pagination.TotalItems != 1 {
		t.Errorf("expected pagination block, got %+v", resp.Pagination)
	}
}

func TestAcademyHandler_Get_PrincipalFromContext(t *testing.T) {
	mock := &mockAcademyService{result: &dto.AcademyResponse{ID: 7}}
	h := NewAcademyHandler(mock, zap.NewNop())

	w := serve("GET", "/academy/:id", "/academy/7", nil, withAuth(model.RoleAcademy, h.GetAcademy))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.principal.Role != model.RoleAcademy || mock.principal.UserID != "test-user-id" {
		t.Errorf("unexpected principal %+v", mock.principal)
	}
}

func TestAcademyHandler_Get_InvalidID(t *testing.T) {
	h := NewAcademyHandler(&mockAcademyService{}, zap.NewNop())

	w := serve("GET", "/academy/:id", "/academy/abc", nil, withAuth(model.RoleAdmin, h.GetAcademy))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAcademyHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"not found", service.ErrAcademyNotFound, http.StatusNotFound, ""},
		{"forbidden", service.ErrPermissionDenied, http.StatusForbidden, ""},
		{"optimistic lock", pkgerrors.ErrOptimisticLock, http.StatusConflict, ""},
		{"name exists", &service.FieldError{Field: "name", Err: service.ErrAcademyNameExists}, http.StatusBadRequest, "name"},
		{"geo reference", &service.FieldError{Field: "division", Err: service.ErrReferenceNotFound}, http.StatusBadRequest, "division"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAcademyHandler(&mockAcademyService{err: tt.err}, zap.NewNop())

			w := serve("PATCH", "/academy/:id", "/academy/1", jsonBody(map[string]string{"name": "New"}),
				withAuth(model.RoleAdmin, h.UpdateAcademy))

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.field != "" && !hasFieldError(parseResponse(w), tt.field) {
				t.Errorf("expected %s field error, got %s", tt.field, w.Body.String())
			}
		})
	}
}

func TestAcademyHandler_Delete_Outcomes(t *testing.T) {
	tests := []struct {
		outcome service.DeleteOutcome
		status  int
	}{
		{service.DeleteOutcomeDeleted, http.StatusOK},
		{service.DeleteOutcomeNotFound, http.StatusNotFound},
		{service.DeleteOutcomeConflict, http.StatusBadRequest},
		{service.DeleteOutcomeFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			mock := &mockAcademyService{deleteRes: service.DeleteResult{Outcome: tt.outcome, Courses: 2, Batches: 4, Enrollments: 8}}
			h := NewAcademyHandler(mock, zap.NewNop())

			w := serve("DELETE", "/academy/:id", "/academy/1", nil, withAuth(model.RoleAdmin, h.DeleteAcademy))

			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestAcademyHandler_Delete_Counts(t *testing.T) {
	mock := &mockAcademyService{deleteRes: service.DeleteResult{Outcome: service.DeleteOutcomeDeleted, Courses: 2, Batches: 4, Enrollments: 8}}
	h := NewAcademyHandler(mock, zap.NewNop())

	w := serve("DELETE", "/academy/:id", "/academy/1", nil, withAuth(model.RoleAdmin, h.DeleteAcademy))

	var body struct {
		Data dto.DeleteResultResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Data.Courses != 2 || body.Data.Batches != 4 || body.Data.Enrollments != 8 {
		t.Errorf("unexpected counts %+v", body.Data)
	}
}

// ═══════════════════════════════════════════════════════════
// Enrollment / Review / SMS Handler Tests
// ═══════════════════════════════════════════════════════════

func TestEnrollmentHandler_Delete_NotFound(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{deleteErr: service.ErrEnrollmentNotFound}, zap.NewNop())

	w := serve("DELETE", "/academy/enrollments/:id", "/academy/enrollments/9", nil,
		withAuth(model.RoleAcademy, h.DeleteEnrollment))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestEnrollmentHandler_Create_DuplicateIsFieldError(t *testing.T) {
	mock := &mockEnrollmentService{err: &service.FieldError{Field: "student_id", Err: service.ErrEnrollmentExists}}
	h := NewEnrollmentHandler(mock, zap.NewNop())

	w := serve("POST", "/academy/enrollments", "/academy/enrollments",
		jsonBody(map[string]interface{}{"student_id": 1, "batch_id": 2}), withAuth(model.RoleAcademy, h.CreateEnrollment))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !hasFieldError(parseResponse(w), "student_id") {
		t.Errorf("expected student_id field error, got %s", w.Body.String())
	}
}

func TestReviewHandler_Create_StudentRequired(t *testing.T) {
	h := NewReviewHandler(&mockReviewService{err: service.ErrStudentRequired}, zap.NewNop())

	w := serve("POST", "/reviews/academies/:id", "/reviews/academies/1",
		jsonBody(map[string]interface{}{"rating": 4.5, "body": "great"}), withAuth(model.RoleAcademy, h.CreateAcademyReview))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestReviewHandler_Create_RatingOutOfRange(t *testing.T) {
	h := NewReviewHandler(&mockReviewService{}, zap.NewNop())

	w := serve("POST", "/reviews/teachers/:id", "/reviews/teachers/1",
		jsonBody(map[string]interface{}{"rating": 6, "body": "too good"}), withAuth(model.RoleStudent, h.CreateTeacherReview))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !hasFieldError(parseResponse(w), "rating") {
		t.Errorf("expected rating field error, got %s", w.Body.String())
	}
}

func TestSMSHandler_Cancel_NotCancelable(t *testing.T) {
	h := NewSMSHandler(&mockSMSService{cancelErr: service.ErrSMSNotCancelable}, zap.NewNop())

	w := serve("POST", "/sms/:id/cancel", "/sms/3/cancel", nil, withAuth(model.RoleAdmin, h.CancelSMS))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSMSHandler_Send_InFlight(t *testing.T) {
	h := NewSMSHandler(&mockSMSService{sendErr: service.ErrSMSNotQueued}, zap.NewNop())

	w := serve("POST", "/sms/:id/send", "/sms/3/send", nil, withAuth(model.RoleAdmin, h.SendSMS))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if code := parseResponse(w).Code; code != 19003 {
		t.Errorf("expected code 19003, got %d", code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportAcademies_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "academies_2026-07-01.xlsx"}
	h := NewExportHandler(mock, zap.NewNop())

	w := serve("GET", "/academies/export", "/academies/export", nil, withAuth(model.RoleStaff, h.ExportAcademies))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "academies_2026-07-01.xlsx") {
		t.Errorf("unexpected content disposition %s", cd)
	}
}

func TestExportHandler_ExportAcademies_Empty(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoAcademies}, zap.NewNop())

	w := serve("GET", "/academies/export", "/academies/export", nil, withAuth(model.RoleAdmin, h.ExportAcademies))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
