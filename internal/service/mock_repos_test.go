package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
	"github.com/rajib3777/academia-sub001/pkg/redis"
	"github.com/rajib3777/academia-sub001/pkg/sms"
)

// ── 内存数据集 ──

// mockDB 所有 mock repository 共享的内存数据
// 事务在 mock 中不回滚
type mockDB struct {
	nextID uint64

	users          map[string]*model.User
	divisions      map[uint64]*model.Division
	districts      map[uint64]*model.District
	upazilas       map[uint64]*model.Upazila
	academies      map[uint64]*model.Academy
	courses        map[uint64]*model.Course
	batches        map[uint64]*model.Batch
	batchTeachers  map[uint64][]uint64
	enrollments    map[uint64]*model.BatchEnrollment
	students       map[uint64]*model.Student
	teachers       map[uint64]*model.Teacher
	subjects       *mockChildStore[model.TeacherSubject]
	educations     *mockChildStore[model.TeacherEducation]
	achievements   *mockChildStore[model.TeacherAchievement]
	academyReviews map[uint64]*model.AcademyReview
	teacherReviews map[uint64]*model.TeacherReview
	sms            map[uint64]*model.SMSHistory
	smsLocked      map[uint64]bool
	otps           map[string]*model.OTPVerification
	contacts       []model.ContactMessage

	programNames []string
	subjectNames []string
	programLoads int
	subjectLoads int

	// 注入错误
	academyDeleteErr error
	smsCreateErr     error
}

func newMockDB() *mockDB {
	db := &mockDB{
		nextID:         100,
		users:          make(map[string]*model.User),
		divisions:      make(map[uint64]*model.Division),
		districts:      make(map[uint64]*model.District),
		upazilas:       make(map[uint64]*model.Upazila),
		academies:      make(map[uint64]*model.Academy),
		courses:        make(map[uint64]*model.Course),
		batches:        make(map[uint64]*model.Batch),
		batchTeachers:  make(map[uint64][]uint64),
		enrollments:    make(map[uint64]*model.BatchEnrollment),
		students:       make(map[uint64]*model.Student),
		teachers:       make(map[uint64]*model.Teacher),
		academyReviews: make(map[uint64]*model.AcademyReview),
		teacherReviews: make(map[uint64]*model.TeacherReview),
		sms:            make(map[uint64]*model.SMSHistory),
		smsLocked:      make(map[uint64]bool),
		otps:           make(map[string]*model.OTPVerification),
	}
	db.subjects = newMockChildStore(db,
		func(m *model.TeacherSubject) *uint64 { return &m.ID },
		func(m *model.TeacherSubject) uint64 { return m.TeacherID })
	db.educations = newMockChildStore(db,
		func(m *model.TeacherEducation) *uint64 { return &m.ID },
		func(m *model.TeacherEducation) uint64 { return m.TeacherID })
	db.achievements = newMockChildStore(db,
		func(m *model.TeacherAchievement) *uint64 { return &m.ID },
		func(m *model.TeacherAchievement) uint64 { return m.TeacherID })
	return db
}

func (db *mockDB) id() uint64 {
	db.nextID++
	return db.nextID
}

// newMockRepository 组装由 mockDB 支撑的 Repository（db 为空，InTx 直接执行）
func newMockRepository(db *mockDB) *repository.Repository {
	return &repository.Repository{
		User:                &mockUserRepo{db},
		Geo:                 &mockGeoRepo{db},
		Academy:             &mockAcademyRepo{db},
		Course:              &mockCourseRepo{db},
		Batch:               &mockBatchRepo{db},
		Enrollment:          &mockEnrollmentRepo{db},
		Student:             &mockStudentRepo{db},
		Teacher:             &mockTeacherRepo{db},
		TeacherSubjects:     db.subjects,
		TeacherEducations:   db.educations,
		TeacherAchievements: db.achievements,
		Review:              &mockReviewRepo{db},
		Landing:             &mockLandingRepo{db},
		SMS:                 &mockSMSRepo{db},
		OTP:                 &mockOTPRepo{db},
		Contact:             &mockContactRepo{db},
	}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func sortedIDs[T any](m map[uint64]T) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func paginate[T any](list []T, page pagination.Request) []T {
	start := page.Offset()
	if start >= len(list) {
		return nil
	}
	end := start + page.PageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// academyOfBatch 班次所属机构 id
func (db *mockDB) academyOfBatch(batchID uint64) uint64 {
	b, ok := db.batches[batchID]
	if !ok {
		return 0
	}
	if c, ok := db.courses[b.CourseID]; ok {
		return c.AcademyID
	}
	return 0
}

func (db *mockDB) studentInBatch(studentID, batchID uint64) bool {
	for _, e := range db.enrollments {
		if e.StudentID == studentID && e.BatchID == batchID {
			return true
		}
	}
	return false
}

// ── User ──

type mockUserRepo struct{ db *mockDB }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", m.db.id())
	}
	for _, u := range m.db.users {
		if u.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
	}
	m.db.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.db.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByLogin(_ context.Context, login string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.Username == login || u.Phone == login {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsByUsername(_ context.Context, username, excludeID string) (bool, error) {
	for _, u := range m.db.users {
		if u.Username == username && u.UserID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	if email == "" {
		return false, nil
	}
	for _, u := range m.db.users {
		if strings.EqualFold(u.Email, email) && u.UserID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User, _ ...string) error {
	if _, ok := m.db.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.db.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, f repository.UserFilter, page pagination.Request) ([]model.User, int64, error) {
	ids := make([]string, 0, len(m.db.users))
	for id := range m.db.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	kw := strings.ToLower(f.Search)
	var all []model.User
	for _, id := range ids {
		u := m.db.users[id]
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(u.Username+" "+u.Phone+" "+u.Email+" "+u.FirstName+" "+u.LastName), kw) {
			continue
		}
		all = append(all, *u)
	}
	return paginate(all, page.Resolve(int64(len(all)))), int64(len(all)), nil
}

// ── Geo ──

type mockGeoRepo struct{ db *mockDB }

func (m *mockGeoRepo) GetDivision(_ context.Context, id uint64) (*model.Division, error) {
	if d, ok := m.db.divisions[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGeoRepo) GetDistrict(_ context.Context, id uint64) (*model.District, error) {
	if d, ok := m.db.districts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGeoRepo) GetUpazila(_ context.Context, id uint64) (*model.Upazila, error) {
	if u, ok := m.db.upazilas[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGeoRepo) ListDivisions(_ context.Context) ([]model.Division, error) {
	var out []model.Division
	for _, id := range sortedIDs(m.db.divisions) {
		out = append(out, *m.db.divisions[id])
	}
	return out, nil
}

func (m *mockGeoRepo) ListDistricts(_ context.Context, divisionID uint64) ([]model.District, error) {
	var out []model.District
	for _, id := range sortedIDs(m.db.districts) {
		if d := m.db.districts[id]; divisionID == 0 || d.DivisionID == divisionID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockGeoRepo) ListUpazilas(_ context.Context, districtID uint64) ([]model.Upazila, error) {
	var out []model.Upazila
	for _, id := range sortedIDs(m.db.upazilas) {
		if u := m.db.upazilas[id]; districtID == 0 || u.DistrictID == districtID {
			out = append(out, *u)
		}
	}
	return out, nil
}

// ── Academy ──

type mockAcademyRepo struct{ db *mockDB }

func (m *mockAcademyRepo) Create(_ context.Context, a *model.Academy) error {
	for _, other := range m.db.academies {
		if strings.EqualFold(other.Name, a.Name) {
			return uniqueViolation(constraintAcademyName)
		}
	}
	a.ID = m.db.id()
	a.Version = 1
	a.CreatedAt = time.Now()
	m.db.academies[a.ID] = a
	return nil
}

func (m *mockAcademyRepo) load(a *model.Academy) *model.Academy {
	c := *a
	c.User = m.db.users[a.UserID]
	if a.DivisionID != nil {
		c.Division = m.db.divisions[*a.DivisionID]
	}
	if a.DistrictID != nil {
		c.District = m.db.districts[*a.DistrictID]
	}
	if a.UpazilaID != nil {
		c.Upazila = m.db.upazilas[*a.UpazilaID]
	}
	return &c
}

func (m *mockAcademyRepo) GetByID(_ context.Context, id uint64) (*model.Academy, error) {
	if a, ok := m.db.academies[id]; ok {
		return m.load(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAcademyRepo) GetByUserID(_ context.Context, userID string) (*model.Academy, error) {
	for _, a := range m.db.academies {
		if a.UserID == userID {
			return m.load(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAcademyRepo) ExistsByName(_ context.Context, name string, excludeID uint64) (bool, error) {
	for _, a := range m.db.academies {
		if strings.EqualFold(a.Name, name) && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAcademyRepo) Update(_ context.Context, academy *model.Academy, updates map[string]interface{}) error {
	stored, ok := m.db.academies[academy.ID]
	if !ok || stored.Version != academy.Version {
		return pkgerrors.ErrOptimisticLock
	}
	for k, v := range updates {
		switch k {
		case "name":
			stored.Name = v.(string)
		case "description":
			stored.Description = v.(string)
		case "email":
			stored.Email = v.(string)
		case "is_active":
			stored.IsActive = v.(bool)
		case "is_featured":
			stored.IsFeatured = v.(bool)
		case "division_id":
			id := v.(uint64)
			stored.DivisionID = &id
		case "district_id":
			id := v.(uint64)
			stored.DistrictID = &id
		}
	}
	stored.Version++
	academy.Version = stored.Version
	return nil
}

func (m *mockAcademyRepo) Delete(_ context.Context, id uint64) error {
	if m.db.academyDeleteErr != nil {
		return m.db.academyDeleteErr
	}
	if _, ok := m.db.academies[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.academies, id)
	for tid, t := range m.db.teachers {
		if t.AcademyID == id {
			delete(m.db.teachers, tid)
		}
	}
	return nil
}

func (m *mockAcademyRepo) visible(scope repository.Scope) []model.Academy {
	var out []model.Academy
	for _, id := range sortedIDs(m.db.academies) {
		if scope.All || scope.AcademyID == id {
			out = append(out, *m.load(m.db.academies[id]))
		}
	}
	return out
}

func (m *mockAcademyRepo) List(_ context.Context, _ repository.AcademyFilter, scope repository.Scope, page pagination.Request) ([]model.Academy, int64, error) {
	all := m.visible(scope)
	return paginate(all, page.Resolve(int64(len(all)))), int64(len(all)), nil
}

func (m *mockAcademyRepo) ListAll(_ context.Context, _ repository.AcademyFilter, scope repository.Scope) ([]model.Academy, error) {
	return m.visible(scope), nil
}

// ── Course ──

type mockCourseRepo struct{ db *mockDB }

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	for _, other := range m.db.courses {
		if other.AcademyID == c.AcademyID && other.Name == c.Name {
			return uniqueViolation(constraintCourseName)
		}
	}
	c.ID = m.db.id()
	stored := *c
	stored.Batches = nil
	m.db.courses[c.ID] = &stored
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id uint64) (*model.Course, error) {
	c, ok := m.db.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *c
	out.Academy = m.db.academies[c.AcademyID]
	br := &mockBatchRepo{m.db}
	for _, bid := range sortedIDs(m.db.batches) {
		if m.db.batches[bid].CourseID == id {
			out.Batches = append(out.Batches, *br.load(m.db.batches[bid]))
		}
	}
	return &out, nil
}

func (m *mockCourseRepo) ExistsByName(_ context.Context, academyID uint64, name string, excludeID uint64) (bool, error) {
	for _, c := range m.db.courses {
		if c.AcademyID == academyID && c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCourseRepo) Update(_ context.Context, id uint64, updates map[string]interface{}) error {
	c, ok := m.db.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range updates {
		switch k {
		case "name":
			c.Name = v.(string)
		case "description":
			c.Description = v.(string)
		case "fee":
			c.Fee = v.(float64)
		case "course_type":
			c.CourseType = v.(string)
		}
	}
	return nil
}

func (m *mockCourseRepo) visible(c *model.Course, scope repository.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.AcademyID != 0:
		return c.AcademyID == scope.AcademyID
	case scope.StudentID != 0:
		for _, b := range m.db.batches {
			if b.CourseID == c.ID && m.db.studentInBatch(scope.StudentID, b.ID) {
				return true
			}
		}
	}
	return false
}

func (m *mockCourseRepo) IsVisible(_ context.Context, id uint64, scope repository.Scope) (bool, error) {
	c, ok := m.db.courses[id]
	if !ok {
		return false, nil
	}
	return m.visible(c, scope), nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.db.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.courses, id)
	return nil
}

func (m *mockCourseRepo) DeleteByAcademy(_ context.Context, academyID uint64) (int64, error) {
	var n int64
	for id, c := range m.db.courses {
		if c.AcademyID == academyID {
			delete(m.db.courses, id)
			n++
		}
	}
	return n, nil
}

func (m *mockCourseRepo) List(ctx context.Context, _ repository.CourseFilter, scope repository.Scope, page pagination.Request) ([]model.Course, int64, error) {
	var all []model.Course
	for _, id := range sortedIDs(m.db.courses) {
		if m.visible(m.db.courses[id], scope) {
			c, _ := m.GetByID(ctx, id)
			all = append(all, *c)
		}
	}
	return paginate(all, page.Resolve(int64(len(all)))), int64(len(all)), nil
}

func (m *mockCourseRepo) Dropdown(_ context.Context, search string, academyID uint64, scope repository.Scope) ([]model.Course, error) {
	var out []model.Course
	for _, id := range sortedIDs(m.db.courses) {
		c := m.db.courses[id]
		if !m.visible(c, scope) || (academyID != 0 && c.AcademyID != academyID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// ── Batch ──

type mockBatchRepo struct{ db *mockDB }

func (m *mockBatchRepo) checkName(b *model.Batch) error {
	for _, other := range m.db.batches {
		if other.ID != b.ID && other.CourseID == b.CourseID && other.Name == b.Name {
			return uniqueViolation(constraintBatchName)
		}
	}
	return nil
}

func (m *mockBatchRepo) Create(_ context.Context, b *model.Batch) error {
	if err := m.checkName(b); err != nil {
		return err
	}
	b.ID = m.db.id()
	stored := *b
	m.db.batches[b.ID] = &stored
	return nil
}

func (m *mockBatchRepo) load(b *model.Batch) *model.Batch {
	out := *b
	if c, ok := m.db.courses[b.CourseID]; ok {
		course := *c
		course.Academy = m.db.academies[c.AcademyID]
		out.Course = &course
	}
	out.Teachers = nil
	for _, tid := range m.db.batchTeachers[b.ID] {
		if t, ok := m.db.teachers[tid]; ok {
			out.Teachers = append(out.Teachers, *t)
		}
	}
	out.StudentCount = 0
	for _, e := range m.db.enrollments {
		if e.BatchID == b.ID {
			out.StudentCount++
		}
	}
	return &out
}

func (m *mockBatchRepo) GetByID(_ context.Context, id uint64) (*model.Batch, error) {
	if b, ok := m.db.batches[id]; ok {
		return m.load(b), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBatchRepo) LockByID(_ context.Context, id uint64) error {
	if _, ok := m.db.batches[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (m *mockBatchRepo) ListByCourse(_ context.Context, courseID uint64) ([]model.Batch, error) {
	var out []model.Batch
	for _, id := range sortedIDs(m.db.batches) {
		if b := m.db.batches[id]; b.CourseID == courseID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBatchRepo) ExistsByName(_ context.Context, courseID uint64, name string, excludeID uint64) (bool, error) {
	for _, b := range m.db.batches {
		if b.CourseID == courseID && b.Name == name && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBatchRepo) Update(_ context.Context, id uint64, updates map[string]interface{}) error {
	b, ok := m.db.batches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := *b
	for k, v := range updates {
		switch k {
		case "name":
			next.Name = v.(string)
		case "description":
			next.Description = v.(string)
		case "start_date":
			next.StartDate = v.(datatypes.Date)
		case "end_date":
			if v == nil {
				next.EndDate = nil
			} else {
				d := v.(datatypes.Date)
				next.EndDate = &d
			}
		case "is_active":
			next.IsActive = v.(bool)
		}
	}
	if err := m.checkName(&next); err != nil {
		return err
	}
	*b = next
	return nil
}

func (m *mockBatchRepo) IsVisible(_ context.Context, id uint64, scope repository.Scope) (bool, error) {
	if _, ok := m.db.batches[id]; !ok {
		return false, nil
	}
	switch {
	case scope.All:
		return true, nil
	case scope.AcademyID != 0:
		return m.db.academyOfBatch(id) == scope.AcademyID, nil
	case scope.StudentID != 0:
		return m.db.studentInBatch(scope.StudentID, id), nil
	}
	return false, nil
}

func (m *mockBatchRepo) ReplaceTeachers(_ context.Context, batchID uint64, teacherIDs []uint64) error {
	m.db.batchTeachers[batchID] = dedupIDs(teacherIDs)
	return nil
}

func (m *mockBatchRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.db.batches[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.batches, id)
	delete(m.db.batchTeachers, id)
	return nil
}

func (m *mockBatchRepo) DeleteByIDs(_ context.Context, ids []uint64) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := m.db.batches[id]; ok {
			delete(m.db.batches, id)
			delete(m.db.batchTeachers, id)
			n++
		}
	}
	return n, nil
}

func (m *mockBatchRepo) DeleteByCourse(ctx context.Context, courseID uint64) (int64, error) {
	var ids []uint64
	for id, b := range m.db.batches {
		if b.CourseID == courseID {
			ids = append(ids, id)
		}
	}
	return m.DeleteByIDs(ctx, ids)
}

func (m *mockBatchRepo) DeleteByAcademy(ctx context.Context, academyID uint64) (int64, error) {
	var ids []uint64
	for id := range m.db.batches {
		if m.db.academyOfBatch(id) == academyID {
			ids = append(ids, id)
		}
	}
	return m.DeleteByIDs(ctx, ids)
}

func (m *mockBatchRepo) List(ctx context.Context, _ repository.BatchFilter, scope repository.Scope, page pagination.Request) ([]model.Batch, int64, error) {
	var all []model.Batch
	for _, id := range sortedIDs(m.db.batches) {
		if ok, _ := m.IsVisible(ctx, id, scope); ok {
			all = append(all, *m.load(m.db.batches[id]))
		}
	}
	return paginate(all, page.Resolve(int64(len(all)))), int64(len(all)), nil
}

// ── Enrollment ──

type mockEnrollmentRepo struct{ db *mockDB }

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.BatchEnrollment) error {
	if m.db.studentInBatch(e.StudentID, e.BatchID) {
		return uniqueViolation(constraintEnrollment)
	}
	e.ID = m.db.id()
	stored := *e
	m.db.enrollments[e.ID] = &stored
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id uint64) (*model.BatchEnrollment, error) {
	e, ok := m.db.enrollments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *e
	if b, ok := m.db.batches[e.BatchID]; ok {
		out.Batch = (&mockBatchRepo{m.db}).load(b)
	}
	out.Student = m.db.students[e.StudentID]
	return &out, nil
}

func (m *mockEnrollmentRepo) Exists(_ context.Context, batchID, studentID uint64) (bool, error) {
	return m.db.studentInBatch(studentID, batchID), nil
}

func (m *mockEnrollmentRepo) Update(_ context.Context, id uint64, updates map[string]interface{}) error {
	e, ok := m.db.enrollments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range updates {
		switch k {
		case "is_active":
			e.IsActive = v.(bool)
		case "attendance_percentage":
			e.AttendancePercentage = v.(float64)
		case "remarks":
			e.Remarks = v.(string)
		case "completion_date":
			if v == nil {
				e.CompletionDate = nil
			} else {
				d := v.(datatypes.Date)
				e.CompletionDate = &d
			}
		}
	}
	return nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.db.enrollments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.enrollments, id)
	return nil
}

func (m *mockEnrollmentRepo) deleteWhere(match func(*model.BatchEnrollment) bool) int64 {
	var n int64
	for id, e := range m.db.enrollments {
		if match(e) {
			delete(m.db.enrollments, id)
			n++
		}
	}
	return n
}

func (m *mockEnrollmentRepo) DeleteByBatchIDs(_ context.Context, batchIDs []uint64) (int64, error) {
	set := make(map[uint64]bool, len(batchIDs))
	for _, id := range batchIDs {
		set[id] = true
	}
	return m.deleteWhere(func(e *model.BatchEnrollment) bool { return set[e.BatchID] }), nil
}

func (m *mockEnrollmentRepo) DeleteByCourse(_ context.Context, courseID uint64) (int64, error) {
	return m.deleteWhere(func(e *model.BatchEnrollment) bool {
		b, ok := m.db.batches[e.BatchID]
		return ok && b.CourseID == courseID
	}), nil
}

func (m *mockEnrollmentRepo) DeleteByAcademy(_ context.Context, academyID uint64) (int64, error) {
	return m.deleteWhere(func(e *model.BatchEnrollment) bool {
		return m.db.academyOfBatch(e.BatchID) == academyID
	}), nil
}

func (m *mockEnrollmentRepo) CountActiveStudents(_ context.Context, academyID uint64) (int64, error) {
	seen := make(map[uint64]bool)
	for _, e := range m.db.enrollments {
		if e.IsActive && m.db.academyOfBatch(e.BatchID) == academyID {
			seen[e.StudentID] = true
		}
	}
	return int64(len(seen)), nil
}

func (m *mockEnrollmentRepo) List(ctx context.Context, f repository.EnrollmentFilter, scope repository.Scope, page pagination.Request) ([]model.BatchEnrollment, int64, error) {
	var all []model.BatchEnrollment
	for _, id := range sortedIDs(m.db.enrollments) {
		e, _ := m.GetByID(ctx, id)
		if !enrollmentVisible(e, scope) {
			continue
		}
		if f.BatchID != 0 && e.BatchID != f.BatchID {
			continue
		}
		if f.StudentID != 0 && e.StudentID != f.StudentID {
			continue
		}
		all = append(all, *e)
	}
	return paginate(all, page.Resolve(int64(len(all)))), int64(len(all)), nil
}

// ── Student ──

type mockStudentRepo struct{ db *mockDB }

func (m *mockStudentRepo) Create(_ context.Context, st *model.Student) error {
	st.ID = m.db.id()
	m.db.students[st.ID] = st
	return nil
}

func (m *mockStudentRepo) Update(_ context.Context, st *model.Student, _ ...string) error {
	if _, ok := m.db.students[st.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.db.students[st.ID] = st
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id uint64) (*model.Student, error) {
	if s, ok := m.db.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	for _, s := range m.db.students {
		if s.UserID != nil && *s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// studentVisible 与 SQL 范围一致：机构需在本机构有报名记录
func (m *mockStudentRepo) studentVisible(st *model.Student, scope repository.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.AcademyID != 0:
		for _, e := range m.db.enrollments {
			if e.StudentID != st.ID {
				continue
			}
			if b, ok := m.db.batches[e.BatchID]; ok {
				if c, ok := m.db.courses[b.CourseID]; ok && c.AcademyID == scope.AcademyID {
					return true
				}
			}
		}
		return false
	case scope.StudentID != 0:
		return st.ID == scope.StudentID
	default:
		return false
	}
}

// withAccount 填充关联账号启用状态
func (m *mockStudentRepo) withAccount(st *model.Student) model.Student {
	out := *st
	out.AccountActive = nil
	if st.UserID != nil {
		if u, ok := m.db.users[*st.UserID]; ok {
			active := u.IsActive
			out.AccountActive = &active
		}
	}
	return out
}

func (m *mockStudentRepo) GetVisible(_ context.Context, id uint64, scope repository.Scope) (*model.Student, error) {
	st, ok := m.db.students[id]
	if !ok || !m.studentVisible(st, scope) {
		return nil, gorm.ErrRecordNotFound
	}
	out := m.withAccount(st)
	return &out, nil
}

func (m *mockStudentRepo) List(_ context.Context, f repository.StudentFilter, scope repository.Scope, page pagination.Request) ([]model.Student, int64, error) {
	var matched []model.Student
	for _, id := range sortedIDs(m.db.students) {
		st := m.db.students[id]
		if !m.studentVisible(st, scope) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(st.Name+" "+st.Phone+" "+st.Email), strings.ToLower(f.Search)) {
			continue
		}
		if f.BatchID != 0 && !m.enrolledIn(st.ID, f.BatchID) {
			continue
		}
		out := m.withAccount(st)
		active := out.AccountActive == nil || *out.AccountActive
		if f.IsActive != nil && active != *f.IsActive {
			continue
		}
		matched = append(matched, out)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return paginate(matched, page.Resolve(int64(len(matched)))), int64(len(matched)), nil
}

func (m *mockStudentRepo) enrolledIn(studentID, batchID uint64) bool {
	for _, e := range m.db.enrollments {
		if e.StudentID == studentID && e.BatchID == batchID {
			return true
		}
	}
	return false
}

// ── Teacher ──

type mockTeacherRepo struct{ db *mockDB }

func (m *mockTeacherRepo) Create(ctx context.Context, t *model.Teacher) error {
	t.ID = m.db.id()
	for i := range t.Subjects {
		t.Subjects[i].TeacherID = t.ID
		_ = m.db.subjects.Create(ctx, &t.Subjects[i])
	}
	for i := range t.Educations {
		t.Educations[i].TeacherID = t.ID
		_ = m.db.educations.Create(ctx, &t.Educations[i])
	}
	for i := range t.Achievements {
		t.Achievements[i].TeacherID = t.ID
		_ = m.db.achievements.Create(ctx, &t.Achievements[i])
	}
	stored := *t
	stored.Subjects, stored.Educations, stored.Achievements = nil, nil, nil
	m.db.teachers[t.ID] = &stored
	return nil
}

func (m *mockTeacherRepo) GetByID(ctx context.Context, id uint64) (*model.Teacher, error) {
	t, ok := m.db.teachers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *t
	out.Academy = m.db.academies[t.AcademyID]
	out.Subjects, _ = m.db.subjects.ListByParent(ctx, id)
	out.Educations, _ = m.db.educations.ListByParent(ctx, id)
	out.Achievements, _ = m.db.achievements.ListByParent(ctx, id)
	return &out, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, id uint64, updates map[string]interface{}) error {
	t, ok := m.db.teachers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range updates {
		switch k {
		case "full_name":
			t.FullName = v.(string)
		case "title":
			t.Title = v.(string)
		case "is_active":
			t.IsActive = v.(bool)
		case "is_featured":
			t.IsFeatured = v.(bool)
		case "is_available":
			t.IsAvailable = v.(bool)
		case "experience_years":
			t.ExperienceYears = v.(int)
		}
	}
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.db.teachers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.teachers, id)
	return nil
}

func (m *mockTeacherRepo) CountInAcademy(_ context.Context, academyID uint64, ids []uint64) (int64, error) {
	var n int64
	for _, id := range ids {
		if t, ok := m.db.teachers[id]; ok && t.AcademyID == academyID {
			n++
		}
	}
	return n, nil
}

func (m *mockTeacherRepo) List(ctx context.Context, _ repository.TeacherFilter, scope repository.Scope, page pagination.Request) ([]model.Teacher, int64, error) {
	var all []model.Teacher
	for _, id := range sortedIDs(m.db.teachers) {
		if t := m.db.teachers[id]; scope.All || t.AcademyID == scope.AcademyID {
			full, _ := m.GetByID(ctx, id)
			all = append(all, *full)
		}
	}
	return paginate(all, page.Resolve(int64(len(all)))), int64(len(all)), nil
}

// ── 子集合 ──

type mockChildStore[T any] struct {
	db     *mockDB
	items  map[uint64]T
	idOf   func(*T) *uint64
	parent func(*T) uint64
}

func newMockChildStore[T any](db *mockDB, idOf func(*T) *uint64, parent func(*T) uint64) *mockChildStore[T] {
	return &mockChildStore[T]{db: db, items: make(map[uint64]T), idOf: idOf, parent: parent}
}

func (s *mockChildStore[T]) ListByParent(_ context.Context, parentID uint64) ([]T, error) {
	var out []T
	for _, id := range sortedIDs(s.items) {
		item := s.items[id]
		if s.parent(&item) == parentID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *mockChildStore[T]) Create(_ context.Context, item *T) error {
	*s.idOf(item) = s.db.id()
	s.items[*s.idOf(item)] = *item
	return nil
}

func (s *mockChildStore[T]) Update(_ context.Context, item *T) error {
	id := *s.idOf(item)
	if _, ok := s.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.items[id] = *item
	return nil
}

func (s *mockChildStore[T]) DeleteByIDs(_ context.Context, parentID uint64, ids []uint64) (int64, error) {
	var n int64
	for _, id := range ids {
		if item, ok := s.items[id]; ok && s.parent(&item) == parentID {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

// ── Review ──

type mockReviewRepo struct{ db *mockDB }

func (m *mockReviewRepo) CreateAcademyReview(_ context.Context, r *model.AcademyReview) error {
	r.ID = m.db.id()
	r.CreatedAt = time.Now()
	stored := *r
	m.db.academyReviews[r.ID] = &stored
	return nil
}

func (m *mockReviewRepo) CreateTeacherReview(_ context.Context, r *model.TeacherReview) error {
	for _, other := range m.db.teacherReviews {
		if other.TeacherID == r.TeacherID && other.StudentID != nil && r.StudentID != nil && *other.StudentID == *r.StudentID {
			return uniqueViolation(constraintTeacherReview)
		}
	}
	r.ID = m.db.id()
	r.CreatedAt = time.Now()
	stored := *r
	m.db.teacherReviews[r.ID] = &stored
	return nil
}

func (m *mockReviewRepo) TeacherReviewExists(_ context.Context, teacherID, studentID uint64) (bool, error) {
	for _, r := range m.db.teacherReviews {
		if r.TeacherID == teacherID && r.StudentID != nil && *r.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReviewRepo) GetAcademyReview(_ context.Context, id uint64) (*model.AcademyReview, error) {
	if r, ok := m.db.academyReviews[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReviewRepo) GetTeacherReview(_ context.Context, id uint64) (*model.TeacherReview, error) {
	if r, ok := m.db.teacherReviews[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func applyReviewFlags(updates map[string]interface{}, approved, active *bool) {
	if v, ok := updates["is_approved"]; ok {
		*approved = v.(bool)
	}
	if v, ok := updates["is_active"]; ok {
		*active = v.(bool)
	}
}

func (m *mockReviewRepo) UpdateAcademyReview(_ context.Context, id uint64, updates map[string]interface{}) error {
	if r, ok := m.db.academyReviews[id]; ok {
		applyReviewFlags(updates, &r.IsApproved, &r.IsActive)
	}
	return nil
}

func (m *mockReviewRepo) UpdateTeacherReview(_ context.Context, id uint64, updates map[string]interface{}) error {
	if r, ok := m.db.teacherReviews[id]; ok {
		applyReviewFlags(updates, &r.IsApproved, &r.IsActive)
	}
	return nil
}

// ListPublicAcademyReviews 新→旧，以 id 倒序近似
func (m *mockReviewRepo) ListPublicAcademyReviews(_ context.Context, academyID uint64, limit int) ([]model.AcademyReview, error) {
	ids := sortedIDs(m.db.academyReviews)
	var out []model.AcademyReview
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		if r := m.db.academyReviews[ids[i]]; r.AcademyID == academyID && r.IsPublic() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) ListPublicTeacherReviews(_ context.Context, teacherID uint64, limit int) ([]model.TeacherReview, error) {
	ids := sortedIDs(m.db.teacherReviews)
	var out []model.TeacherReview
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		if r := m.db.teacherReviews[ids[i]]; r.TeacherID == teacherID && r.IsPublic() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) AcademyRatingBuckets(_ context.Context, academyID uint64) ([]repository.RatingBucket, error) {
	var ratings []float64
	for _, r := range m.db.academyReviews {
		if r.AcademyID == academyID && r.IsPublic() {
			ratings = append(ratings, r.Rating)
		}
	}
	return bucketRatings(ratings), nil
}

func (m *mockReviewRepo) TeacherRatingBuckets(_ context.Context, teacherID uint64) ([]repository.RatingBucket, error) {
	var ratings []float64
	for _, r := range m.db.teacherReviews {
		if r.TeacherID == teacherID && r.IsPublic() {
			ratings = append(ratings, r.Rating)
		}
	}
	return bucketRatings(ratings), nil
}

// bucketRatings 与 SQL 分组一致：四舍五入后夹在 1~5
func bucketRatings(ratings []float64) []repository.RatingBucket {
	byStar := map[int]*repository.RatingBucket{}
	for _, r := range ratings {
		star := int(math.Round(r))
		if star < 1 {
			star = 1
		}
		if star > 5 {
			star = 5
		}
		b, ok := byStar[star]
		if !ok {
			b = &repository.RatingBucket{Star: star}
			byStar[star] = b
		}
		b.Count++
		b.Total += r
	}
	var out []repository.RatingBucket
	for star := 1; star <= 5; star++ {
		if b, ok := byStar[star]; ok {
			out = append(out, *b)
		}
	}
	return out
}

// ── Landing ──

type mockLandingRepo struct{ db *mockDB }

func (m *mockLandingRepo) FeaturedAcademies(_ context.Context, limit int) ([]model.Academy, error) {
	var out []model.Academy
	for _, id := range sortedIDs(m.db.academies) {
		if a := m.db.academies[id]; a.IsActive && a.IsFeatured && len(out) < limit {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockLandingRepo) ListAcademies(_ context.Context, _ repository.LandingAcademyFilter, page pagination.Request) ([]model.Academy, int64, error) {
	var all []model.Academy
	for _, id := range sortedIDs(m.db.academies) {
		if a := m.db.academies[id]; a.IsActive {
			all = append(all, *a)
		}
	}
	return paginate(all, page.Resolve(int64(len(all)))), int64(len(all)), nil
}

func (m *mockLandingRepo) GetAcademy(_ context.Context, id uint64) (*model.Academy, error) {
	if a, ok := m.db.academies[id]; ok && a.IsActive {
		c := *a
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLandingRepo) FeaturedTeachers(_ context.Context, limit int) ([]model.Teacher, error) {
	var out []model.Teacher
	for _, id := range sortedIDs(m.db.teachers) {
		if t := m.db.teachers[id]; t.IsActive && t.IsFeatured && len(out) < limit {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockLandingRepo) ListTeachers(_ context.Context, _ repository.LandingTeacherFilter, page pagination.Request) ([]model.Teacher, int64, error) {
	var all []model.Teacher
	for _, id := range sortedIDs(m.db.teachers) {
		if t := m.db.teachers[id]; t.IsActive {
			all = append(all, *t)
		}
	}
	return paginate(all, page.Resolve(int64(len(all)))), int64(len(all)), nil
}

func (m *mockLandingRepo) GetTeacher(ctx context.Context, id uint64) (*model.Teacher, error) {
	if t, ok := m.db.teachers[id]; !ok || !t.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return (&mockTeacherRepo{m.db}).GetByID(ctx, id)
}

func (m *mockLandingRepo) ProgramNames(_ context.Context) ([]string, error) {
	m.db.programLoads++
	return m.db.programNames, nil
}

func (m *mockLandingRepo) SubjectNames(_ context.Context) ([]string, error) {
	m.db.subjectLoads++
	return m.db.subjectNames, nil
}

// ── SMS ──

type mockSMSRepo struct{ db *mockDB }

func (m *mockSMSRepo) Create(_ context.Context, s *model.SMSHistory) error {
	if m.db.smsCreateErr != nil {
		return m.db.smsCreateErr
	}
	s.ID = m.db.id()
	stored := *s
	m.db.sms[s.ID] = &stored
	return nil
}

func (m *mockSMSRepo) GetByID(_ context.Context, id uint64) (*model.SMSHistory, error) {
	if s, ok := m.db.sms[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ClaimNextQueued 跳过 smsLocked 中的记录，模拟 SKIP LOCKED；写回结果时释放
func (m *mockSMSRepo) ClaimNextQueued(_ context.Context) (*model.SMSHistory, error) {
	for _, id := range sortedIDs(m.db.sms) {
		if s := m.db.sms[id]; s.Status == model.SMSStatusQueue && !m.db.smsLocked[id] {
			m.db.smsLocked[id] = true
			c := *s
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSMSRepo) LockQueued(_ context.Context, id uint64) (*model.SMSHistory, error) {
	s, ok := m.db.sms[id]
	if !ok || s.Status != model.SMSStatusQueue || m.db.smsLocked[id] {
		return nil, gorm.ErrRecordNotFound
	}
	m.db.smsLocked[id] = true
	c := *s
	return &c, nil
}

func (m *mockSMSRepo) SaveResult(_ context.Context, s *model.SMSHistory) (bool, error) {
	stored, ok := m.db.sms[s.ID]
	if !ok || stored.Status != model.SMSStatusQueue {
		return false, nil
	}
	*stored = *s
	delete(m.db.smsLocked, s.ID)
	return true, nil
}

func (m *mockSMSRepo) List(_ context.Context, f repository.SMSFilter, page pagination.Request) ([]model.SMSHistory, int64, error) {
	var all []model.SMSHistory
	for _, id := range sortedIDs(m.db.sms) {
		s := m.db.sms[id]
		if (f.Status == "" || s.Status == f.Status) && (f.SMSType == "" || s.SMSType == f.SMSType) {
			all = append(all, *s)
		}
	}
	return paginate(all, page.Resolve(int64(len(all)))), int64(len(all)), nil
}

// ── OTP ──

type mockOTPRepo struct{ db *mockDB }

func (m *mockOTPRepo) Upsert(_ context.Context, otp *model.OTPVerification) error {
	if existing, ok := m.db.otps[otp.PhoneNumber]; ok {
		existing.OTP = otp.OTP
		existing.ExpiresAt = otp.ExpiresAt
		existing.IsVerified = false
		otp.ID = existing.ID
		return nil
	}
	otp.ID = m.db.id()
	stored := *otp
	m.db.otps[otp.PhoneNumber] = &stored
	return nil
}

func (m *mockOTPRepo) GetByPhone(_ context.Context, phone string) (*model.OTPVerification, error) {
	if o, ok := m.db.otps[phone]; ok {
		c := *o
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOTPRepo) LockByPhone(ctx context.Context, phone string) (*model.OTPVerification, error) {
	return m.GetByPhone(ctx, phone)
}

func (m *mockOTPRepo) MarkVerified(_ context.Context, id uint64) error {
	for _, o := range m.db.otps {
		if o.ID == id {
			o.IsVerified = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockOTPRepo) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for phone, o := range m.db.otps {
		if !o.IsVerified && o.ExpiresAt.Before(before) {
			delete(m.db.otps, phone)
			n++
		}
	}
	return n, nil
}

// ── Contact ──

type mockContactRepo struct{ db *mockDB }

func (m *mockContactRepo) Create(_ context.Context, msg *model.ContactMessage) error {
	msg.ID = m.db.id()
	m.db.contacts = append(m.db.contacts, *msg)
	return nil
}

// ── 基础设施替身 ──

// fakeSender 按顺序返回预设结果，用尽后重复最后一个
type fakeSender struct {
	results []sms.Result
	calls   []string
}

func (f *fakeSender) Send(_ context.Context, phone, _ string) sms.Result {
	f.calls = append(f.calls, phone)
	if len(f.results) == 0 {
		return sms.Result{Delivered: true}
	}
	idx := len(f.calls) - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx]
}

// memoryCache 以 JSON 序列化模拟 Redis 缓存
type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// countingLimiter 按 key 计数的固定窗口限流
type countingLimiter struct {
	counts map[string]int
}

func (l *countingLimiter) CheckRateLimit(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if l.counts == nil {
		l.counts = make(map[string]int)
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

// memoryBlacklist Token 黑名单替身
type memoryBlacklist struct {
	ids map[string]time.Duration
}

func (b *memoryBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if b.ids == nil {
		b.ids = make(map[string]time.Duration)
	}
	b.ids[jti] = ttl
	return nil
}

func (b *memoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.ids[jti]
	return ok, nil
}

// ── 测试数据 ──

var adminPrincipal = Principal{UserID: "admin-001", Role: model.RoleAdmin}

func testDate(s string) datatypes.Date {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return datatypes.Date(t)
}

// seedAcademy 写入机构及其账号，返回机构与对应主体
func (db *mockDB) seedAcademy(name string) (*model.Academy, Principal) {
	id := db.id()
	user := &model.User{
		UserID:   fmt.Sprintf("academy-user-%d", id),
		Username: fmt.Sprintf("0171%07d", id),
		Phone:    fmt.Sprintf("0171%07d", id),
		Role:     model.RoleAcademy,
		IsActive: true,
	}
	db.users[user.UserID] = user
	a := &model.Academy{ID: id, UserID: user.UserID, Name: name, IsActive: true}
	a.Version = 1
	db.academies[id] = a
	return a, Principal{UserID: user.UserID, Role: model.RoleAcademy}
}

func (db *mockDB) seedCourse(academyID uint64, name string) *model.Course {
	c := &model.Course{ID: db.id(), AcademyID: academyID, Name: name, CourseType: model.CourseTypePhysics}
	db.courses[c.ID] = c
	return c
}

func (db *mockDB) seedBatch(courseID uint64, name string) *model.Batch {
	b := &model.Batch{ID: db.id(), CourseID: courseID, Name: name, StartDate: testDate("2026-01-01"), IsActive: true}
	db.batches[b.ID] = b
	return b
}

// seedStudent 写入学员及其账号，返回学员与对应主体
func (db *mockDB) seedStudent(name string) (*model.Student, Principal) {
	id := db.id()
	userID := fmt.Sprintf("student-user-%d", id)
	db.users[userID] = &model.User{UserID: userID, Username: userID, Role: model.RoleStudent, IsActive: true}
	s := &model.Student{ID: id, UserID: &userID, Name: name}
	db.students[id] = s
	return s, Principal{UserID: userID, Role: model.RoleStudent}
}

func (db *mockDB) seedTeacher(academyID uint64, name string) *model.Teacher {
	t := &model.Teacher{ID: db.id(), AcademyID: academyID, FullName: name, IsActive: true, IsAvailable: true}
	db.teachers[t.ID] = t
	return t
}

func (db *mockDB) seedEnrollment(batchID, studentID uint64) *model.BatchEnrollment {
	e := &model.BatchEnrollment{ID: db.id(), BatchID: batchID, StudentID: studentID, IsActive: true}
	db.enrollments[e.ID] = e
	return e
}
