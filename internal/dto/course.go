package dto

// ── 课程模块 DTO ──

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	PaginationRequest
	Search     string   `form:"search"      binding:"omitempty,max=100"`
	AcademyID  uint64   `form:"academy_id"`
	CourseType string   `form:"course_type" binding:"omitempty,coursetype"`
	MinFee     *float64 `form:"min_fee"     binding:"omitempty,min=0"`
	MaxFee     *float64 `form:"max_fee"     binding:"omitempty,min=0"`
	Ordering   string   `form:"ordering"`
}

// CourseDropdownRequest 课程下拉查询参数
type CourseDropdownRequest struct {
	Search    string `form:"search"     binding:"omitempty,max=100"`
	AcademyID uint64 `form:"academy_id"`
}

// CourseBatchInput 课程内嵌班次；带 id 为更新，不带为新建
type CourseBatchInput struct {
	ID          *uint64 `json:"id"`
	Name        string  `json:"name"        binding:"required,max=100"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"  binding:"required,datetime=2006-01-02"`
	EndDate     *string `json:"end_date"    binding:"omitempty,datetime=2006-01-02"`
	IsActive    *bool   `json:"is_active"`
}

// CreateCourseRequest 创建课程（可附带班次）
type CreateCourseRequest struct {
	AcademyID   *uint64            `json:"academy_id"`
	Name        string             `json:"name"        binding:"required,max=255"`
	Description string             `json:"description"`
	Fee         float64            `json:"fee"         binding:"min=0"`
	CourseType  string             `json:"course_type" binding:"required,coursetype"`
	Batches     []CourseBatchInput `json:"batches"     binding:"omitempty,dive"`
}

// UpdateCourseRequest 更新课程；batches 为 nil 时不改动班次，
// 非 nil（含空数组）时按声明式同步
type UpdateCourseRequest struct {
	Name        *string            `json:"name"        binding:"omitempty,min=1,max=255"`
	Description *string            `json:"description"`
	Fee         *float64           `json:"fee"         binding:"omitempty,min=0"`
	CourseType  *string            `json:"course_type" binding:"omitempty,coursetype"`
	Batches     []CourseBatchInput `json:"batches"     binding:"omitempty,dive"`
}

// CourseResponse 课程响应
type CourseResponse struct {
	ID              uint64          `json:"id"`
	AcademyID       uint64          `json:"academy_id"`
	AcademyName     string          `json:"academy_name"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Fee             float64         `json:"fee"`
	CourseType      string          `json:"course_type"`
	CourseTypeLabel string          `json:"course_type_display"`
	Batches         []BatchResponse `json:"batches"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

// ── 班次模块 DTO ──

// BatchListRequest 班次列表查询参数
type BatchListRequest struct {
	PaginationRequest
	Search        string `form:"search"          binding:"omitempty,max=100"`
	AcademyID     uint64 `form:"academy_id"`
	CourseID      uint64 `form:"course_id"`
	CourseType    string `form:"course_type"     binding:"omitempty,coursetype"`
	Name          string `form:"name"            binding:"omitempty,max=100"`
	IsActive      *bool  `form:"is_active"`
	StartDateFrom string `form:"start_date_from" binding:"omitempty,datetime=2006-01-02"`
	StartDateTo   string `form:"start_date_to"   binding:"omitempty,datetime=2006-01-02"`
	EndDateFrom   string `form:"end_date_from"   binding:"omitempty,datetime=2006-01-02"`
	EndDateTo     string `form:"end_date_to"     binding:"omitempty,datetime=2006-01-02"`
	HasStudents   *bool  `form:"has_students"`
	Ordering      string `form:"ordering"`
}

// CreateBatchRequest 创建班次
type CreateBatchRequest struct {
	CourseID    uint64   `json:"course_id"   binding:"required"`
	Name        string   `json:"name"        binding:"required,max=100"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date"  binding:"required,datetime=2006-01-02"`
	EndDate     *string  `json:"end_date"    binding:"omitempty,datetime=2006-01-02"`
	IsActive    *bool    `json:"is_active"`
	TeacherIDs  []uint64 `json:"teacher_ids"`
}

// UpdateBatchRequest 更新班次；teacher_ids 为 nil 时不改动教师
type UpdateBatchRequest struct {
	Name        *string  `json:"name"        binding:"omitempty,min=1,max=100"`
	Description *string  `json:"description"`
	StartDate   *string  `json:"start_date"  binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string  `json:"end_date"    binding:"omitempty,datetime=2006-01-02"`
	IsActive    *bool    `json:"is_active"`
	TeacherIDs  []uint64 `json:"teacher_ids"`
}

// TeacherBrief 教师简要信息
type TeacherBrief struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
}

// BatchResponse 班次响应
type BatchResponse struct {
	ID           uint64         `json:"id"`
	CourseID     uint64         `json:"course_id"`
	CourseName   string         `json:"course_name,omitempty"`
	AcademyName  string         `json:"academy_name,omitempty"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	StartDate    string         `json:"start_date"`
	EndDate      *string        `json:"end_date"`
	IsActive     bool           `json:"is_active"`
	Status       string         `json:"status"`
	StudentCount int64          `json:"student_count"`
	Teachers     []TeacherBrief `json:"teachers"`
	CreatedAt    string         `json:"created_at"`
}

// ── 报名模块 DTO ──

// EnrollmentListRequest 报名列表查询参数
type EnrollmentListRequest struct {
	PaginationRequest
	BatchID   uint64 `form:"batch_id"`
	StudentID uint64 `form:"student_id"`
	IsActive  *bool  `form:"is_active"`
}

// CreateEnrollmentRequest 创建报名
type CreateEnrollmentRequest struct {
	BatchID              uint64   `json:"batch_id"              binding:"required"`
	StudentID            uint64   `json:"student_id"            binding:"required"`
	EnrollmentDate       *string  `json:"enrollment_date"       binding:"omitempty,datetime=2006-01-02"`
	AttendancePercentage *float64 `json:"attendance_percentage" binding:"omitempty,min=0,max=100"`
	Remarks              string   `json:"remarks"`
}

// UpdateEnrollmentRequest 更新报名
type UpdateEnrollmentRequest struct {
	IsActive             *bool    `json:"is_active"`
	CompletionDate       *string  `json:"completion_date"       binding:"omitempty,datetime=2006-01-02"`
	AttendancePercentage *float64 `json:"attendance_percentage" binding:"omitempty,min=0,max=100"`
	Remarks              *string  `json:"remarks"`
}

// EnrollmentResponse 报名响应
type EnrollmentResponse struct {
	ID                   uint64  `json:"id"`
	BatchID              uint64  `json:"batch_id"`
	BatchName            string  `json:"batch_name"`
	CourseName           string  `json:"course_name"`
	StudentID            uint64  `json:"student_id"`
	StudentName          string  `json:"student_name"`
	EnrollmentDate       string  `json:"enrollment_date"`
	IsActive             bool    `json:"is_active"`
	CompletionDate       *string `json:"completion_date"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	Remarks              string  `json:"remarks"`
}
