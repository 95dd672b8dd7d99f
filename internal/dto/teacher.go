package dto

// ── 教师模块 DTO ──

// TeacherListRequest 管理端教师列表查询参数
type TeacherListRequest struct {
	PaginationRequest
	Search      string `form:"search"       binding:"omitempty,max=100"`
	AcademyID   uint64 `form:"academy_id"`
	Subject     string `form:"subject"      binding:"omitempty,max=50"`
	IsActive    *bool  `form:"is_active"`
	IsAvailable *bool  `form:"is_available"`
}

// SubjectInput 教师科目
type SubjectInput struct {
	ID        *uint64 `json:"id"`
	Subject   string  `json:"subject"    binding:"required,max=50"`
	IsPrimary bool    `json:"is_primary"`
}

// EducationInput 教育经历
type EducationInput struct {
	ID          *uint64 `json:"id"`
	Degree      string  `json:"degree"      binding:"required,max=255"`
	Institution string  `json:"institution" binding:"omitempty,max=255"`
	Year        *int    `json:"year"        binding:"omitempty,min=1900,max=2100"`
	Order       int     `json:"order"       binding:"min=0"`
}

// AchievementInput 荣誉成就
type AchievementInput struct {
	ID          *uint64 `json:"id"`
	Title       string  `json:"title"       binding:"required,max=255"`
	Description string  `json:"description"`
	Year        *int    `json:"year"        binding:"omitempty,min=1900,max=2100"`
}

// CreateTeacherRequest 创建教师
type CreateTeacherRequest struct {
	AcademyID       *uint64            `json:"academy_id"`
	FullName        string             `json:"full_name"        binding:"required,max=255"`
	Title           string             `json:"title"            binding:"omitempty,max=255"`
	Bio             string             `json:"bio"`
	ExperienceYears int                `json:"experience_years" binding:"min=0,max=80"`
	Location        string             `json:"location"         binding:"omitempty,max=255"`
	LinkedinURL     string             `json:"linkedin_url"     binding:"omitempty,url"`
	Email           string             `json:"email"            binding:"omitempty,email"`
	Phone           string             `json:"phone"            binding:"omitempty,bdphone"`
	ProfilePicture  string             `json:"profile_picture"  binding:"omitempty,url"`
	IsFeatured      bool               `json:"is_featured"`
	IsAvailable     *bool              `json:"is_available"`
	IsActive        *bool              `json:"is_active"`
	Subjects        []SubjectInput     `json:"subjects"         binding:"omitempty,dive"`
	Educations      []EducationInput   `json:"educations"       binding:"omitempty,dive"`
	Achievements    []AchievementInput `json:"achievements"     binding:"omitempty,dive"`
}

// UpdateTeacherRequest 更新教师；子集合为 nil 时不改动，非 nil 时声明式同步
type UpdateTeacherRequest struct {
	FullName        *string            `json:"full_name"        binding:"omitempty,min=1,max=255"`
	Title           *string            `json:"title"            binding:"omitempty,max=255"`
	Bio             *string            `json:"bio"`
	ExperienceYears *int               `json:"experience_years" binding:"omitempty,min=0,max=80"`
	Location        *string            `json:"location"         binding:"omitempty,max=255"`
	LinkedinURL     *string            `json:"linkedin_url"     binding:"omitempty,url"`
	Email           *string            `json:"email"            binding:"omitempty,email"`
	Phone           *string            `json:"phone"            binding:"omitempty,bdphone"`
	ProfilePicture  *string            `json:"profile_picture"  binding:"omitempty,url"`
	IsFeatured      *bool              `json:"is_featured"`
	IsAvailable     *bool              `json:"is_available"`
	IsActive        *bool              `json:"is_active"`
	Subjects        []SubjectInput     `json:"subjects"         binding:"omitempty,dive"`
	Educations      []EducationInput   `json:"educations"       binding:"omitempty,dive"`
	Achievements    []AchievementInput `json:"achievements"     binding:"omitempty,dive"`
}

// SubjectResponse 科目
type SubjectResponse struct {
	ID        uint64 `json:"id"`
	Subject   string `json:"subject"`
	IsPrimary bool   `json:"is_primary"`
}

// EducationResponse 教育经历
type EducationResponse struct {
	ID          uint64 `json:"id"`
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        *int   `json:"year"`
	Order       int    `json:"order"`
}

// AchievementResponse 荣誉成就
type AchievementResponse struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        *int   `json:"year"`
}

// TeacherResponse 教师响应
type TeacherResponse struct {
	ID              uint64                `json:"id"`
	AcademyID       uint64                `json:"academy_id"`
	AcademyName     string                `json:"academy_name,omitempty"`
	FullName        string                `json:"full_name"`
	Title           string                `json:"title"`
	Bio             string                `json:"bio"`
	ExperienceYears int                   `json:"experience_years"`
	Location        string                `json:"location"`
	LinkedinURL     string                `json:"linkedin_url"`
	Email           string                `json:"email"`
	Phone           string                `json:"phone"`
	ProfilePicture  string                `json:"profile_picture"`
	IsFeatured      bool                  `json:"is_featured"`
	IsAvailable     bool                  `json:"is_available"`
	IsActive        bool                  `json:"is_active"`
	AvgRating       *float64              `json:"avg_rating"`
	ReviewCount     int64                 `json:"review_count"`
	Subjects        []SubjectResponse     `json:"subjects"`
	Educations      []EducationResponse   `json:"educations,omitempty"`
	Achievements    []AchievementResponse `json:"achievements,omitempty"`
	CreatedAt       string                `json:"created_at"`
}
