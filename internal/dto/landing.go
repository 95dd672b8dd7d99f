package dto

// ── 落地页 DTO ──

// FeaturedRequest 推荐列表参数
type FeaturedRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// LandingAcademyListRequest 落地页机构列表查询参数
type LandingAcademyListRequest struct {
	PaginationRequest
	Search    string   `form:"search"     binding:"omitempty,max=100"`
	Program   string   `form:"program"    binding:"omitempty,max=255"`
	Division  uint64   `form:"division"`
	District  uint64   `form:"district"`
	MinRating *float64 `form:"min_rating" binding:"omitempty,min=0,max=5"`
}

// LandingTeacherListRequest 落地页教师列表查询参数
type LandingTeacherListRequest struct {
	PaginationRequest
	Search        string   `form:"search"         binding:"omitempty,max=100"`
	Subject       string   `form:"subject"        binding:"omitempty,max=50"`
	MinExperience *int     `form:"min_experience" binding:"omitempty,min=0"`
	MaxExperience *int     `form:"max_experience" binding:"omitempty,min=0"`
	IsAvailable   *bool    `form:"is_available"`
	MinRating     *float64 `form:"min_rating"     binding:"omitempty,min=0,max=5"`
}

// LandingAcademyCard 机构卡片
type LandingAcademyCard struct {
	ID               uint64   `json:"id"`
	Name             string   `json:"name"`
	ShortDescription string   `json:"short_description"`
	Logo             string   `json:"logo"`
	CoverImage       string   `json:"cover_image"`
	Division         string   `json:"division"`
	District         string   `json:"district"`
	IsFeatured       bool     `json:"is_featured"`
	FeaturedSubject  string   `json:"featured_subject"`
	AvgRating        *float64 `json:"avg_rating"`
	ReviewCount      int64    `json:"review_count"`
	Programs         []string `json:"programs,omitempty"`
}

// GalleryItem 相册图片
type GalleryItem struct {
	ID          uint64 `json:"id"`
	ImageURL    string `json:"image_url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// LandingCourse 机构详情中的课程
type LandingCourse struct {
	ID              uint64          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Fee             float64         `json:"fee"`
	CourseType      string          `json:"course_type"`
	CourseTypeLabel string          `json:"course_type_display"`
	Batches         []BatchResponse `json:"batches"`
}

// LandingAcademyDetail 机构详情
type LandingAcademyDetail struct {
	LandingAcademyCard
	Description     string               `json:"description"`
	Website         string               `json:"website"`
	ContactNumber   string               `json:"contact_number"`
	Email           string               `json:"email"`
	EstablishedYear *int                 `json:"established_year"`
	Upazila         string               `json:"upazila"`
	AreaOrUnion     string               `json:"area_or_union"`
	StreetAddress   string               `json:"street_address"`
	PostalCode      string               `json:"postal_code"`
	TotalStudents   int64                `json:"total_students"`
	Gallery         []GalleryItem        `json:"gallery"`
	Facilities      []NamedItem          `json:"facilities"`
	ProgramList     []NamedItem          `json:"program_list"`
	Courses         []LandingCourse      `json:"courses"`
	Teachers        []LandingTeacherCard `json:"teachers"`
	Reviews         []ReviewResponse     `json:"reviews"`
	Rating          RatingSummary        `json:"rating"`
}

// LandingTeacherCard 教师卡片
type LandingTeacherCard struct {
	ID              uint64   `json:"id"`
	FullName        string   `json:"full_name"`
	Title           string   `json:"title"`
	ProfilePicture  string   `json:"profile_picture"`
	ExperienceYears int      `json:"experience_years"`
	Location        string   `json:"location"`
	IsFeatured      bool     `json:"is_featured"`
	IsAvailable     bool     `json:"is_available"`
	AcademyID       uint64   `json:"academy_id"`
	AcademyName     string   `json:"academy_name"`
	PrimarySubject  string   `json:"primary_subject"`
	Subjects        []string `json:"subjects"`
	AvgRating       *float64 `json:"avg_rating"`
	ReviewCount     int64    `json:"review_count"`
}

// LandingTeacherDetail 教师详情
type LandingTeacherDetail struct {
	LandingTeacherCard
	Bio          string                `json:"bio"`
	LinkedinURL  string                `json:"linkedin_url"`
	Email        string                `json:"email"`
	Phone        string                `json:"phone"`
	Educations   []EducationResponse   `json:"educations"`
	Achievements []AchievementResponse `json:"achievements"`
	Reviews      []ReviewResponse      `json:"reviews"`
	Rating       RatingSummary         `json:"rating"`
}

// ContactRequest 联系表单
type ContactRequest struct {
	Name    string `json:"name"    binding:"required,max=255"`
	Email   string `json:"email"   binding:"required,email"`
	Phone   string `json:"phone"   binding:"required,bdphone"`
	Subject string `json:"subject" binding:"required,max=255"`
	Message string `json:"message" binding:"required,max=5000"`
}
