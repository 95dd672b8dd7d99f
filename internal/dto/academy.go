package dto

// ── 机构模块 DTO ──

// AcademyListRequest 管理端机构列表查询参数
type AcademyListRequest struct {
	PaginationRequest
	Search          string `form:"search"           binding:"omitempty,max=100"`
	Division        uint64 `form:"division"`
	District        uint64 `form:"district"`
	Upazila         uint64 `form:"upazila"`
	IsActive        *bool  `form:"is_active"`
	EstablishedYear *int   `form:"established_year" binding:"omitempty,min=1800,max=2100"`
	Ordering        string `form:"ordering"`
}

// AcademyUserInput 创建机构时的账号信息；用户名取手机号
type AcademyUserInput struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name"  binding:"omitempty,max=100"`
	Email     string `json:"email"      binding:"omitempty,email"`
	Phone     string `json:"phone"      binding:"required,bdphone"`
}

// CreateAcademyRequest 创建机构请求
type CreateAcademyRequest struct {
	User             AcademyUserInput `json:"user"`
	Name             string           `json:"name"              binding:"required,max=255"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description" binding:"omitempty,max=500"`
	Logo             string           `json:"logo"              binding:"omitempty,url"`
	CoverImage       string           `json:"cover_image"       binding:"omitempty,url"`
	Website          string           `json:"website"           binding:"omitempty,url"`
	ContactNumber    string           `json:"contact_number"    binding:"required,bdphone"`
	Email            string           `json:"email"             binding:"omitempty,email"`
	EstablishedYear  *int             `json:"established_year"  binding:"omitempty,min=1800,max=2100"`
	DivisionID       *uint64          `json:"division"`
	DistrictID       *uint64          `json:"district"`
	UpazilaID        *uint64          `json:"upazila"`
	AreaOrUnion      string           `json:"area_or_union"     binding:"omitempty,max=255"`
	StreetAddress    string           `json:"street_address"    binding:"omitempty,max=255"`
	PostalCode       string           `json:"postal_code"       binding:"omitempty,max=20"`
	IsFeatured       bool             `json:"is_featured"`
	FeaturedSubject  string           `json:"featured_subject"  binding:"omitempty,max=50"`
	IsActive         *bool            `json:"is_active"`
}

// UpdateAcademyUserInput 更新机构账号信息，仅非空字段生效
type UpdateAcademyUserInput struct {
	Username  *string `json:"username"   binding:"omitempty,min=3,max=150"`
	Email     *string `json:"email"      binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=100"`
	Phone     *string `json:"phone"      binding:"omitempty,bdphone"`
	Password  *string `json:"password"   binding:"omitempty,min=8,max=64"`
}

// UpdateAcademyRequest 更新机构请求，仅非空字段生效
type UpdateAcademyRequest struct {
	Version          *int                    `json:"version"`
	User             *UpdateAcademyUserInput `json:"user"`
	Name             *string                 `json:"name"              binding:"omitempty,min=1,max=255"`
	Description      *string                 `json:"description"`
	ShortDescription *string                 `json:"short_description" binding:"omitempty,max=500"`
	Logo             *string                 `json:"logo"              binding:"omitempty,url"`
	CoverImage       *string                 `json:"cover_image"       binding:"omitempty,url"`
	Website          *string                 `json:"website"           binding:"omitempty,url"`
	ContactNumber    *string                 `json:"contact_number"    binding:"omitempty,bdphone"`
	Email            *string                 `json:"email"             binding:"omitempty,email"`
	EstablishedYear  *int                    `json:"established_year"  binding:"omitempty,min=1800,max=2100"`
	DivisionID       *uint64                 `json:"division"`
	DistrictID       *uint64                 `json:"district"`
	UpazilaID        *uint64                 `json:"upazila"`
	AreaOrUnion      *string                 `json:"area_or_union"     binding:"omitempty,max=255"`
	StreetAddress    *string                 `json:"street_address"    binding:"omitempty,max=255"`
	PostalCode       *string                 `json:"postal_code"       binding:"omitempty,max=20"`
	IsFeatured       *bool                   `json:"is_featured"`
	FeaturedSubject  *string                 `json:"featured_subject"  binding:"omitempty,max=50"`
	IsActive         *bool                   `json:"is_active"`
}

// AcademyResponse 机构响应
type AcademyResponse struct {
	ID               uint64        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"short_description"`
	Logo             string        `json:"logo"`
	CoverImage       string        `json:"cover_image"`
	Website          string        `json:"website"`
	ContactNumber    string        `json:"contact_number"`
	Email            string        `json:"email"`
	EstablishedYear  *int          `json:"established_year"`
	Division         *GeoItem      `json:"division"`
	District         *GeoItem      `json:"district"`
	Upazila          *GeoItem      `json:"upazila"`
	AreaOrUnion      string        `json:"area_or_union"`
	StreetAddress    string        `json:"street_address"`
	PostalCode       string        `json:"postal_code"`
	IsFeatured       bool          `json:"is_featured"`
	FeaturedSubject  string        `json:"featured_subject"`
	IsActive         bool          `json:"is_active"`
	AvgRating        *float64      `json:"avg_rating"`
	ReviewCount      int64         `json:"review_count"`
	Version          int           `json:"version"`
	User             *UserResponse `json:"user,omitempty"`
	CreatedAt        string        `json:"created_at"`
	UpdatedAt        string        `json:"updated_at"`
}
