package model

// Academy 机构 — 对应 academies
// 与 User 一对一；名称忽略大小写唯一（uq_academies_name_ci）
type Academy struct {
	ID               uint64  `gorm:"primaryKey"                           json:"id"`
	UserID           string  `gorm:"type:uuid;not null;uniqueIndex"       json:"user_id"`
	Name             string  `gorm:"type:varchar(255);not null"           json:"name"`
	Description      string  `gorm:"type:text;not null"                   json:"description"`
	ShortDescription string  `gorm:"type:varchar(500);not null"           json:"short_description"`
	Logo             string  `gorm:"type:varchar(500);not null"           json:"logo"`
	CoverImage       string  `gorm:"type:varchar(500);not null"           json:"cover_image"`
	Website          string  `gorm:"type:varchar(255);not null"           json:"website"`
	ContactNumber    string  `gorm:"type:varchar(20);not null"            json:"contact_number"`
	Email            string  `gorm:"type:varchar(255);not null"           json:"email"`
	EstablishedYear  *int    `                                            json:"established_year"`
	DivisionID       *uint64 `gorm:"index"                                json:"division_id"`
	DistrictID       *uint64 `gorm:"index"                                json:"district_id"`
	UpazilaID        *uint64 `                                            json:"upazila_id"`
	AreaOrUnion      string  `gorm:"type:varchar(255);not null"           json:"area_or_union"`
	StreetAddress    string  `gorm:"type:varchar(255);not null"           json:"street_address"`
	PostalCode       string  `gorm:"type:varchar(20);not null"            json:"postal_code"`
	IsFeatured       bool    `gorm:"not null;default:false"               json:"is_featured"`
	FeaturedSubject  string  `gorm:"type:varchar(50);not null"            json:"featured_subject"`
	IsActive         bool    `gorm:"not null"                             json:"is_active"`
	VersionedModel

	// 关联
	User       *User             `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Division   *Division         `gorm:"foreignKey:DivisionID"               json:"division,omitempty"`
	District   *District         `gorm:"foreignKey:DistrictID"               json:"district,omitempty"`
	Upazila    *Upazila          `gorm:"foreignKey:UpazilaID"                json:"upazila,omitempty"`
	Gallery    []AcademyGallery  `gorm:"foreignKey:AcademyID"                json:"gallery,omitempty"`
	Facilities []AcademyFacility `gorm:"foreignKey:AcademyID"                json:"facilities,omitempty"`
	Programs   []AcademyProgram  `gorm:"foreignKey:AcademyID"                json:"programs,omitempty"`
	Reviews    []AcademyReview   `gorm:"foreignKey:AcademyID"                json:"reviews,omitempty"`
	Courses    []Course          `gorm:"foreignKey:AcademyID"                json:"courses,omitempty"`
	Teachers   []Teacher         `gorm:"foreignKey:AcademyID"                json:"teachers,omitempty"`

	// 只读派生列（列表查询中由子查询填充）
	AvgRating   *float64 `gorm:"->;column:avg_rating"   json:"-"`
	ReviewCount int64    `gorm:"->;column:review_count" json:"-"`
}

// TableName 指定表名
func (Academy) TableName() string { return "academies" }

// AcademyGallery 机构相册
type AcademyGallery struct {
	ID          uint64 `gorm:"primaryKey"                 json:"id"`
	AcademyID   uint64 `gorm:"not null;index"             json:"academy_id"`
	ImageURL    string `gorm:"type:varchar(500);not null" json:"image_url"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text;not null"         json:"description"`
	Order       int    `gorm:"column:sort_order;not null" json:"order"`
	IsActive    bool   `gorm:"not null"                   json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (AcademyGallery) TableName() string { return "academy_galleries" }

// AcademyFacility 机构设施，(academy_id, name) 唯一
type AcademyFacility struct {
	ID          uint64 `gorm:"primaryKey"                 json:"id"`
	AcademyID   uint64 `gorm:"not null;index"             json:"academy_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text;not null"         json:"description"`
	IsActive    bool   `gorm:"not null"                   json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (AcademyFacility) TableName() string { return "academy_facilities" }

// AcademyProgram 机构项目，(academy_id, name) 唯一
type AcademyProgram struct {
	ID          uint64 `gorm:"primaryKey"                 json:"id"`
	AcademyID   uint64 `gorm:"not null;index"             json:"academy_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text;not null"         json:"description"`
	IsActive    bool   `gorm:"not null"                   json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (AcademyProgram) TableName() string { return "academy_programs" }

// AcademyReview 机构评价
// 仅 is_approved 且 is_active 的评价计入公开评分
type AcademyReview struct {
	ID           uint64  `gorm:"primaryKey"                      json:"id"`
	AcademyID    uint64  `gorm:"not null;index"                  json:"academy_id"`
	StudentID    *uint64 `                                       json:"student_id"`
	ReviewerName string  `gorm:"type:varchar(255);not null"      json:"reviewer_name"`
	Rating       float64 `gorm:"type:numeric(2,1);not null"      json:"rating"`
	Body         string  `gorm:"type:text;not null"              json:"body"`
	IsVerified   bool    `gorm:"not null;default:false"          json:"is_verified"`
	IsApproved   bool    `gorm:"not null;default:false"          json:"is_approved"`
	IsActive     bool    `gorm:"not null"                        json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (AcademyReview) TableName() string { return "academy_reviews" }

// IsPublic 是否计入公开评分
func (r *AcademyReview) IsPublic() bool { return r.IsApproved && r.IsActive }
