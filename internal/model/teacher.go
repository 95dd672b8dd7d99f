package model

// Teacher 教师，隶属一个机构
type Teacher struct {
	ID              uint64 `gorm:"primaryKey"                 json:"id"`
	AcademyID       uint64 `gorm:"not null;index"             json:"academy_id"`
	FullName        string `gorm:"type:varchar(255);not null" json:"full_name"`
	Title           string `gorm:"type:varchar(255);not null" json:"title"`
	Bio             string `gorm:"type:text;not null"         json:"bio"`
	ExperienceYears int    `gorm:"not null;default:0"         json:"experience_years"`
	Location        string `gorm:"type:varchar(255);not null" json:"location"`
	LinkedinURL     string `gorm:"type:varchar(500);not null" json:"linkedin_url"`
	Email           string `gorm:"type:varchar(255);not null" json:"email"`
	Phone           string `gorm:"type:varchar(20);not null"  json:"phone"`
	ProfilePicture  string `gorm:"type:varchar(500);not null" json:"profile_picture"`
	IsFeatured      bool   `gorm:"not null;default:false"     json:"is_featured"`
	IsAvailable     bool   `gorm:"not null"                   json:"is_available"`
	IsActive        bool   `gorm:"not null"                   json:"is_active"`
	BaseModel

	Academy      *Academy             `gorm:"foreignKey:AcademyID" json:"academy,omitempty"`
	Subjects     []TeacherSubject     `gorm:"foreignKey:TeacherID" json:"subjects,omitempty"`
	Educations   []TeacherEducation   `gorm:"foreignKey:TeacherID" json:"educations,omitempty"`
	Achievements []TeacherAchievement `gorm:"foreignKey:TeacherID" json:"achievements,omitempty"`
	Reviews      []TeacherReview      `gorm:"foreignKey:TeacherID" json:"reviews,omitempty"`

	AvgRating   *float64 `gorm:"->;column:avg_rating"   json:"-"`
	ReviewCount int64    `gorm:"->;column:review_count" json:"-"`
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// TeacherSubject 教师科目，(teacher_id, subject) 唯一
type TeacherSubject struct {
	ID        uint64 `gorm:"primaryKey"                json:"id"`
	TeacherID uint64 `gorm:"not null;index"            json:"teacher_id"`
	Subject   string `gorm:"type:varchar(50);not null" json:"subject"`
	IsPrimary bool   `gorm:"not null;default:false"    json:"is_primary"`
	BaseModel
}

// TableName 指定表名
func (TeacherSubject) TableName() string { return "teacher_subjects" }

// TeacherEducation 教育经历
type TeacherEducation struct {
	ID          uint64 `gorm:"primaryKey"                 json:"id"`
	TeacherID   uint64 `gorm:"not null;index"             json:"teacher_id"`
	Degree      string `gorm:"type:varchar(255);not null" json:"degree"`
	Institution string `gorm:"type:varchar(255);not null" json:"institution"`
	Year        *int   `                                  json:"year"`
	Order       int    `gorm:"column:sort_order;not null" json:"order"`
	BaseModel
}

// TableName 指定表名
func (TeacherEducation) TableName() string { return "teacher_educations" }

// TeacherAchievement 荣誉成就
type TeacherAchievement struct {
	ID          uint64 `gorm:"primaryKey"                 json:"id"`
	TeacherID   uint64 `gorm:"not null;index"             json:"teacher_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text;not null"         json:"description"`
	Year        *int   `                                  json:"year"`
	BaseModel
}

// TableName 指定表名
func (TeacherAchievement) TableName() string { return "teacher_achievements" }

// TeacherReview 教师评价，(teacher_id, student_id) 唯一
type TeacherReview struct {
	ID           uint64  `gorm:"primaryKey"                 json:"id"`
	TeacherID    uint64  `gorm:"not null;index"             json:"teacher_id"`
	StudentID    *uint64 `                                  json:"student_id"`
	ReviewerName string  `gorm:"type:varchar(255);not null" json:"reviewer_name"`
	Rating       float64 `gorm:"type:numeric(2,1);not null" json:"rating"`
	Body         string  `gorm:"type:text;not null"         json:"body"`
	IsVerified   bool    `gorm:"not null;default:false"     json:"is_verified"`
	IsApproved   bool    `gorm:"not null;default:false"     json:"is_approved"`
	IsActive     bool    `gorm:"not null"                   json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (TeacherReview) TableName() string { return "teacher_reviews" }

// IsPublic 是否计入公开评分
func (r *TeacherReview) IsPublic() bool { return r.IsApproved && r.IsActive }
