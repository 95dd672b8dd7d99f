package model

import (
	"time"

	"gorm.io/datatypes"
)

// 课程类型
const (
	CourseTypeBangla      = "bangla"
	CourseTypeEnglish     = "english"
	CourseTypeMathematics = "mathematics"
	CourseTypeBiology     = "biology"
	CourseTypePhysics     = "physics"
	CourseTypeChemistry   = "chemistry"
	CourseTypeICT         = "ict"
)

// CourseTypeLabels 课程类型展示名（有序）
var CourseTypeLabels = []struct {
	Value string
	Label string
}{
	{CourseTypeBangla, "Bangla"},
	{CourseTypeEnglish, "English"},
	{CourseTypeMathematics, "Mathematics"},
	{CourseTypeBiology, "Biology"},
	{CourseTypePhysics, "Physics"},
	{CourseTypeChemistry, "Chemistry"},
	{CourseTypeICT, "Information and Communications Technology"},
}

// CourseTypeValues 课程类型取值列表
func CourseTypeValues() []string {
	out := make([]string, 0, len(CourseTypeLabels))
	for _, l := range CourseTypeLabels {
		out = append(out, l.Value)
	}
	return out
}

// Course 课程，(academy_id, name) 唯一
type Course struct {
	ID          uint64  `gorm:"primaryKey"                 json:"id"`
	AcademyID   uint64  `gorm:"not null;index"             json:"academy_id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description string  `gorm:"type:text;not null"         json:"description"`
	Fee         float64 `gorm:"type:numeric(10,2);not null" json:"fee"`
	CourseType  string  `gorm:"type:varchar(30);not null"  json:"course_type"`
	BaseModel

	Academy *Academy `gorm:"foreignKey:AcademyID" json:"academy,omitempty"`
	Batches []Batch  `gorm:"foreignKey:CourseID"  json:"batches,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// 班次状态（按日期派生）
const (
	BatchStatusUpcoming  = "Upcoming"
	BatchStatusOngoing   = "Ongoing"
	BatchStatusCompleted = "Completed"
)

// Batch 班次，(course_id, name) 唯一
type Batch struct {
	ID          uint64          `gorm:"primaryKey"                 json:"id"`
	CourseID    uint64          `gorm:"not null;index"             json:"course_id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Description string          `gorm:"type:text;not null"         json:"description"`
	StartDate   datatypes.Date  `gorm:"not null"                   json:"start_date"`
	EndDate     *datatypes.Date `                                  json:"end_date"`
	IsActive    bool            `gorm:"not null"                   json:"is_active"`
	BaseModel

	Course   *Course   `gorm:"foreignKey:CourseID"            json:"course,omitempty"`
	Teachers []Teacher `gorm:"many2many:batch_teachers"       json:"teachers,omitempty"`

	// 只读派生列
	StudentCount int64 `gorm:"->;column:student_count" json:"-"`
}

// TableName 指定表名
func (Batch) TableName() string { return "batches" }

// Status 按当前日期计算班次状态
func (b *Batch) Status(now time.Time) string {
	today := truncateDay(now)
	if time.Time(b.StartDate).After(today) {
		return BatchStatusUpcoming
	}
	if b.EndDate != nil && time.Time(*b.EndDate).Before(today) {
		return BatchStatusCompleted
	}
	return BatchStatusOngoing
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Student 学员；机构删除时不受影响
type Student struct {
	ID     uint64  `gorm:"primaryKey"                 json:"id"`
	UserID *string `gorm:"type:uuid;uniqueIndex"      json:"user_id"`
	Name   string  `gorm:"type:varchar(255);not null" json:"name"`
	Phone  string  `gorm:"type:varchar(20);not null"  json:"phone"`
	Email  string  `gorm:"type:varchar(255);not null" json:"email"`
	BaseModel

	// 只读派生列：关联账号的启用状态，无账号时为 NULL
	AccountActive *bool `gorm:"->;column:account_active" json:"-"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// BatchEnrollment 学员报名班次，(batch_id, student_id) 唯一
type BatchEnrollment struct {
	ID                   uint64          `gorm:"primaryKey"                     json:"id"`
	BatchID              uint64          `gorm:"not null;index"                 json:"batch_id"`
	StudentID            uint64          `gorm:"not null;index"                 json:"student_id"`
	EnrollmentDate       datatypes.Date  `gorm:"not null"                       json:"enrollment_date"`
	IsActive             bool            `gorm:"not null"                       json:"is_active"`
	CompletionDate       *datatypes.Date `                                      json:"completion_date"`
	AttendancePercentage float64         `gorm:"type:numeric(5,2);not null"     json:"attendance_percentage"`
	Remarks              string          `gorm:"type:text;not null"             json:"remarks"`
	BaseModel

	Batch   *Batch   `gorm:"foreignKey:BatchID"   json:"batch,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (BatchEnrollment) TableName() string { return "batch_enrollments" }
