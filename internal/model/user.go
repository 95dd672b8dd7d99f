package model

// 角色
const (
	RoleAdmin   = "admin"
	RoleAcademy = "academy"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleStaff   = "staff"
)

// User 身份主体 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"         json:"username"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone        string `gorm:"type:varchar(20);not null"                      json:"phone"`
	FirstName    string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName     string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null"                      json:"role"`
	IsActive     bool   `gorm:"not null"                                       json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 姓名拼接
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
