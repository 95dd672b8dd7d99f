package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rajib3777/academia-sub001/internal/model"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User                UserRepository
	Geo                 GeoRepository
	Academy             AcademyRepository
	Course              CourseRepository
	Batch               BatchRepository
	Enrollment          EnrollmentRepository
	Student             StudentRepository
	Teacher             TeacherRepository
	TeacherSubjects     ChildStore[model.TeacherSubject]
	TeacherEducations   ChildStore[model.TeacherEducation]
	TeacherAchievements ChildStore[model.TeacherAchievement]
	Review              ReviewRepository
	Landing             LandingRepository
	SMS                 SMSRepository
	OTP                 OTPRepository
	Contact             ContactRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                  db,
		User:                NewUserRepo(db),
		Geo:                 NewGeoRepo(db),
		Academy:             NewAcademyRepo(db),
		Course:              NewCourseRepo(db),
		Batch:               NewBatchRepo(db),
		Enrollment:          NewEnrollmentRepo(db),
		Student:             NewStudentRepo(db),
		Teacher:             NewTeacherRepo(db),
		TeacherSubjects:     NewChildStore[model.TeacherSubject](db, "teacher_id"),
		TeacherEducations:   NewChildStore[model.TeacherEducation](db, "teacher_id"),
		TeacherAchievements: NewChildStore[model.TeacherAchievement](db, "teacher_id"),
		Review:              NewReviewRepo(db),
		Landing:             NewLandingRepo(db),
		SMS:                 NewSMSRepo(db),
		OTP:                 NewOTPRepo(db),
		Contact:             NewContactRepo(db),
	}
}

// BeginTx 开启事务；db 为空（单元测试 mock）时返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// InTx 在单个事务内执行 fn，fn 返回错误或 panic 时回滚
func (r *Repository) InTx(ctx context.Context, fn func(txRepo *Repository) error) (err error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("提交事务失败: %w", err)
		}
	}
	return nil
}

// ── 角色可见范围 ──

// Scope 列表查询的可见范围，在计数与分页之前作为 AND 条件生效
// 零值不匹配任何记录
type Scope struct {
	All       bool
	AcademyID uint64
	StudentID uint64
}

// ScopeAll 不受限
var ScopeAll = Scope{All: true}

// IsNone 是否不匹配任何记录
func (s Scope) IsNone() bool {
	return !s.All && s.AcademyID == 0 && s.StudentID == 0
}

// scopeColumns 各实体在不同范围下使用的过滤列
type scopeColumns struct {
	academy string // 如 "courses.academy_id"
	student string // 返回可见 id 的子查询，参数为 student_id
}

func applyScope(q *gorm.DB, s Scope, cols scopeColumns) *gorm.DB {
	switch {
	case s.All:
		return q
	case s.AcademyID != 0:
		return q.Where(cols.academy+" = ?", s.AcademyID)
	case s.StudentID != 0 && cols.student != "":
		return q.Where(cols.student, s.StudentID)
	default:
		return q.Where("1 = 0")
	}
}

// ── 查询辅助 ──

// likePattern 构造 ILIKE 模式并转义通配符
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// searchAny 多字段 OR 模糊搜索
func searchAny(q *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := likePattern(term)
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		clauses[i] = c + " ILIKE ?"
		args[i] = pattern
	}
	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// orderBy 解析逗号分隔的排序参数，仅保留白名单字段；'-' 前缀表示降序
// 全部无效时使用 fallback；总是追加 id 作为最终排序键
func orderBy(q *gorm.DB, ordering string, allowed map[string]string, fallback string, idColumn string) *gorm.DB {
	var parts []string
	for _, f := range strings.Split(ordering, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		dir := "ASC"
		if strings.HasPrefix(f, "-") {
			dir = "DESC"
			f = f[1:]
		}
		if col, ok := allowed[f]; ok {
			parts = append(parts, col+" "+dir)
		}
	}
	if len(parts) == 0 && fallback != "" {
		return orderBy(q, fallback, allowed, "", idColumn)
	}
	for _, p := range parts {
		q = q.Order(p)
	}
	return q.Order(idColumn + " ASC")
}
