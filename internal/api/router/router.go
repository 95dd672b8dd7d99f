package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/config"
	"github.com/rajib3777/academia-sub001/internal/api/handler"
	"github.com/rajib3777/academia-sub001/internal/api/middleware"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/pkg/jwt"
	"github.com/rajib3777/academia-sub001/pkg/redis"
	"github.com/rajib3777/academia-sub001/pkg/validation"
)

// 公开接口的 IP 级限流
const (
	otpIPLimit    = 10
	otpIPWindow   = time.Hour
	loginIPLimit  = 20
	loginIPWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与限流降级关闭
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := validation.Register(
		validation.PhoneRule,
		validation.OneOfRule("coursetype", model.CourseTypeValues()...),
	); err != nil {
		return nil, fmt.Errorf("注册校验规则失败: %w", err)
	}

	var (
		blacklist middleware.Blacklist
		limiter   middleware.Limiter
	)
	if rdb != nil {
		blacklist, limiter = rdb, rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// ── 公开接口 ──
	{
		auth := v1.Group("/auth")
		auth.POST("/login", middleware.RateLimit(limiter, loginIPLimit, loginIPWindow, logger), h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)

		v1.POST("/send-otp", middleware.RateLimit(limiter, otpIPLimit, otpIPWindow, logger), h.OTP.Send)
		v1.POST("/verify-otp", h.OTP.Verify)
		v1.POST("/register", middleware.RateLimit(limiter, loginIPLimit, loginIPWindow, logger), h.User.Register)

		v1.GET("/divisions", h.Geo.Divisions)
		v1.GET("/districts", h.Geo.Districts)
		v1.GET("/upazilas", h.Geo.Upazilas)

		landing := v1.Group("/landing")
		{
			landing.GET("/academies/featured", h.Landing.FeaturedAcademies)
			landing.GET("/academies", h.Landing.ListAcademies)
			landing.GET("/academies/programs", h.Landing.ProgramOptions)
			landing.GET("/academies/:id", h.Landing.AcademyDetail)
			landing.GET("/teachers/featured", h.Landing.FeaturedTeachers)
			landing.GET("/teachers", h.Landing.ListTeachers)
			landing.GET("/teachers/subjects", h.Landing.SubjectOptions)
			landing.GET("/teachers/:id", h.Landing.TeacherDetail)
			landing.POST("/contact-us", h.Landing.SubmitContact)
		}
	}

	// ── 需要认证的接口 ──
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
	{
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.GET("/auth/me", h.Auth.Me)
		authorized.POST("/auth/change-password", h.User.ChangePassword)

		// 账号管理；本人资料修改由 Service 层放行
		users := authorized.Group("/users")
		{
			users.GET("", middleware.RoleAuth(model.RoleAdmin), h.User.ListUsers)
			users.POST("", middleware.RoleAuth(model.RoleAdmin), h.User.CreateUser)
			users.PATCH("/:id", h.User.UpdateUser)
			users.POST("/:id/reset-password", middleware.RoleAuth(model.RoleAdmin), h.User.ResetPassword)
		}

		// 学员档案；机构按报名关系、学员按本人限定范围
		students := authorized.Group("/students")
		{
			students.GET("", middleware.RoleAuth(model.RoleAdmin, model.RoleStaff, model.RoleAcademy), h.Student.ListStudents)
			students.GET("/:id", h.Student.GetStudent)
			students.PATCH("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleStaff, model.RoleStudent), h.Student.UpdateStudent)
			students.POST("/:id/activate", middleware.RoleAuth(model.RoleAdmin, model.RoleStaff), h.Student.ActivateStudent)
			students.POST("/:id/deactivate", middleware.RoleAuth(model.RoleAdmin, model.RoleStaff), h.Student.DeactivateStudent)
		}

		// 机构管理
		academies := authorized.Group("/academies")
		{
			academies.GET("", middleware.RoleAuth(model.RoleAdmin, model.RoleStaff, model.RoleAcademy), h.Academy.ListAcademies)
			academies.POST("", middleware.RoleAuth(model.RoleAdmin), h.Academy.CreateAcademy)
			academies.GET("/export", middleware.RoleAuth(model.RoleAdmin, model.RoleStaff), h.Export.ExportAcademies)
		}

		// 机构后台：课程、班次、报名、教师的数据范围由 Service 层按角色限定
		academy := authorized.Group("/academy")
		{
			academy.GET("/me", middleware.RoleAuth(model.RoleAcademy), h.Academy.MyAcademy)

			courses := academy.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.POST("", h.Course.CreateCourse)
				courses.GET("/dropdown", h.Course.Dropdown)
				courses.GET("/types", h.Course.CourseTypes)
				courses.GET("/:id", h.Course.GetCourse)
				courses.PATCH("/:id", h.Course.UpdateCourse)
				courses.DELETE("/:id", h.Course.DeleteCourse)
			}

			batches := academy.Group("/batches")
			{
				batches.GET("", h.Batch.ListBatches)
				batches.POST("", h.Batch.CreateBatch)
				batches.GET("/:id", h.Batch.GetBatch)
				batches.PATCH("/:id", h.Batch.UpdateBatch)
				batches.DELETE("/:id", h.Batch.DeleteBatch)
			}

			enrollments := academy.Group("/enrollments")
			{
				enrollments.GET("", h.Enrollment.ListEnrollments)
				enrollments.POST("", h.Enrollment.CreateEnrollment)
				enrollments.PATCH("/:id", h.Enrollment.UpdateEnrollment)
				enrollments.DELETE("/:id", h.Enrollment.DeleteEnrollment)
			}

			teachers := academy.Group("/teachers")
			{
				teachers.GET("", h.Teacher.ListTeachers)
				teachers.POST("", h.Teacher.CreateTeacher)
				teachers.GET("/:id", h.Teacher.GetTeacher)
				teachers.PATCH("/:id", h.Teacher.UpdateTeacher)
				teachers.DELETE("/:id", h.Teacher.DeleteTeacher)
			}

			academy.GET("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleStaff, model.RoleAcademy), h.Academy.GetAcademy)
			academy.PATCH("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleAcademy), h.Academy.UpdateAcademy)
			academy.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Academy.DeleteAcademy)
		}

		// 评价
		reviews := authorized.Group("/reviews")
		{
			reviews.POST("/academies/:id", middleware.RoleAuth(model.RoleStudent), h.Review.CreateAcademyReview)
			reviews.POST("/teachers/:id", middleware.RoleAuth(model.RoleStudent), h.Review.CreateTeacherReview)
			reviews.PATCH("/academies/:id/moderation", middleware.RoleAuth(model.RoleAdmin), h.Review.ModerateAcademyReview)
			reviews.PATCH("/teachers/:id/moderation", middleware.RoleAuth(model.RoleAdmin), h.Review.ModerateTeacherReview)
		}

		// 短信记录
		sms := authorized.Group("/sms", middleware.RoleAuth(model.RoleAdmin))
		{
			sms.GET("", h.SMS.ListSMS)
			sms.POST("/:id/send", h.SMS.SendSMS)
			sms.POST("/:id/cancel", h.SMS.CancelSMS)
		}
	}

	return r, nil
}
