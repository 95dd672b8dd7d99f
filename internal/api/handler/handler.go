package handler

import (
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	OTP        *OTPHandler
	Geo        *GeoHandler
	Academy    *AcademyHandler
	Course     *CourseHandler
	Batch      *BatchHandler
	Enrollment *EnrollmentHandler
	Student    *StudentHandler
	Teacher    *TeacherHandler
	Review     *ReviewHandler
	Landing    *LandingHandler
	SMS        *SMSHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, logger),
		User:       NewUserHandler(svc.User, logger),
		OTP:        NewOTPHandler(svc.OTP, logger),
		Geo:        NewGeoHandler(svc.Geo, logger),
		Academy:    NewAcademyHandler(svc.Academy, logger),
		Course:     NewCourseHandler(svc.Course, logger),
		Batch:      NewBatchHandler(svc.Batch, logger),
		Enrollment: NewEnrollmentHandler(svc.Enrollment, logger),
		Student:    NewStudentHandler(svc.Student, logger),
		Teacher:    NewTeacherHandler(svc.Teacher, logger),
		Review:     NewReviewHandler(svc.Review, logger),
		Landing:    NewLandingHandler(svc.Landing, logger),
		SMS:        NewSMSHandler(svc.SMS, logger),
		Export:     NewExportHandler(svc.Export, logger),
	}
}
