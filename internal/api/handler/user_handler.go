package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// UserHandler 账号模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
	logger  *zap.Logger
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userSvc: userSvc, logger: logger}
}

// Register 学员注册
// POST /api/v1/register
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, user)
}

// ListUsers GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.UserListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.userSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OKPage(c, list, meta)
}

// CreateUser 管理员创建账号
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.userSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateUser PATCH /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// ResetPassword 管理员重置密码
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	result, err := h.userSvc.ResetPassword(c.Request.Context(), p, id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

// ChangePassword 修改本人密码
// POST /api/v1/auth/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userSvc.ChangePassword(c.Request.Context(), p, &req); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OKMessage(c, "密码已修改")
}

// parseUserID 用户 ID 为 UUID
func parseUserID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FieldInvalid(c, 10001, "id", "ID 无效")
		return "", false
	}
	return id.String(), true
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	if writeFieldError(c, 22002, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 22001, "用户不存在")
	case errors.Is(err, service.ErrUserSelfDisable):
		response.BadRequest(c, 22003, service.ErrUserSelfDisable.Error())
	default:
		handleCommonError(c, h.logger, err)
	}
}
