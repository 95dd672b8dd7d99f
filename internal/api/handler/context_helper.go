package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/service"
	pkgerrors "github.com/rajib3777/academia-sub001/pkg/errors"
	"github.com/rajib3777/academia-sub001/pkg/jwt"
	applogger "github.com/rajib3777/academia-sub001/pkg/logger"
	"github.com/rajib3777/academia-sub001/pkg/response"
	"github.com/rajib3777/academia-sub001/pkg/validation"
)

// 上下文键，由 JWTAuth 中间件写入
const (
	ctxKeyUserID = "user_id"
	ctxKeyRole   = "role"
	ctxKeyClaims = "claims"
)

// MustGetPrincipal 从 Gin 上下文中提取当前调用方。
// JWT 中间件未注入身份时写入 401 响应并返回 false，调用方应直接 return。
func MustGetPrincipal(c *gin.Context) (service.Principal, bool) {
	userID := c.GetString(ctxKeyUserID)
	role := c.GetString(ctxKeyRole)
	if userID == "" || role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Principal{}, false
	}
	return service.Principal{UserID: userID, Role: role}, true
}

// MustGetClaims 提取当前 Access Token 的 Claims
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxKeyClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// parseID 解析路径参数中的数字 ID
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.FieldInvalid(c, 10001, name, "ID 无效")
		return 0, false
	}
	return id, true
}

// bindJSON 绑定请求体，失败时输出字段级错误列表
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ValidationFailed(c, 10001, validation.Translate(err))
		return false
	}
	return true
}

// bindQuery 绑定查询参数
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.ValidationFailed(c, 10001, validation.Translate(err))
		return false
	}
	return true
}

// writeFieldError 业务校验错误带字段时输出单字段错误
func writeFieldError(c *gin.Context, code int, err error) bool {
	var fe *service.FieldError
	if !errors.As(err, &fe) {
		return false
	}
	response.FieldInvalid(c, code, fe.Field, fe.Err.Error())
	return true
}

// handleCommonError 各模块共用的错误兜底
func handleCommonError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		response.Forbidden(c, 10003, "无权操作该资源")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, pkgerrors.ErrOptimisticLock.Error())
	default:
		applogger.FromContext(c.Request.Context(), logger).Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}

// writeDeleteResult 按级联删除结果输出响应
func writeDeleteResult(c *gin.Context, res service.DeleteResult, notFoundCode int, notFoundMsg string) {
	switch res.Outcome {
	case service.DeleteOutcomeDeleted:
		response.OK(c, res.ToResponse())
	case service.DeleteOutcomeNotFound:
		response.NotFound(c, notFoundCode, notFoundMsg)
	case service.DeleteOutcomeConflict:
		response.BadRequest(c, 10007, "存在关联数据，无法删除")
	default:
		response.InternalError(c)
	}
}
