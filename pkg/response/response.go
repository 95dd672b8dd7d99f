package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// FieldError 字段级校验错误
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Response 统一响应结构
// 成功：{success:true, data, pagination?}
// 失败：{success:false, code, message, errors?}
type Response struct {
	Success    bool             `json:"success"`
	Code       int              `json:"code,omitempty"`
	Message    string           `json:"message,omitempty"`
	Data       interface{}      `json:"data,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Errors     []FieldError     `json:"errors,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// OKMessage 200 仅携带提示信息
func OKMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, list interface{}, meta pagination.Meta) {
	c.JSON(http.StatusOK, Response{Success: true, Data: list, Pagination: &meta})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{Code: code, Message: message})
}

// ValidationFailed 400 字段级校验失败
func ValidationFailed(c *gin.Context, code int, errs []FieldError) {
	c.JSON(http.StatusBadRequest, Response{Code: code, Message: "参数校验失败", Errors: errs})
}

// FieldInvalid 400 单字段业务校验失败
func FieldInvalid(c *gin.Context, code int, field, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    code,
		Message: message,
		Errors:  []FieldError{{Field: field, Error: message}},
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, code int, message string) {
	Error(c, http.StatusTooManyRequests, code, message)
}

// InternalError 500，不向调用方暴露内部细节
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
