package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应体，所有失败都返回同一形状
type ErrorResponse struct {
	Error string `json:"error" example:"insufficient permissions"`
}

// ConfirmResponse 删除等操作的确认响应体
type ConfirmResponse struct {
	Message string `json:"message" example:"deleted"`
}

// 常用响应消息
const (
	MsgInvalidRequest = "invalid request body"
	MsgUserNotFound   = "user not found"
)

// OK 写入 200 响应，资源本体即为响应 JSON
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 写入 201 响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Confirm 写入 200 确认响应
func Confirm(c *gin.Context, message string) {
	c.JSON(http.StatusOK, ConfirmResponse{Message: message})
}

// Error 写入统一形状的错误响应
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403 错误响应
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
