package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"msgapi/backend/internal/auth"
	"msgapi/backend/internal/policy"
	"msgapi/backend/internal/service"
	"msgapi/backend/internal/storage"
)

// writeServiceError 将服务层错误映射为 HTTP 响应
//
// 错误分类固定：未认证 401，权限不足 403，资源不存在 404，
// 校验失败 400；未识别的错误记录日志并返回 500。
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, policy.ErrUnauthenticated):
		Unauthorized(c, err.Error())
	case errors.Is(err, policy.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, storage.ErrUserNotFound):
		NotFound(c, MsgUserNotFound)
	case errors.Is(err, storage.ErrMessageNotFound):
		NotFound(c, "message not found")
	case errors.Is(err, storage.ErrAttachmentNotFound):
		NotFound(c, "attachment not found")
	case errors.Is(err, storage.ErrEmailExists):
		BadRequest(c, "email already exists")
	case errors.Is(err, service.ErrNoRecipients),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidPassword):
		BadRequest(c, err.Error())
	default:
		log.Error("unexpected service error", zap.Error(err))
		InternalError(c, "internal server error")
	}
}
