package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/middleware"
	"msgapi/backend/internal/service"
)

// UserHandler 处理用户资源的 HTTP 请求
type UserHandler struct {
	users *service.UserService
	log   *zap.Logger
}

// NewUserHandler 创建用户处理器
func NewUserHandler(users *service.UserService, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{users: users, log: log}
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// List 返回全部用户
// @Summary 用户列表
// @Description 返回全部用户，仅管理员可用
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.User
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(middleware.GetIdentity(c))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, users)
}

// Get 返回单个用户
// @Summary 用户详情
// @Description 按 ID 返回单个用户，任何已认证身份可用
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户 ID"
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, user)
}

// Update 更新用户
// @Summary 更新用户
// @Description 管理员或本人可更新；角色字段仅管理员的请求生效
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户 ID"
// @Param request body updateUserRequest true "更新字段（缺省字段保持原值）"
// @Success 200 {object} domain.User
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	input := service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.users.Update(middleware.GetIdentity(c), c.Param("id"), input)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, user)
}

// Delete 删除用户
// @Summary 删除用户
// @Description 删除指定用户，仅管理员可用
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户 ID"
// @Success 200 {object} ConfirmResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(middleware.GetIdentity(c), c.Param("id")); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	Confirm(c, "user deleted")
}
