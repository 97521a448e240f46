package httptransport

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"msgapi/backend/internal/auth"
	jwtpkg "msgapi/backend/internal/auth/jwt"
	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/monitoring"
)

// AuthHandler 处理认证相关的 HTTP 请求
type AuthHandler struct {
	authService *auth.Service       // 认证业务服务
	jwtManager  *jwtpkg.Manager     // JWT 令牌管理器
	metrics     *monitoring.Metrics // 业务指标
	log         *zap.Logger         // 结构化日志记录器
}

// NewAuthHandler 创建新的认证处理器实例
func NewAuthHandler(authService *auth.Service, jwtManager *jwtpkg.Manager, metrics *monitoring.Metrics, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
		metrics:     metrics,
		log:         log,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register 处理用户注册请求
// @Summary 用户注册
// @Description 创建新用户账户（角色固定为 member），返回用户信息和认证令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} authResponse "注册成功"
// @Failure 400 {object} ErrorResponse "请求参数错误"
// @Failure 401 {object} ErrorResponse "邮箱已被注册"
// @Failure 500 {object} ErrorResponse "服务器内部错误"
// @Router /api/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.authService.Register(auth.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			// 重复注册按认证失败处理，不暴露账户是否存在的细节
			Unauthorized(c, "email already registered")
		case errors.Is(err, auth.ErrInvalidEmail),
			errors.Is(err, auth.ErrInvalidPassword),
			errors.Is(err, auth.ErrMissingFields):
			BadRequest(c, err.Error())
		default:
			h.log.Error("failed to register user", zap.Error(err))
			InternalError(c, "registration failed")
		}
		return
	}

	token, err := h.jwtManager.Issue(user)
	if err != nil {
		h.log.Error("failed to issue token", zap.Error(err))
		InternalError(c, "failed to issue token")
		return
	}

	h.metrics.UsersRegistered.Inc()
	h.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	Created(c, authResponse{Token: token, User: user})
}

// Login 处理用户登录请求
// @Summary 用户登录
// @Description 使用邮箱和密码进行身份验证，成功后返回认证令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录凭证"
// @Success 200 {object} authResponse "登录成功"
// @Failure 400 {object} ErrorResponse "缺少字段或凭证错误"
// @Failure 500 {object} ErrorResponse "服务器内部错误"
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.authService.Login(auth.LoginInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})

	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// 凭证错误与字段缺失统一返回 400
			h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
			BadRequest(c, "invalid credentials")
			return
		}
		h.log.Error("failed to login", zap.Error(err))
		InternalError(c, "login failed")
		return
	}

	token, err := h.jwtManager.Issue(user)
	if err != nil {
		h.log.Error("failed to issue token", zap.Error(err))
		InternalError(c, "failed to issue token")
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.log.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	OK(c, authResponse{Token: token, User: user})
}
