package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"msgapi/backend/internal/auth"
	jwtpkg "msgapi/backend/internal/auth/jwt"
	"msgapi/backend/internal/config"
	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/health"
	"msgapi/backend/internal/middleware"
	"msgapi/backend/internal/monitoring"
	"msgapi/backend/internal/service"
	"msgapi/backend/internal/storage"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config            *config.Config
	AuthService       *auth.Service
	UserService       *service.UserService
	MessageService    *service.MessageService
	AttachmentService *service.AttachmentService
	JWTManager        *jwtpkg.Manager
	Metrics           *monitoring.Metrics
	HealthChecker     *health.Checker
	RateLimitStore    storage.RateLimitRepository // 为 nil 时禁用认证接口限流
	Logger            *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// 使用自定义中间件替代默认中间件
	router.Use(middleware.RecoveryHandler(log, deps.Metrics))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(middleware.DefaultBodyLimit))
	router.Use(middleware.HTTPMetrics(deps.Metrics))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	authHandler := NewAuthHandler(deps.AuthService, deps.JWTManager, deps.Metrics, log)
	userHandler := NewUserHandler(deps.UserService, log)
	messageHandler := NewMessageHandler(deps.MessageService, deps.Metrics, log)
	attachmentHandler := NewAttachmentHandler(deps.AttachmentService, deps.Metrics, log)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, log)
	authRateLimit := middleware.RateLimitByIP(
		deps.RateLimitStore,
		deps.Config.RateLimit.Limit,
		deps.Config.RateLimit.Window,
		log,
	)

	// Swagger 文档
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus 指标
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// 健康检查
	if deps.HealthChecker != nil {
		router.GET("/health/live", gin.WrapF(deps.HealthChecker.LiveHandler()))
		router.GET("/health/ready", gin.WrapF(deps.HealthChecker.ReadyHandler()))
	}

	api := router.Group("/api")
	{
		// 公开路由：注册与登录，带 IP 限流
		api.POST("/register", authRateLimit, authHandler.Register)
		api.POST("/login", authRateLimit, authHandler.Login)

		// 以下路由全部要求认证
		authed := api.Group("")
		authed.Use(jwtAuth.RequireAuth())
		{
			users := authed.Group("/users")
			{
				users.GET("", userHandler.List)
				users.GET("/:id", userHandler.Get)
				users.PUT("/:id", userHandler.Update)
				users.DELETE("/:id", userHandler.Delete)
			}

			messages := authed.Group("/messages")
			{
				messages.GET("", messageHandler.List)
				messages.GET("/all", messageHandler.ListReceived)
				messages.GET("/:id", messageHandler.Get)
				// 角色门槛先于请求体解析
				messages.POST("", jwtAuth.RequireRole(domain.RoleTrusted), messageHandler.Create)
				messages.PUT("/:id", messageHandler.Update)
				messages.DELETE("/:id", messageHandler.Delete)
			}

			attachments := authed.Group("/attachments")
			{
				attachments.GET("", attachmentHandler.List)
				attachments.GET("/:id", attachmentHandler.Get)
				attachments.POST("", jwtAuth.RequireRole(domain.RoleTrusted), attachmentHandler.Create)
				attachments.PUT("/:id", attachmentHandler.Update)
				attachments.DELETE("/:id", attachmentHandler.Delete)
			}
		}
	}

	return router
}
