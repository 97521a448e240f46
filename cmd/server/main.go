package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"msgapi/backend/internal/auth"
	jwtpkg "msgapi/backend/internal/auth/jwt"
	"msgapi/backend/internal/config"
	"msgapi/backend/internal/health"
	"msgapi/backend/internal/logger"
	"msgapi/backend/internal/monitoring"
	"msgapi/backend/internal/service"
	"msgapi/backend/internal/storage"
	"msgapi/backend/internal/storage/memory"
	"msgapi/backend/internal/storage/redis"
	sqlstore "msgapi/backend/internal/storage/sql"
	httptransport "msgapi/backend/internal/transport/http"
)

// main 启动消息 API 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting message API server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	var store storage.Store
	var memStore *memory.Store

	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		store, err = sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize database storage: %v", err))
		}
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
	} else {
		memStore = memory.NewStore()
		store = memStore
		log.Info("using memory storage (development mode)")
	}
	defer store.Close()

	// 限流计数后端：优先 Redis，退化为内存实现
	var rateLimitStore storage.RateLimitRepository
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		if cfg.Redis.Enabled {
			redisClient, err = redis.New(&cfg.Redis, log)
			if err != nil {
				panic(fmt.Sprintf("failed to connect to Redis: %v", err))
			}
			rateLimitStore = redisClient
		} else if memStore != nil {
			rateLimitStore = memStore
		} else {
			rateLimitStore = memory.NewStore()
		}
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 初始化监控与健康检查
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewChecker(store, rateLimitStore, log)

	// 初始化认证与业务服务
	authService := auth.NewService(store)
	jwtManager := jwtpkg.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	log.Info("JWT configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("expiry", cfg.JWT.Expiry),
	)

	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:            cfg,
		AuthService:       authService,
		UserService:       service.NewUserService(store, log),
		MessageService:    service.NewMessageService(store, log),
		AttachmentService: service.NewAttachmentService(store, log),
		JWTManager:        jwtManager,
		Metrics:           metrics,
		HealthChecker:     healthChecker,
		RateLimitStore:    rateLimitStore,
		Logger:            log,
	})

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
