// Package main 是应用程序入口
package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/common/config"
	"github.com/dumeirei/hotel-admin-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
	adminHandler "github.com/dumeirei/hotel-admin-backend/internal/handler/admin"
	publicHandler "github.com/dumeirei/hotel-admin-backend/internal/handler/public"
	"github.com/dumeirei/hotel-admin-backend/internal/middleware"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
	analyticsService "github.com/dumeirei/hotel-admin-backend/internal/service/analytics"
	authService "github.com/dumeirei/hotel-admin-backend/internal/service/auth"
	bookingService "github.com/dumeirei/hotel-admin-backend/internal/service/booking"
	conferenceService "github.com/dumeirei/hotel-admin-backend/internal/service/conference"
	contentService "github.com/dumeirei/hotel-admin-backend/internal/service/content"
	invoiceService "github.com/dumeirei/hotel-admin-backend/internal/service/invoice"
	notificationService "github.com/dumeirei/hotel-admin-backend/internal/service/notification"
	paymentService "github.com/dumeirei/hotel-admin-backend/internal/service/payment"
	settingsService "github.com/dumeirei/hotel-admin-backend/internal/service/settings"
)

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
) error {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	adminRepo := repository.NewAdminRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	conferenceRepo := repository.NewConferenceRepository(db)
	contentRepo := repository.NewContentRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// 启动时从 settings 表加载预订相关设置快照，改设置后需重启生效
	settingsSvc := settingsService.NewSettingsService(settingRepo, cfg.Business.Booking)
	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	bookingSettings, err := settingsSvc.LoadBookingSettings(startupCtx)
	if err != nil {
		return err
	}

	// 初始化服务
	emailSvc := notificationService.NewEmailService(cfg.Email, bookingSettings.CurrencySymbol)
	invoiceSvc := invoiceService.NewInvoiceService(cfg.Business.Invoice, paymentRepo, bookingSettings.CurrencySymbol)

	authSvc := authService.NewAuthService(adminRepo, jwtManager)
	bookingSvc := bookingService.NewBookingService(db, bookingRepo, roomRepo, bookingSettings, emailSvc)
	paymentSvc := paymentService.NewPaymentService(db, paymentRepo, bookingRepo, conferenceRepo, invoiceSvc, bookingSettings, emailSvc)
	conferenceSvc := conferenceService.NewConferenceService(conferenceRepo)
	contentSvc := contentService.NewContentService(contentRepo, roomRepo)
	analyticsSvc := analyticsService.NewAnalyticsService(analyticsRepo, bookingRepo, paymentRepo, roomRepo, conferenceRepo)

	// 首次部署时创建默认超级管理员
	if err := authSvc.EnsureDefaultAdmin(startupCtx, cfg.Server.DefaultAdminUsername, cfg.Server.DefaultAdminPassword); err != nil {
		return err
	}

	// 初始化处理器
	authH := adminHandler.NewAuthHandler(authSvc)
	bookingH := adminHandler.NewBookingHandler(bookingSvc)
	paymentH := adminHandler.NewPaymentHandler(paymentSvc)
	conferenceH := adminHandler.NewConferenceHandler(conferenceSvc)
	contentH := adminHandler.NewContentHandler(contentSvc)
	analyticsH := adminHandler.NewAnalyticsHandler(analyticsSvc)
	settingsH := adminHandler.NewSettingsHandler(settingsSvc)
	visitH := publicHandler.NewVisitHandler(analyticsSvc)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(&cfg.CORS))
	r.Use(middleware.AccessLog(logger, "/health", "/ping", "/ready", cfg.Metrics.Path))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GetMetrics().Middleware())
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 官网侧公开接口（访问上报）
	v1 := r.Group("/api/v1")
	v1.Use(middleware.IPRateLimit(120, time.Minute))
	{
		visitH.RegisterRoutes(v1)
	}

	// 管理后台 API
	admin := r.Group("/api/admin")
	{
		// 登录、刷新令牌（公开，带限流）
		public := admin.Group("")
		public.Use(middleware.LoginRateLimit())
		{
			authH.RegisterPublicRoutes(public)
		}

		// 需要管理员认证
		adminAuth := admin.Group("")
		adminAuth.Use(middleware.AdminAuth(jwtManager))
		adminAuth.Use(middleware.OperationLog(adminRepo))
		{
			authH.RegisterRoutes(adminAuth)
			bookingH.RegisterRoutes(adminAuth)
			paymentH.RegisterRoutes(adminAuth)
			conferenceH.RegisterRoutes(adminAuth)
			contentH.RegisterRoutes(adminAuth)
			analyticsH.RegisterRoutes(adminAuth)

			// 管理员账号与系统设置仅超级管理员可用
			super := adminAuth.Group("")
			super.Use(middleware.RequireSuperAdmin())
			{
				authH.RegisterSuperRoutes(super)
				settingsH.RegisterRoutes(super)
			}
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "")
	})

	return nil
}
