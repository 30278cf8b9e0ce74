package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mizan-legal/mizan-api/api/swagger"
	"github.com/mizan-legal/mizan-api/internal/handler"
	"github.com/mizan-legal/mizan-api/internal/middleware"
	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/repository"
	"github.com/mizan-legal/mizan-api/internal/service"
	"github.com/mizan-legal/mizan-api/pkg/cache"
	"github.com/mizan-legal/mizan-api/pkg/config"
	"github.com/mizan-legal/mizan-api/pkg/database"
	"github.com/mizan-legal/mizan-api/pkg/export"
	"github.com/mizan-legal/mizan-api/pkg/logger"
	corsmiddleware "github.com/mizan-legal/mizan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mizan-legal/mizan-api/pkg/middleware/requestid"
	"github.com/mizan-legal/mizan-api/pkg/mq"
	"github.com/mizan-legal/mizan-api/pkg/storage"
)

// @title Mizan Legal Services API
// @version 1.0.0
// @description Multilingual legal-services platform: service requests, payments, consultants and client notifications.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.RequestTTL, logr, true)
		}
	}

	var publisher mq.Publisher
	if cfg.Events.Enabled {
		rabbit, err := mq.NewRabbitPublisher(cfg.Events.URL, cfg.Events.Exchange, logr)
		if err != nil {
			logr.Warn("event broker unavailable, events disabled", zap.Error(err))
		} else {
			defer rabbit.Close()
			publisher = rabbit
		}
	}

	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewServiceRequestRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	consultantRepo := repository.NewConsultantRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	faqRepo := repository.NewFAQRepository(db)
	contactRepo := repository.NewContactRepository(db)
	applicationRepo := repository.NewJobApplicationRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "mizan-api",
	})

	consultantSvc := service.NewConsultantService(consultantRepo, cacheSvc, cfg.Cache.ConsultantTTL, validate, logr)
	categorySvc := service.NewCategoryService(categoryRepo, cacheSvc, cfg.Cache.CategoryTTL, validate, logr)
	notificationSvc := service.NewNotificationService(requestRepo, cacheSvc, cfg.Notifications.CounterTTL, logr)

	requestSvc := service.NewRequestService(
		requestRepo,
		consultantSvc,
		categorySvc,
		consultantSvc,
		cacheSvc,
		cfg.Cache.RequestTTL,
		notificationSvc,
		publisher,
		validate,
		logr,
	)

	paymentSvc := service.NewPaymentService(
		paymentRepo,
		requestRepo,
		userRepo,
		cacheSvc,
		notificationSvc,
		export.NewReceiptRenderer("Mizan Legal Services"),
		export.NewCSVExporter(),
		publisher,
		validate,
		logr,
	)

	trackerSvc := service.NewTrackerService(requestRepo, notificationSvc, cacheSvc, metricsSvc, publisher, service.TrackerConfig{
		Workers:    cfg.Tracking.Workers,
		BufferSize: cfg.Tracking.BufferSize,
	}, logr)

	trackerCtx, cancelTracker := context.WithCancel(context.Background())
	trackerSvc.Start(trackerCtx)
	defer func() {
		cancelTracker()
		trackerSvc.Stop()
	}()

	faqSvc := service.NewFAQService(faqRepo, validate, logr)
	contactSvc := service.NewContactService(contactRepo, cacheSvc, cfg.Cache.ContactTTL, validate, logr)

	files, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	applicationSvc := service.NewJobApplicationService(
		applicationRepo,
		files,
		signer,
		cfg.Uploads.MaxFileSizeBytes,
		cfg.Uploads.AllowedMIMEs,
		validate,
		logr,
	)

	if cfg.Maintenance.Enabled {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Maintenance.ReconcileSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if repaired, err := paymentSvc.Reconcile(ctx); err != nil {
				logr.Error("payment reconcile failed", zap.Error(err))
			} else if repaired > 0 {
				logr.Info("payment mirrors repaired", zap.Int("count", repaired))
			}
			if err := notificationSvc.Reconcile(ctx); err != nil {
				logr.Error("notification reconcile failed", zap.Error(err))
			}
		})
		if err != nil {
			logr.Fatal("invalid reconcile schedule", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	requestHandler := handler.NewRequestHandler(requestSvc, trackerSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	consultantHandler := handler.NewConsultantHandler(consultantSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	faqHandler := handler.NewFAQHandler(faqSvc)
	contactHandler := handler.NewContactHandler(contactSvc)
	applicationHandler := handler.NewJobApplicationHandler(applicationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	maintenanceHandler := handler.NewMaintenanceHandler(paymentSvc, notificationSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/logout-all", middleware.JWT(authSvc), authHandler.LogoutAll)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	// Public content for the marketing pages.
	api.GET("/categories", categoryHandler.PublicList)
	api.GET("/faqs", faqHandler.PublicList)
	api.GET("/contact", contactHandler.List)
	api.GET("/contact/:key", contactHandler.Get)
	api.POST("/careers/apply", applicationHandler.Submit)

	// The request listing is deliberately behind OptionalJWT: without a
	// session it returns an empty list instead of 401.
	requests := api.Group("/requests")
	{
		requests.GET("", middleware.OptionalJWT(authSvc), requestHandler.List)
		requests.GET("/:id", middleware.JWT(authSvc), requestHandler.Get)
		requests.POST("", middleware.JWT(authSvc), requestHandler.Create)
		requests.GET("/:id/payment", middleware.JWT(authSvc), paymentHandler.DetailsByRequest)
	}

	payments := api.Group("/payments", middleware.JWT(authSvc))
	{
		payments.GET("/lookup", paymentHandler.DetailsByReference)
		payments.GET("/:id", paymentHandler.Details)
		payments.GET("/:id/receipt", paymentHandler.Receipt)
	}

	api.GET("/notifications/count", middleware.JWT(authSvc), notificationHandler.UnviewedCount)

	staff := []models.UserRole{models.RoleAdmin, models.RoleConsultant, models.RoleSupport}
	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(staff...))
	{
		admin.GET("/requests", requestHandler.AdminList)
		admin.PATCH("/requests/:id/status", requestHandler.UpdateStatus)
		admin.POST("/requests/:id/assign", requestHandler.Assign)
		admin.POST("/requests/:id/replies", requestHandler.Reply)

		admin.GET("/payments", paymentHandler.List)
		admin.POST("/payments", paymentHandler.RequirePayment)
		admin.PATCH("/payments/:id/status", paymentHandler.UpdateStatus)
		admin.GET("/payments/export", paymentHandler.ExportCSV)

		admin.GET("/consultants", consultantHandler.List)
		admin.GET("/consultants/:id", consultantHandler.Get)
		admin.POST("/consultants", consultantHandler.Create)
		admin.PUT("/consultants/:id", consultantHandler.Update)
		admin.DELETE("/consultants/:id", consultantHandler.Delete)

		admin.GET("/categories", categoryHandler.List)
		admin.GET("/categories/:id", categoryHandler.Get)
		admin.POST("/categories", categoryHandler.Create)
		admin.PUT("/categories/:id", categoryHandler.Update)
		admin.DELETE("/categories/:id", categoryHandler.Delete)

		admin.GET("/faqs", faqHandler.List)
		admin.GET("/faqs/:id", faqHandler.Get)
		admin.POST("/faqs", faqHandler.Create)
		admin.PUT("/faqs/:id", faqHandler.Update)
		admin.DELETE("/faqs/:id", faqHandler.Delete)

		admin.PUT("/contact", contactHandler.Upsert)
		admin.DELETE("/contact/:key", contactHandler.Delete)

		admin.GET("/applications", applicationHandler.List)
		admin.GET("/applications/resume", applicationHandler.DownloadResume)
		admin.GET("/applications/:id", applicationHandler.Get)
		admin.PATCH("/applications/:id/status", applicationHandler.UpdateStatus)
		admin.GET("/applications/:id/resume-link", applicationHandler.ResumeLink)

		admin.GET("/metrics", metricsHandler.Snapshot)
		admin.POST("/maintenance/reconcile", maintenanceHandler.Reconcile)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
