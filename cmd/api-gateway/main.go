package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vitalkonsult/vk-api/api/swagger"
	"github.com/vitalkonsult/vk-api/internal/handler"
	"github.com/vitalkonsult/vk-api/internal/middleware"
	"github.com/vitalkonsult/vk-api/internal/repository"
	"github.com/vitalkonsult/vk-api/internal/service"
	"github.com/vitalkonsult/vk-api/pkg/cache"
	"github.com/vitalkonsult/vk-api/pkg/config"
	"github.com/vitalkonsult/vk-api/pkg/database"
	"github.com/vitalkonsult/vk-api/pkg/jobs"
	"github.com/vitalkonsult/vk-api/pkg/logger"
	corsmiddleware "github.com/vitalkonsult/vk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/vitalkonsult/vk-api/pkg/middleware/requestid"
	"github.com/vitalkonsult/vk-api/pkg/storage"
)

// @title VitalKonsult API
// @version 1.0.0
// @description Consultancy management backend covering inquiries, admissions, batches, fees, attendance and placement outreach.
// @BasePath /api/v1
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	outreachRepo := repository.NewOutreachRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "vk-api",
	})
	userService := service.NewUserService(userRepo, validate, logr)
	inquiryService := service.NewInquiryService(inquiryRepo, validate, logr)
	batchService := service.NewBatchService(batchRepo, validate, logr)
	studentService := service.NewStudentService(studentRepo, inquiryRepo, batchRepo, feeRepo, validate, logr)
	feeService := service.NewFeeService(feeRepo, studentRepo, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, batchRepo, studentRepo, validate, logr)
	outreachService := service.NewOutreachService(outreachRepo, validate, logr)

	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr,
		cfg.Dashboard.CacheEnabled && redisClient != nil)
	dashboardService := service.NewDashboardService(
		inquiryRepo, studentRepo, feeRepo, batchRepo, outreachRepo,
		cacheService, logr,
		service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Users:      handler.NewUserHandler(userService),
		Inquiries:  handler.NewInquiryHandler(inquiryService),
		Batches:    handler.NewBatchHandler(batchService),
		Students:   handler.NewStudentHandler(studentService),
		Fees:       handler.NewFeeHandler(feeService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Outreach:   handler.NewOutreachHandler(outreachService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Metrics:    handler.NewMetricsHandler(metrics),
		Audit:      userRepo,
	}

	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportRepo := repository.NewExportRepository(db)
		generator := service.NewExportGenerator(inquiryRepo, studentRepo, feeRepo, store, signer,
			service.ExportGeneratorConfig{
				APIPrefix: cfg.APIPrefix,
				ResultTTL: cfg.Exports.SignedURLTTL,
			}, logr)
		worker := service.NewExportWorker(exportRepo, generator, cfg.Exports.WorkerRetries, logr)
		exportQueue = jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportService := service.NewExportService(exportRepo, exportQueue, generator, logr,
			service.ExportServiceConfig{
				ResultTTL:       cfg.Exports.SignedURLTTL,
				CleanupInterval: time.Hour,
				MaxRetries:      cfg.Exports.WorkerRetries,
			})
		handlers.Exports = handler.NewExportHandler(exportService)

		exportQueue.Start(ctx)
		exportService.RecoverPendingJobs(ctx)
		exportService.StartCleanup(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", handlers.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", handlers.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authService, handlers)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
	if exportQueue != nil {
		exportQueue.Stop()
	}
}
