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
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/uni-adm/assignment-api/api/swagger"
	"github.com/uni-adm/assignment-api/internal/handler"
	"github.com/uni-adm/assignment-api/internal/middleware"
	"github.com/uni-adm/assignment-api/internal/models"
	"github.com/uni-adm/assignment-api/internal/repository"
	"github.com/uni-adm/assignment-api/internal/service"
	"github.com/uni-adm/assignment-api/pkg/cache"
	"github.com/uni-adm/assignment-api/pkg/config"
	"github.com/uni-adm/assignment-api/pkg/database"
	"github.com/uni-adm/assignment-api/pkg/jobs"
	"github.com/uni-adm/assignment-api/pkg/logger"
	corsmiddleware "github.com/uni-adm/assignment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uni-adm/assignment-api/pkg/middleware/requestid"
	"github.com/uni-adm/assignment-api/pkg/scheduler"
)

// @title Academic Assignment API
// @version 1.0.0
// @description Teacher assignment validation, workload regimes and coordinator notifications
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
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	assignmentRepo := repository.NewAssignmentRepository(db)
	personRepo := repository.NewPersonRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	regimeRepo := repository.NewRegimeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()
	tokenService := service.NewTokenService(cfg.JWT.Secret)
	capabilityService := service.NewCapabilityService()
	regimeService := service.NewRegimeService(regimeRepo, validate, logr)
	workloadService := service.NewWorkloadService(assignmentRepo, cacheRepo, cfg.Workload.CacheTTL, logr)
	notificationService := service.NewNotificationService(notificationRepo, cacheRepo, cfg.Notifications.SnoozeDays, validate, logr)
	assignmentService := service.NewAssignmentService(
		assignmentRepo, personRepo, catalogRepo, regimeService,
		workloadService, notificationService, validate, logr)
	scannerService := service.NewScannerService(
		assignmentRepo, catalogRepo, personRepo, notificationService, metricsService,
		time.Duration(cfg.Scanner.ExpiryWindowDays)*24*time.Hour, logr)

	assignmentHandler := handler.NewAssignmentHandler(assignmentService, workloadService)
	regimeHandler := handler.NewRegimeHandler(regimeService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenService))

	teachers := api.Group("/teachers/:id")
	{
		teachers.GET("/assignments",
			middleware.RequireCapability(capabilityService, models.CapViewAssignments),
			assignmentHandler.List)
		teachers.POST("/assignments",
			middleware.RequireCapability(capabilityService, models.CapManageAssignments),
			assignmentHandler.Create)
		teachers.PUT("/assignments/:aid",
			middleware.RequireCapability(capabilityService, models.CapManageAssignments),
			assignmentHandler.Update)
		teachers.POST("/assignments/:aid/close",
			middleware.RequireCapability(capabilityService, models.CapManageAssignments),
			assignmentHandler.Close)
		teachers.GET("/workload",
			middleware.RequireCapability(capabilityService, models.CapViewWorkload),
			assignmentHandler.Workload)
	}

	regimes := api.Group("/regimes")
	regimes.Use(middleware.RequireCapability(capabilityService, models.CapManageRegimes))
	{
		regimes.GET("", regimeHandler.List)
		regimes.POST("", regimeHandler.Activate)
		regimes.DELETE("/:id", regimeHandler.Deactivate)
	}

	inbox := api.Group("/me/notifications")
	inbox.Use(middleware.RequireCapability(capabilityService, models.CapManageNotifications))
	{
		inbox.GET("", notificationHandler.ListInbox)
		inbox.PATCH("/:id/read", notificationHandler.MarkRead)
		inbox.PATCH("/:id/snooze", notificationHandler.Snooze)
		inbox.PATCH("/:id/dismiss", notificationHandler.Dismiss)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanQueue := jobs.NewQueue("scans", func(ctx context.Context, job jobs.Job) error {
		switch job.Type {
		case service.JobNearExpiry:
			return scannerService.NotifyExpiringAssignments(ctx)
		case service.JobUncoveredSubjects:
			return scannerService.NotifyUncoveredSubjects(ctx)
		}
		return fmt.Errorf("unknown scan job type %q", job.Type)
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})

	var sched *scheduler.Scheduler
	if cfg.Scanner.Enabled {
		scanQueue.Start(ctx)
		defer scanQueue.Stop()

		enqueue := func(jobType string) scheduler.JobFunc {
			return func(context.Context) error {
				return scanQueue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobType})
			}
		}
		sched = scheduler.New(logr)
		sched.RegisterJob(scheduler.JobSpec{
			Name:   service.JobNearExpiry,
			Hour:   cfg.Scanner.NearExpiryHour,
			Minute: cfg.Scanner.NearExpiryMinute,
			Run:    enqueue(service.JobNearExpiry),
		})
		sched.RegisterJob(scheduler.JobSpec{
			Name:   service.JobUncoveredSubjects,
			Hour:   cfg.Scanner.UncoveredHour,
			Minute: cfg.Scanner.UncoveredMinute,
			Run:    enqueue(service.JobUncoveredSubjects),
		})
		sched.Start(ctx)
		defer sched.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
