package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/college-enrolment-api/api/swagger"
	"github.com/noah-isme/college-enrolment-api/internal/handler"
	"github.com/noah-isme/college-enrolment-api/internal/repository"
	"github.com/noah-isme/college-enrolment-api/internal/router"
	"github.com/noah-isme/college-enrolment-api/internal/service"
	"github.com/noah-isme/college-enrolment-api/pkg/cache"
	"github.com/noah-isme/college-enrolment-api/pkg/config"
	"github.com/noah-isme/college-enrolment-api/pkg/database"
	"github.com/noah-isme/college-enrolment-api/pkg/jobs"
	"github.com/noah-isme/college-enrolment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/college-enrolment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/college-enrolment-api/pkg/middleware/requestid"
)

// @title College Enrolment API
// @version 1.0.0
// @description Student enrolment, capacity reporting and outcome analytics
// @BasePath /
// @schemes http
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, cacheRepo != nil)

	invalidator := service.NewCapacityReportInvalidator(cacheSvc, logr)
	invalidationQueue := jobs.New("cache-invalidation", invalidator.Handle, jobs.Config{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	invalidationQueue.Start(context.Background())
	defer invalidationQueue.Stop()
	invalidator.UseQueue(invalidationQueue)

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	enrolmentRepo := repository.NewEnrolmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)
	resultRepo := repository.NewResultRepository(db)

	validate := service.NewValidator()

	studentSvc := service.NewStudentService(studentRepo, enrolmentRepo, validate, logr)
	catalogSvc := service.NewCatalogService(courseRepo, offeringRepo, auditRepo, invalidator, validate, logr)
	enrolmentSvc := service.NewEnrolmentService(enrolmentRepo, studentRepo, invalidator, metricsSvc, validate, logr)
	auditSvc := service.NewAuditService(auditRepo)
	reportSvc := service.NewReportService(reportRepo, cacheSvc, metricsSvc, logr, service.ReportServiceConfig{
		DefaultAcademicYear: cfg.Reports.DefaultAcademicYear,
		CacheTTL:            cfg.Reports.CacheTTL,
	})
	analyticsSvc := service.NewAnalyticsService(resultRepo, courseRepo, cacheSvc, metricsSvc, logr, service.AnalyticsServiceConfig{
		Enabled:  cfg.Analytics.Enabled,
		CacheTTL: cfg.Analytics.CacheTTL,
	})
	authSvc := service.NewAuthService(cfg.Auth.Secret)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	router.Register(r, cfg, router.Dependencies{
		StudentHandler:   handler.NewStudentHandler(studentSvc),
		CatalogHandler:   handler.NewCatalogHandler(catalogSvc),
		EnrolmentHandler: handler.NewEnrolmentHandler(enrolmentSvc),
		AuditHandler:     handler.NewAuditHandler(auditSvc),
		ReportHandler:    handler.NewReportHandler(reportSvc),
		AnalyticsHandler: handler.NewAnalyticsHandler(analyticsSvc),
		MetricsHandler:   handler.NewMetricsHandler(metricsSvc, db),
		Metrics:          metricsSvc,
		Tokens:           authSvc,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	waitForShutdown(ctx, srv, cfg, logr)
}

func waitForShutdown(ctx context.Context, srv *http.Server, cfg *config.Config, logr *zap.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}

	logr.Info("server stopped")
}
