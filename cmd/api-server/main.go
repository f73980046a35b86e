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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutor-booking-api/api/swagger"
	"github.com/noah-isme/tutor-booking-api/internal/handler"
	"github.com/noah-isme/tutor-booking-api/internal/middleware"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	"github.com/noah-isme/tutor-booking-api/internal/router"
	"github.com/noah-isme/tutor-booking-api/internal/service"
	"github.com/noah-isme/tutor-booking-api/pkg/cache"
	"github.com/noah-isme/tutor-booking-api/pkg/config"
	"github.com/noah-isme/tutor-booking-api/pkg/database"
	"github.com/noah-isme/tutor-booking-api/pkg/jobs"
	"github.com/noah-isme/tutor-booking-api/pkg/jsonstore"
	"github.com/noah-isme/tutor-booking-api/pkg/logger"
	"github.com/noah-isme/tutor-booking-api/pkg/storage"
)

// @title Tutor Booking API
// @version 1.0.0
// @description Tutor booking, enrollment and student affairs REST API
// @BasePath /api
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()

	backend, db, err := openBackend(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open record store", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}
	store := jsonstore.New(backend, jsonstore.WithLogger(logr), jsonstore.WithObserver(metrics.ObserveStoreOperation))

	var redisClient *redis.Client
	if cfg.Session.Driver == config.SessionRedis || cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	var sessions service.SessionStore = repository.NewMemorySessionRepository()
	if cfg.Session.Driver == config.SessionRedis {
		sessions = repository.NewRedisSessionRepository(redisClient)
	}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	files, err := storage.NewLocalStorage(cfg.Materials.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare material storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Materials.SignedURLSecret, cfg.Materials.SignedURLTTL)

	queue := jobs.NewQueue("notifier", jobs.QueueConfig{
		Workers:    cfg.Notifier.Workers,
		MaxRetries: cfg.Notifier.MaxRetries,
		RetryDelay: cfg.Notifier.RetryDelay,
		Logger:     logr,
		OnOutcome:  metrics.ObserveJob,
	})

	notificationSvc := service.NewNotificationService(store, service.NewStamper(nil), validate, logr)
	waitlistSvc := service.NewWaitlistService(store, notificationSvc, validate, logr)
	notifier := service.NewNotifier(queue, waitlistSvc, notificationSvc, logr)
	slots := service.NewRandomAvailability(cfg.Slots.AvailabilityRatio, cfg.Slots.RandomSeed)

	authSvc := service.NewAuthService(store, sessions, metrics, validate, logr, service.AuthConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Issuer: cfg.Session.Issuer,
	})
	catalogSvc := service.NewCatalogService(store, cacheSvc, validate, logr)
	classSvc := service.NewClassService(store, files, signer, validate, logr, service.ClassConfig{
		APIPrefix:      cfg.APIPrefix,
		MaxUploadBytes: cfg.Materials.MaxFileSizeBytes,
	})
	bookingSvc := service.NewBookingService(store, notificationSvc, slots, metrics, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(store, notificationSvc, notifier, validate, logr)
	riskSvc := service.NewRiskService(store, notifier, validate, logr)
	dashboardSvc := service.NewDashboardService(store, riskSvc, logr)

	if cfg.Seed.Enabled {
		if err := service.NewSeeder(store, logr).Seed(ctx); err != nil {
			logr.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	queue.Start(context.Background())

	engine := router.New(cfg, logr, &router.HandlerBundle{
		Auth:          handler.NewAuthHandler(authSvc),
		Catalog:       handler.NewCatalogHandler(catalogSvc),
		Class:         handler.NewClassHandler(classSvc),
		Booking:       handler.NewBookingHandler(bookingSvc),
		Enrollment:    handler.NewEnrollmentHandler(enrollmentSvc),
		Waitlist:      handler.NewWaitlistHandler(waitlistSvc),
		Notification:  handler.NewNotificationHandler(notificationSvc),
		Risk:          handler.NewRiskHandler(riskSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Metrics:       handler.NewMetricsHandler(metrics, cfg.Version),
		Authenticator: authSvc,
		MetricsSvc:    metrics,
		LoginLimiter:  middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst, logr),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
	queue.Stop(shutdownCtx)
}

func openBackend(ctx context.Context, cfg *config.Config, logr *zap.Logger) (jsonstore.Backend, *sqlx.DB, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logr.Warn("using in-memory record store; data is lost on restart")
		return jsonstore.NewMemoryBackend(), nil, nil
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		backend := jsonstore.NewPostgresBackend(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return backend, db, nil
	case config.StorageFile, "":
		backend, err := jsonstore.NewFileBackend(cfg.Storage.DataDir)
		return backend, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
