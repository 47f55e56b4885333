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
	"go.uber.org/zap"

	_ "github.com/noah-isme/absensi-rfid-api/api/swagger"
	"github.com/noah-isme/absensi-rfid-api/internal/handler"
	"github.com/noah-isme/absensi-rfid-api/internal/middleware"
	"github.com/noah-isme/absensi-rfid-api/internal/repository"
	"github.com/noah-isme/absensi-rfid-api/internal/service"
	"github.com/noah-isme/absensi-rfid-api/internal/window"
	"github.com/noah-isme/absensi-rfid-api/pkg/cache"
	"github.com/noah-isme/absensi-rfid-api/pkg/config"
	"github.com/noah-isme/absensi-rfid-api/pkg/database"
	"github.com/noah-isme/absensi-rfid-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/absensi-rfid-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/absensi-rfid-api/pkg/middleware/requestid"
	"github.com/noah-isme/absensi-rfid-api/pkg/storage"
)

// @title Absensi RFID API
// @version 1.0.0
// @description RFID attendance intake and live roster projection
// @BasePath /api/v1
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

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid timezone", "timezone", cfg.Timezone, "error", err)
	}
	now := func() time.Time { return time.Now().In(location) }

	win, err := window.Parse(cfg.Window.Start, cfg.Window.OnTimeDeadline, cfg.Window.End)
	if err != nil {
		logr.Sugar().Fatalw("invalid attendance window", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Cache and fan-out are optional; the intake path works without them.
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if redisClient != nil && cfg.Roster.CacheEnabled {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Roster.CacheTTL, logr, true)
	}

	scanEvents := service.NewScanEventService(redisClient, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	scanEvents.Start(ctx)
	defer scanEvents.Stop()

	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)

	recorder := service.NewRecorderService(service.RecorderServiceParams{
		Students: studentRepo,
		Records:  attendanceRepo,
		Window:   win,
		Events:   scanEvents,
		Metrics:  metricsService,
		Validate: validate,
		Logger:   logr,
		Now:      now,
	})
	roster := service.NewRosterService(service.RosterServiceParams{
		Students: studentRepo,
		Records:  attendanceRepo,
		Window:   win,
		Cache:    cacheService,
		CacheTTL: cfg.Roster.CacheTTL,
		Logger:   logr,
		Now:      now,
	})
	deviceAuth := service.NewDeviceAuthService(service.DeviceAuthServiceParams{
		Devices:  deviceRepo,
		Secret:   cfg.Device.TokenSecret,
		TTL:      cfg.Device.TokenTTL,
		Issuer:   cfg.Device.Issuer,
		Validate: validate,
		Logger:   logr,
		Now:      now,
	})
	var archive *storage.Archive
	if cfg.Export.Enabled && cfg.Export.Dir != "" {
		archive, err = storage.NewArchive(cfg.Export.Dir)
		if err != nil {
			logr.Sugar().Warnw("export archive unavailable", "dir", cfg.Export.Dir, "error", err)
			archive = nil
		}
	}
	exporter := service.NewExportService(roster, archive, cfg.Export.Retention, logr)

	attendanceHandler := handler.NewAttendanceHandler(recorder, roster)
	exportHandler := handler.NewExportHandler(exporter)
	deviceHandler := handler.NewDeviceHandler(deviceAuth)
	metricsHandler := handler.NewMetricsHandler(metricsService, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/devices/token", deviceHandler.Token)
		api.POST("/attendance/scans", middleware.DeviceAuth(deviceAuth), attendanceHandler.Scan)
		api.GET("/attendance/today", attendanceHandler.Today)
		if cfg.Export.Enabled {
			api.GET("/attendance/today/export", exportHandler.Today)
		}
		api.GET("/classes", attendanceHandler.Classes)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting",
			"addr", addr,
			"env", cfg.Env,
			"window_start", win.Start.String(),
			"ontime_deadline", win.OnTimeDeadline.String(),
			"window_end", win.End.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
