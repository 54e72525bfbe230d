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

	_ "github.com/gymtrack/gymtrack-api/api/swagger"
	"github.com/gymtrack/gymtrack-api/internal/handler"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/repository"
	"github.com/gymtrack/gymtrack-api/internal/service"
	"github.com/gymtrack/gymtrack-api/pkg/cache"
	"github.com/gymtrack/gymtrack-api/pkg/config"
	"github.com/gymtrack/gymtrack-api/pkg/database"
	"github.com/gymtrack/gymtrack-api/pkg/logger"
	corsmiddleware "github.com/gymtrack/gymtrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gymtrack/gymtrack-api/pkg/middleware/requestid"
)

// @title GymTrack API
// @version 1.0.0
// @description Gym administration backend: students, instructors, schedules and session booking
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, sessionRepo, cacheSvc, validate, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, availabilityRepo, sessionRepo, cacheSvc, validate, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, instructorRepo, cacheSvc, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, studentRepo, instructorRepo, availabilityRepo, cacheSvc, metricsSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, logr, cfg.Dashboard.CacheTTL)
	seedSvc := service.NewSeedService(userRepo, logr, service.SeedConfig{
		AdminName:     cfg.Seed.AdminName,
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
	})

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := seedSvc.EnsureAdmin(seedCtx); err != nil {
		logr.Fatal("failed to seed admin account", zap.Error(err))
	}
	cancelSeed()

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
			auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		{
			protected.GET("/dashboard/stats", dashboardHandler.Stats)
			protected.GET("/dashboard/instructor-schedules", dashboardHandler.InstructorSchedules)

			protected.GET("/students", studentHandler.List)
			protected.POST("/students", studentHandler.Create)
			protected.GET("/students/:id", studentHandler.Get)
			protected.PUT("/students/:id", studentHandler.Update)
			protected.DELETE("/students/:id", studentHandler.Delete)

			protected.GET("/instructors", instructorHandler.List)
			protected.POST("/instructors", instructorHandler.Create)
			protected.GET("/instructors/:id", instructorHandler.Get)
			protected.PUT("/instructors/:id", instructorHandler.Update)
			protected.DELETE("/instructors/:id", instructorHandler.Delete)
			protected.PATCH("/instructors/:id/toggle-availability", instructorHandler.ToggleAvailability)

			protected.GET("/availabilities", availabilityHandler.List)
			protected.POST("/availabilities", availabilityHandler.Assign)
			protected.GET("/availabilities/:id", availabilityHandler.Get)
			protected.PUT("/availabilities/:id", availabilityHandler.Update)
			protected.DELETE("/availabilities/:id", availabilityHandler.Delete)

			protected.GET("/sessions", sessionHandler.List)
			protected.POST("/sessions", sessionHandler.Create)
			protected.GET("/sessions/:id", sessionHandler.Get)
			protected.PUT("/sessions/:id", sessionHandler.Update)
			protected.DELETE("/sessions/:id", sessionHandler.Delete)
			protected.PATCH("/sessions/:id/toggle-completed", sessionHandler.ToggleCompleted)

			protected.GET("/instructors-available", sessionHandler.AvailableInstructors)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
