package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/proup-app/proup-api/internal/api/handlers"
	"github.com/proup-app/proup-api/internal/api/middleware"
	"github.com/proup-app/proup-api/internal/api/routes"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/domain/comment"
	"github.com/proup-app/proup-api/internal/domain/leaderboard"
	"github.com/proup-app/proup-api/internal/domain/project"
	"github.com/proup-app/proup-api/internal/domain/retrospective"
	"github.com/proup-app/proup-api/internal/domain/task"
	"github.com/proup-app/proup-api/internal/domain/user"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/migrations"
	"github.com/proup-app/proup-api/internal/infrastructure/scheduler"
	"github.com/proup-app/proup-api/internal/realtime"
	"github.com/proup-app/proup-api/pkg/config"
	"github.com/proup-app/proup-api/pkg/logger"
	"github.com/proup-app/proup-api/pkg/security/auth"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	log.Info("Configuration loaded successfully",
		zap.String("mode", cfg.Server.Mode),
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	userRepo := user.NewRepository(db)
	projectRepo := project.NewRepository(db)
	taskRepo := task.NewRepository(db)
	activityRepo := activity.NewRepository(db)
	commentRepo := comment.NewRepository(db)

	userService := user.NewService(userRepo, log.Logger)
	projectService := project.NewService(projectRepo, log.Logger)

	taskReader := &lazyTaskReader{}
	rt := SetupRealtime(cfg, realtime.NewRoomAuthorizer(projectService, taskReader), log)

	taskService := task.NewService(taskRepo, activityRepo, projectService, rt.Bridge, log.Logger)
	taskReader.service = taskService
	commentService := comment.NewService(commentRepo, taskService, rt.Bridge, log.Logger)
	leaderboardService := leaderboard.NewService(activityRepo, projectService, userService, log.Logger)
	retrospectiveService := retrospective.NewService(projectService, taskRepo, activityRepo, commentRepo, log.Logger)

	var rollover *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		rollover = scheduler.NewScheduler(projectService, rt.Bridge, log)
		if err := rollover.Start(cfg.Scheduler.RolloverSpec); err != nil {
			log.Fatal("Failed to start rollover scheduler", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTExpiryHours)

	guard := routes.Guard{
		Auth:       middleware.NewAuthMiddleware(jwtService, log, false),
		Validation: middleware.NewValidationMiddleware(log),
	}
	if rt.Redis != nil {
		limiter := auth.NewRedisRateLimiter(rt.Redis.GetClient(), time.Minute, cfg.Auth.RateLimit)
		guard.RateLimit = middleware.RateLimitMiddleware(limiter, log)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLoggerMiddleware(log))
	router.Use(middleware.NewMetricsMiddleware(prometheus.DefaultRegisterer, "/metrics", "/ws").CollectMetrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))
	// WebSocket upgrades must not be wrapped by the gzip writer.
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws", "/metrics"})))

	health := routes.HealthDeps{Database: db, Breaker: rt.Bridge}
	if rt.Redis != nil {
		health.Cache = rt.Redis
	}
	routes.SetupHealthRoutes(router, health)

	routes.NewTaskRoutes(
		handlers.NewTaskHandler(taskService, log.Logger),
		handlers.NewCommentHandler(commentService, log.Logger),
		guard,
	).RegisterRoutes(router)
	routes.NewProjectRoutes(
		handlers.NewProjectHandler(projectService, log.Logger),
		handlers.NewLeaderboardHandler(leaderboardService, log.Logger),
		guard,
	).RegisterRoutes(router)
	routes.NewRetrospectiveRoutes(handlers.NewRetrospectiveHandler(retrospectiveService, log.Logger), guard).RegisterRoutes(router)
	routes.NewUserRoutes(handlers.NewUserHandler(userService, log.Logger), guard).RegisterRoutes(router)
	routes.NewRealtimeRoutes(
		handlers.NewRealtimeHandler(rt.Hub, cfg.CORS.AllowedOrigins, log.Logger),
		middleware.NewAuthMiddleware(jwtService, log, true),
	).RegisterRoutes(router)

	for _, route := range router.Routes() {
		log.Debug("Route registered",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	timeout := cfg.Server.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if rollover != nil {
		rollover.Stop()
	}
	if err := rt.Shutdown(); err != nil {
		log.Error("Realtime shutdown failed", zap.Error(err))
	}

	log.Info("Server exited properly")
}

// lazyTaskReader breaks the construction cycle between the hub, which
// authorizes task rooms, and the task service, which publishes through it.
type lazyTaskReader struct {
	service task.Service
}

func (r *lazyTaskReader) GetTask(ctx context.Context, id, userID uuid.UUID) (*task.Task, error) {
	return r.service.GetTask(ctx, id, userID)
}
