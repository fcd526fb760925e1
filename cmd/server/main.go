// Package main runs the MeepleMeet HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meeplemeet/backend/config"
	"github.com/meeplemeet/backend/internal/activities"
	"github.com/meeplemeet/backend/internal/auth"
	"github.com/meeplemeet/backend/internal/games"
	"github.com/meeplemeet/backend/internal/middleware"
	"github.com/meeplemeet/backend/internal/notifications"
	"github.com/meeplemeet/backend/internal/notify"
	"github.com/meeplemeet/backend/internal/worker"
	"github.com/meeplemeet/backend/pkg/database"
	"github.com/meeplemeet/backend/pkg/queue"
	"github.com/meeplemeet/backend/pkg/redis"
	"github.com/meeplemeet/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Game catalog
	gameRepo := games.NewRepository(pool)
	catalog := games.NewCatalog(gameRepo, rdb.Client, time.Duration(cfg.Catalog.CacheTTLMinutes)*time.Minute, logger)
	gameHandler := games.NewHandler(gameRepo, catalog)

	// Notifications
	jobQueue := queue.NewQueue(rdb.Client, logger)
	notifier := notify.NewNotifier(jobQueue, logger)
	inboxRepo := notifications.NewRepository(pool)
	inboxHandler := notifications.NewHandler(inboxRepo)
	processor := worker.NewNotificationProcessor(inboxRepo, jobQueue, logger)

	// Activities
	activityRepo := activities.NewRepository(pool, gameRepo)
	policy := activities.NewPolicy(activityRepo)
	activityHandler := activities.NewHandler(activityRepo, policy, authRepo, catalog, notifier, cfg, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Current user
		api.GET("/me", authHandler.Me)
		api.PUT("/me/location", authHandler.UpdateLocation)
		api.GET("/me/activities", activityHandler.Hosted)
		api.GET("/me/joined", activityHandler.Joined)

		// Game catalog
		api.GET("/games", gameHandler.List)
		api.GET("/games/:id", gameHandler.GetByID)

		// Discovery
		api.GET("/discover", activityHandler.Discover)
		api.GET("/discover/near", activityHandler.DiscoverNear)

		// Activities
		api.POST("/activities", activityHandler.Create)
		api.GET("/activities/:id", activityHandler.Get)
		api.PATCH("/activities/:id/player-count", activityHandler.EditPlayerCount)
		api.PATCH("/activities/:id/schedule", activityHandler.EditSchedule)
		api.PATCH("/activities/:id/deadline", activityHandler.EditDeadline)
		api.PATCH("/activities/:id/address", activityHandler.EditAddress)
		api.PATCH("/activities/:id/info", activityHandler.EditInfo)
		api.POST("/activities/:id/cancel", activityHandler.Cancel)

		// Registrations
		api.POST("/activities/:id/registrations", activityHandler.SubmitRegistration)
		api.POST("/activities/:id/registrations/approve", activityHandler.ApproveRegistration)
		api.POST("/activities/:id/registrations/cancel", activityHandler.CancelRegistration)

		// Notification inbox
		api.GET("/notifications", inboxHandler.List)
		api.POST("/notifications/:id/read", inboxHandler.MarkRead)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (notification fan-out to inboxes)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go processor.Run(workerCtx)
	logger.Info("notification worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
