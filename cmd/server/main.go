// Package main runs the Freestay booking API server with graceful shutdown.
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

	"github.com/freestay/backend/config"
	"github.com/freestay/backend/internal/auth"
	"github.com/freestay/backend/internal/bookings"
	"github.com/freestay/backend/internal/environment"
	"github.com/freestay/backend/internal/health"
	"github.com/freestay/backend/internal/middleware"
	"github.com/freestay/backend/internal/models"
	"github.com/freestay/backend/internal/vouchers"
	"github.com/freestay/backend/pkg/database"
	"github.com/freestay/backend/pkg/redis"
	"github.com/freestay/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.DefaultPoolOptions(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
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

	// Vouchers
	voucherSvc := vouchers.NewService(vouchers.NewRepository(pool), vouchers.Config{
		UsageLimit:     cfg.Voucher.UsageLimit,
		Validity:       time.Duration(cfg.Voucher.ValidityDays) * 24 * time.Hour,
		CommissionRate: cfg.Voucher.CommissionRate,
	}, logger)
	voucherHandler := vouchers.NewHandler(voucherSvc, logger)

	// Users environment
	envHandler := environment.NewHandler(environment.NewRepository(pool), logger)

	// Bookings
	bookingHandler := bookings.NewHandler(bookings.NewRepository(pool), logger)

	healthHandler := health.NewHandler(pool.Ping, rdb.Healthy, logger)

	limiter := redis.NewFixedWindowLimiter(rdb.Client, "ratelimit",
		cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSec)*time.Second)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecureHeaders())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", healthHandler.Check)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(limiter, logger))

	// Auth (public)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
		authGroup.GET("/me", middleware.JWT(jwtService), authHandler.Me)
	}

	// Protected API (JWT required)
	protected := api.Group("")
	protected.Use(middleware.JWT(jwtService))
	{
		users := protected.Group("/users")
		users.GET("/environment", envHandler.Get)
		users.PUT("/environment/config", envHandler.UpdateConfig)
		users.PUT("/environment/preferences", envHandler.UpdatePreferences)

		v := protected.Group("/vouchers")
		v.Use(middleware.RequireRole(models.RoleCustomer, models.RoleVendor, models.RoleAdmin))
		v.GET("", voucherHandler.List)
		v.POST("/purchase", voucherHandler.Purchase)
		v.GET("/validate/:code", voucherHandler.Validate)
		v.POST("/apply", voucherHandler.Apply)

		protected.GET("/bookings", bookingHandler.List)
		protected.POST("/bookings", bookingHandler.Create)
	}

	router.NoRoute(func(c *gin.Context) { response.NotFound(c, "route not found") })

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

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
