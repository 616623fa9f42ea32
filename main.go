package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omkarr10/Vagabond/internal/config"
	"github.com/omkarr10/Vagabond/internal/database"
	"github.com/omkarr10/Vagabond/internal/handler"
	"github.com/omkarr10/Vagabond/internal/logger"
	"github.com/omkarr10/Vagabond/internal/middleware"
	"github.com/omkarr10/Vagabond/internal/password"
	"github.com/omkarr10/Vagabond/internal/planner"
	"github.com/omkarr10/Vagabond/internal/redisx"
	"github.com/omkarr10/Vagabond/internal/repository"
	"github.com/omkarr10/Vagabond/internal/service"
	"github.com/omkarr10/Vagabond/internal/telemetry"
	"github.com/omkarr10/Vagabond/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		log.Fatal("failed to init telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	dbConfig := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  10 * time.Second,
		MaxRetries:      3,
		RetryInterval:   2 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}

	if err := database.RunMigrations(ctx, dbConfig); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, dbConfig)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redisx.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisx.NewClient(ctx, &redisx.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    3,
			RetryInterval: time.Second,
		})
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	tokens, err := token.NewManager(&token.Config{
		Secret:          cfg.JWT.Secret,
		RefreshSecret:   cfg.JWT.RefreshSecret,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
	})
	if err != nil {
		log.Fatal("failed to create token manager", zap.Error(err))
	}

	hasher := password.NewHasher(cfg.JWT.BcryptCost, 0)

	var gateway planner.Gateway
	if cfg.Planner.APIKey != "" {
		gateway = planner.NewGroqGateway(&planner.GroqConfig{
			BaseURL: cfg.Planner.BaseURL,
			APIKey:  cfg.Planner.APIKey,
			Model:   cfg.Planner.Model,
			Timeout: cfg.Planner.Timeout,
		})
	} else {
		log.Warn("no planner API key configured, using mock gateway")
		gateway = planner.NewMockGateway()
	}

	userRepo := repository.NewPostgresUserRepository(db.Pool())
	itineraryRepo := repository.NewPostgresItineraryRepository(db.Pool())

	authService := service.NewAuthService(userRepo, tokens, hasher)
	itineraryService := service.NewItineraryService(itineraryRepo, gateway)

	authHandler := handler.NewAuthHandler(authService, log)
	itineraryHandler := handler.NewItineraryHandler(itineraryService, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.App.Version)

	router := setupRouter(cfg, log, tokens, redisClient, authHandler, itineraryHandler, healthHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.String("planner", gateway.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}

func setupRouter(
	cfg *config.Config,
	log *logger.Logger,
	tokens *token.Manager,
	redisClient *redisx.Client,
	authHandler *handler.AuthHandler,
	itineraryHandler *handler.ItineraryHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(log))
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	}

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	rateLimitConfig := middleware.DefaultRateLimitConfig()
	rateLimitConfig.RedisClient = redisClient

	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimiter(rateLimitConfig))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.Auth(tokens), authHandler.Logout)
		auth.GET("/me", middleware.Auth(tokens), authHandler.Me)
	}

	itineraries := router.Group("/api/itineraries")
	itineraries.Use(middleware.Auth(tokens))
	{
		itineraries.POST("/generate", itineraryHandler.Generate)
		itineraries.GET("", itineraryHandler.List)
		itineraries.GET("/:id", itineraryHandler.Get)
		itineraries.DELETE("/:id", itineraryHandler.Delete)
	}

	return router
}
