package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"swapcash/internal/config"
	"swapcash/internal/handlers"
	"swapcash/internal/middleware"
	"swapcash/internal/repositories/mongodb"
	"swapcash/internal/services"
	"swapcash/pkg/cache"
	"swapcash/pkg/database"
	"swapcash/pkg/logger"
	"swapcash/pkg/storage"
	"swapcash/pkg/telegram"
	"swapcash/routes"

	"github.com/gin-gonic/gin"
	"github.com/mymmrac/telego"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// Mongo
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		appLogger.Fatalf("Failed to ensure indexes: %v", err)
	}
	cancelIndexes()

	// Redis is optional; without it reads skip the cache layer.
	var cacheService services.CacheService
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Warnf("Redis unavailable, continuing without cache: %v", err)
	} else {
		cacheService = services.NewCacheService(redisCache)
		defer redisCache.Close()
	}

	s3Storage, err := storage.NewAWSS3Storage(cfg.Storage.Region, cfg.Storage.Bucket, cfg.Storage.CDNDomain)
	if err != nil {
		appLogger.Fatalf("Failed to initialize S3 storage: %v", err)
	}

	// Telegram client; without a token the bot and notifications are off.
	var notifier services.Notifier = services.NopNotifier{}
	var botClient *telego.Bot
	if cfg.Telegram.BotToken != "" {
		botClient, err = telegram.NewClient(cfg.Telegram.BotToken)
		if err != nil {
			appLogger.Fatalf("Failed to create Telegram client: %v", err)
		}
		notifier = telegram.NewNotifier(botClient, cfg.Telegram, appLogger)
	}

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database, cacheService)
	transactionRepo := mongodb.NewTransactionRepository(db.Database)
	withdrawalRepo := mongodb.NewWithdrawalRepository(db.Database)
	rateRepo := mongodb.NewRateRepository(db.Database)
	kycRepo := mongodb.NewKYCRepository(db.Database)

	// Services
	referralService := services.NewReferralService(userRepo, cfg.Referral, cfg.Telegram.BotUsername, appLogger)
	rateService := services.NewRateService(rateRepo, cacheService, appLogger)
	transactionService := services.NewTransactionService(transactionRepo, referralService, rateService, notifier, cfg.Referral, appLogger)
	withdrawalService := services.NewWithdrawalService(withdrawalRepo, referralService, notifier, cfg.Referral, appLogger)
	kycService := services.NewKYCService(kycRepo, userRepo, s3Storage, notifier, cfg.Storage, appLogger)
	authService := services.NewAuthService(referralService, cfg.Security, cfg.Telegram.BotToken, appLogger)

	// Bot
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if botClient != nil && cfg.Telegram.LongPolling {
		bot := telegram.NewBot(botClient, cfg.Telegram,
			referralService, transactionService, withdrawalService, rateService, appLogger)
		go func() {
			if err := bot.Start(ctx); err != nil {
				appLogger.Errorf("Bot stopped: %v", err)
			}
		}()
		defer bot.Stop()
	}

	// HTTP
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	if len(cfg.Security.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			appLogger.Fatalf("Failed to set trusted proxies: %v", err)
		}
	}

	routes.Setup(router, &routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		User:        handlers.NewUserHandler(userRepo, referralService, transactionService),
		Transaction: handlers.NewTransactionHandler(transactionService, rateService),
		Withdrawal:  handlers.NewWithdrawalHandler(withdrawalService),
		Rate:        handlers.NewRateHandler(rateService),
		KYC:         handlers.NewKYCHandler(kycService),
	}, authService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Infof("Server listening on port %d", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}
