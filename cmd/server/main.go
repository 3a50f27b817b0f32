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

	"storefront-service/config"
	"storefront-service/internal/api"
	"storefront-service/internal/auth"
	"storefront-service/internal/broker"
	"storefront-service/internal/notifier"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/store/memory"
	"storefront-service/internal/store/mongostore"
	"storefront-service/internal/store/postgres"
	"storefront-service/internal/util"
	"storefront-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Server.StoreBackend))

	tp, err := util.InitTracer("storefront-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	ctx := context.Background()

	db, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Store connected")

	readiness := []api.Pinger{db}

	var (
		cache   service.ProductCache
		guard   service.PlacementGuard
		revoker service.TokenRevoker
	)
	if cfg.Redis.Addr != "" {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		logger.Info("Redis connected")

		cache, guard, revoker = redisClient, redisClient, redisClient
		readiness = append(readiness, redisClient)
	}

	var (
		producer       *broker.Producer
		eventPublisher service.EventPublisher
	)
	if cfg.KafkaEnabled() {
		producer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		eventPublisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.Topic))
	}

	var mailer worker.Mailer
	if cfg.Notify.SenderEmail != "" {
		ses, err := notifier.NewSESNotifier(ctx, notifier.SESConfig{
			Region:          cfg.Notify.AWSRegion,
			AccessKeyID:     cfg.Notify.AWSAccessKeyID,
			SecretAccessKey: cfg.Notify.AWSSecretAccessKey,
			SenderEmail:     cfg.Notify.SenderEmail,
		})
		if err != nil {
			logger.Fatal("Failed to initialize SES notifier", zap.Error(err))
		}
		mailer = ses
	}

	orderFeed := notifier.NewOrderFeed(cfg.Server.AllowedOrigins)
	defer orderFeed.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)

	catalogService := service.NewCatalogService(db, cache, cfg.Business.ProductCacheTTL)
	ratingService := service.NewRatingService(db, catalogService)
	services := api.Services{
		Catalog:   catalogService,
		Carts:     service.NewCartService(db, db),
		Addresses: service.NewAddressService(db),
		Orders:    service.NewOrderService(db, db, guard, eventPublisher, cfg.Business.IdempotencyTTL),
		Reviews:   service.NewReviewService(db, db, ratingService, eventPublisher),
		Auth:      service.NewAuthService(db, tokens, revoker, cfg.Auth.AdminEmail),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var (
		notificationWorker *worker.NotificationWorker
		ratingWorker       *worker.RatingWorker
	)
	if cfg.KafkaEnabled() {
		notificationConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup+"-notifications")
		notificationWorker = worker.NewNotificationWorker(notificationConsumer, db, mailer, orderFeed)
		go func() {
			if err := notificationWorker.Start(workerCtx); err != nil {
				logger.Error("Notification worker error", zap.Error(err))
			}
		}()

		ratingConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup+"-ratings")
		ratingWorker = worker.NewRatingWorker(ratingConsumer, ratingService)
		go func() {
			if err := ratingWorker.Start(workerCtx); err != nil {
				logger.Error("Rating worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, orderFeed, cfg.Server.AllowedOrigins, readiness...)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if notificationWorker != nil {
		notificationWorker.Stop()
	}
	if ratingWorker != nil {
		ratingWorker.Stop()
	}

	logger.Info("Server exited")
}

// openStore connects the configured persistence backend
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Server.StoreBackend {
	case "memory":
		return memory.New(), nil
	case "mongo":
		return mongostore.NewStore(ctx, cfg.Database.MongoURI, cfg.Database.MongoDatabase)
	case "postgres":
		db, err := postgres.NewStore(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Server.StoreBackend)
	}
}
