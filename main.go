package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"culturaviva-api/internal/config"
	"culturaviva-api/internal/items"
	itemsapi "culturaviva-api/internal/items/api"
	itemsdb "culturaviva-api/internal/items/db"
	"culturaviva-api/internal/kafka"
	"culturaviva-api/internal/logger"
	"culturaviva-api/internal/models"
	"culturaviva-api/internal/stats"
	statsapi "culturaviva-api/internal/stats/api"
	statsdb "culturaviva-api/internal/stats/db"
	"culturaviva-api/internal/users"
	usersapi "culturaviva-api/internal/users/api"
	usersdb "culturaviva-api/internal/users/db"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*mongo.Database, *redis.Client) {
	var client *mongo.Client
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to MongoDB (attempt %d/%d)", i+1, maxRetries))

		connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
		client, err = mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err == nil {
			err = client.Ping(connectCtx, nil)
		}
		cancel()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to MongoDB after %d attempts: %v", maxRetries, err))
	}
	log.Info("DATABASE", "✅ MongoDB connection successful")

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return client.Database(cfg.Mongo.Database), redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting CulturaViva API initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("APP", "Verifying database connections")
	database, redisClient := verifyConnections(ctx, cfg, log)
	defer redisClient.Close()
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Client().Disconnect(disconnectCtx)
	}()

	statsStore := statsdb.NewDB(database)
	statsCache := stats.NewRedisCache(redisClient, cfg.Stats.CacheTTL)
	statsService := stats.NewService(statsStore, statsCache, log)

	// With Kafka enabled, engagement events flow through the broker and
	// the consumer below applies them to the counters. Without it the
	// feature services write the counters directly through the same
	// contract.
	var publisher items.EngagementPublisher = statsService
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topics.Engagement}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Failed to ensure topics exist: %v", err))
		}

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.Engagement)
		defer producer.Close()
		publisher = producer
		log.LogKafka("INIT", cfg.Kafka.Topics.Engagement, "producer initialized")

		consumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.Engagement, cfg.Kafka.GroupID, log)
		defer consumer.Close()
		go consumer.Start(ctx, func(event models.EngagementEvent) error {
			return statsService.Apply(ctx, event)
		})
		log.LogKafka("INIT", cfg.Kafka.Topics.Engagement, "engagement consumer started")
	} else {
		log.Warn("KAFKA", "Kafka disabled, applying engagement events synchronously")
	}

	itemService := items.NewService(itemsdb.NewDB(database), publisher)
	userService := users.NewService(usersdb.NewDB(database), publisher)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	itemsapi.NewHandler(itemService, log).RegisterRoutes(r)
	usersapi.NewHandler(userService, log).RegisterRoutes(r)
	statsapi.NewHandler(statsService, publisher, log).RegisterRoutes(r)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("APP", fmt.Sprintf("🚀 CulturaViva API on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("APP", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("APP", "Shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	log.Info("APP", "✅ CulturaViva API shutdown complete")
}
