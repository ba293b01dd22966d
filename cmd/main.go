package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"onlinestore/internal/app/store/config"
	"onlinestore/internal/app/store/entity"
	"onlinestore/internal/app/store/handler"
	"onlinestore/internal/app/store/processor"
	"onlinestore/internal/app/store/repository"
	"onlinestore/internal/app/store/service"
	"onlinestore/internal/app/store/util"
	"onlinestore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("online-store", logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "online-store", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	if err := migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	redisClient, err := util.NewRedisClient(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	productService := service.NewProductService(productRepo, redisClient, kafkaProducer)
	customerService := service.NewCustomerService(customerRepo)
	reviewService := service.NewReviewService(reviewRepo, productRepo, redisClient, kafkaProducer)

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	syncMiddleware := handler.NewSyncMiddleware(customerService)
	productHandler := handler.NewProductHandler(productService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	router := handler.SetupRoutes(productHandler, reviewHandler, authMiddleware, syncMiddleware)

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()

	ratingScheduler := processor.NewRatingScheduler(reviewService)
	if err := ratingScheduler.Start(schedulerCtx, cfg.Scheduler.RatingsSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start rating scheduler")
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Online Store Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Online Store Service...")

	ratingScheduler.Stop()
	schedulerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Online Store Service stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else {
				pingErr := sqlDB.Ping()
				if pingErr != nil {
					err = pingErr
				} else {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					sqlDB.SetConnMaxIdleTime(1 * time.Minute)
					return db, nil
				}
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// migrate создает схему БД. Таблица связей subject -> customer не является
// gorm-моделью, поэтому создается отдельным DDL
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.Product{}, &entity.Customer{}, &entity.Review{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS customer_oidc_links (
			subject_id  UUID PRIMARY KEY,
			customer_id UUID NOT NULL REFERENCES customers (id)
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create customer_oidc_links: %w", err)
	}

	return nil
}
