package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"petcare-inventory-api/internal/auth"
	"petcare-inventory-api/internal/cache"
	"petcare-inventory-api/internal/config"
	"petcare-inventory-api/internal/events"
	"petcare-inventory-api/internal/handler"
	"petcare-inventory-api/internal/middleware"
	"petcare-inventory-api/internal/repository"
	"petcare-inventory-api/internal/router"
	"petcare-inventory-api/internal/service"
	"petcare-inventory-api/internal/storage"
	"petcare-inventory-api/pkg/logger"

	"go.uber.org/zap"
)

// devJWTSecret is only used when JWT_SECRET is unset in development.
const devJWTSecret = "petcare-dev-secret"

func main() {
	cfg := config.MustLoad()

	log := logger.New(cfg.App.Environment)
	defer log.Sync()

	log.Info("starting inventory API",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	inventoryRepo, err := openRepository(cfg, log)
	if err != nil {
		return err
	}
	inventoryRepo = withCache(cfg, inventoryRepo, log)
	defer inventoryRepo.Close()

	publisher := newPublisher(cfg, log)
	defer publisher.Close()

	photoStore, err := storage.NewDiskStore(cfg.Storage.UploadDir, cfg.Storage.URLPrefix)
	if err != nil {
		return fmt.Errorf("failed to initialize photo storage: %w", err)
	}

	secret, err := jwtSecret(cfg, log)
	if err != nil {
		return err
	}

	// Services
	inventoryService := service.NewInventoryService(inventoryRepo, publisher, log)
	photoService := service.NewPhotoService(photoStore, log)
	janitor := service.NewPhotoJanitor(inventoryRepo, photoStore, service.JanitorConfig{
		Interval: cfg.Cleanup.Interval,
		MinAge:   cfg.Cleanup.MinAge,
	}, log)
	if cfg.Cleanup.Interval > 0 {
		janitor.Start()
		defer janitor.Stop()
		log.Info("photo janitor started", zap.Duration("interval", cfg.Cleanup.Interval))
	}

	// Handlers
	r := router.New(router.Config{
		Handler:          handler.New(cfg.App.Name, cfg.App.Version, inventoryRepo),
		InventoryHandler: handler.NewInventoryHandler(inventoryService, log),
		PhotoHandler:     handler.NewPhotoHandler(photoService, cfg.Storage.MaxBytes, log),
		IdentityHandler:  handler.NewIdentityHandler(),
		AdminHandler: handler.NewAdminHandler(handler.AdminConfig{
			InventoryService: inventoryService,
			InventoryRepo:    inventoryRepo,
			Janitor:          janitor,
			DBType:           cfg.InventoryDB.Type,
			Logger:           log,
		}),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthConfig{
			Validator: auth.NewValidator(secret),
			Logger:    log,
		}),
		Photos:      photoStore.Handler(),
		PhotoPrefix: strings.TrimRight(cfg.Storage.URLPrefix, "/") + "/" + storage.PhotoDir,
		AdminRole:   cfg.Auth.AdminRole,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openRepository(cfg *config.Config, log *zap.Logger) (repository.InventoryRepository, error) {
	db := cfg.InventoryDB

	switch db.Type {
	case "mongodb", "mongo":
		repo, err := repository.NewMongoDBInventoryRepository(db.MongoURI, db.MongoDatabase, db.MongoCollection, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
		return repo, nil
	case "postgres", "postgresql":
		repo, err := repository.NewPostgresInventoryRepository(db.PostgresDSN(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return repo, nil
	case "mysql":
		repo, err := repository.NewMySQLInventoryRepository(db.MySQLDSN(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MySQL: %w", err)
		}
		return repo, nil
	case "memory":
		log.Warn("using in-memory inventory repository; data is lost on restart")
		return repository.NewMemoryInventoryRepository(), nil
	case "sqlite", "":
		repo, err := repository.NewSQLiteInventoryRepository(db.Path, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown INVENTORY_DB_TYPE %q", db.Type)
	}
}

// withCache wraps repo in a read cache. A Redis cache that cannot be
// reached is skipped rather than failing startup.
func withCache(cfg *config.Config, repo repository.InventoryRepository, log *zap.Logger) repository.InventoryRepository {
	var c cache.Cache

	switch cfg.Cache.Type {
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.RedisPrefix,
		})
		if err != nil {
			log.Warn("Redis cache unavailable, serving uncached", zap.Error(err))
			return repo
		}
		c = rc
		log.Info("Redis cache initialized", zap.String("addr", cfg.Cache.RedisAddress()))
	case "memory":
		c = cache.NewMemoryCache(time.Minute)
		log.Info("memory cache initialized")
	default:
		return repo
	}

	return repository.NewCachedInventoryRepository(repo, c, cfg.Cache.TTL, log)
}

func newPublisher(cfg *config.Config, log *zap.Logger) events.Publisher {
	var brokers []string
	for _, b := range cfg.Events.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return events.NewLogPublisher(log)
	}

	p, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers: brokers,
		Topic:   cfg.Events.KafkaTopic,
		Retries: cfg.Events.KafkaRetries,
	}, log)
	if err != nil {
		log.Warn("Kafka unavailable, change events will only be logged", zap.Error(err))
		return events.NewLogPublisher(log)
	}
	log.Info("Kafka publisher initialized", zap.Strings("brokers", brokers), zap.String("topic", cfg.Events.KafkaTopic))
	return p
}

func jwtSecret(cfg *config.Config, log *zap.Logger) (string, error) {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret, nil
	}
	if !cfg.App.IsDevelopment() {
		return "", fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", cfg.App.Environment)
	}
	log.Warn("JWT_SECRET not set, using the development secret")
	return devJWTSecret, nil
}
