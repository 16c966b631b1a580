// Package main is the entry point for the telstock API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"telstock/internal/config"
	"telstock/internal/domain/allocation"
	"telstock/internal/domain/auth"
	"telstock/internal/domain/catalogs/accessory"
	"telstock/internal/domain/catalogs/product"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/domain/inventory"
	"telstock/internal/domain/sales"
	"telstock/internal/infrastructure/cache"
	v1 "telstock/internal/infrastructure/http/v1"
	"telstock/internal/infrastructure/metrics"
	"telstock/internal/infrastructure/storage/postgres"
	"telstock/pkg/logger"
	"telstock/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting telstock server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN())
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Redis snapshot cache ---
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warnw("redis unavailable, hierarchy snapshot caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	snapshotCache := cache.NewSnapshotCache(redisClient, cfg.Redis.TTL, log.WithComponent("cache"))

	// --- Repositories ---
	userRepo := postgres.NewUserRepo(txManager)
	productRepo := postgres.NewProductRepo(txManager)
	accessoryRepo := postgres.NewAccessoryRepo(txManager)
	inventoryRepo := postgres.NewInventoryRepo(txManager)
	ledgerRepo := postgres.NewAllocationRepo(txManager)
	saleRepo := postgres.NewSaleRepo(txManager)

	// --- Services ---
	refs := numerator.NewWithResolver(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	userService := hierarchy.NewService(userRepo, snapshotCache)
	productService := product.NewService(productRepo)
	accessoryService := accessory.NewService(accessoryRepo, accessoryRepo)
	inventoryService := inventory.NewService(inventoryRepo, auditService)
	engine := allocation.NewEngine(ledgerRepo, inventoryRepo, userService, accessoryRepo, txManager, refs, auditService)
	salesService := sales.NewService(saleRepo, inventoryRepo, userService, txManager, refs, auditService)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	authService := auth.NewService(userService, jwtService)

	idempotencyStore := postgres.NewIdempotencyStore(txManager, 10*time.Minute)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		Pool:             pool,
		IdempotencyStore: idempotencyStore,
		Metrics:          metrics.New(),
		JWTValidator:     jwtService,
		AuthService:      authService,
		UserService:      userService,
		ProductService:   productService,
		AccessoryService: accessoryService,
		InventoryService: inventoryService,
		SalesService:     salesService,
		Engine:           engine,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
