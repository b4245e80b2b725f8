package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogapp "github.com/nfehub/backend/internal/application/catalog"
	distapp "github.com/nfehub/backend/internal/application/distribution"
	fiscalapp "github.com/nfehub/backend/internal/application/fiscal"
	partnerapp "github.com/nfehub/backend/internal/application/partner"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/infrastructure/cache"
	"github.com/nfehub/backend/internal/infrastructure/config"
	"github.com/nfehub/backend/internal/infrastructure/event"
	"github.com/nfehub/backend/internal/infrastructure/logger"
	"github.com/nfehub/backend/internal/infrastructure/persistence"
	"github.com/nfehub/backend/internal/infrastructure/sefaz"
	"github.com/nfehub/backend/internal/infrastructure/storage"
	"github.com/nfehub/backend/internal/interfaces/http/handler"
	"github.com/nfehub/backend/internal/interfaces/http/middleware"
	"github.com/nfehub/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting NFe Hub",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis backs the counters cache and the poll lock
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))

	countersCache := cache.NewRedisCountersCache(redisClient, cfg.Cache.CountersTTL)
	pollLocker := cache.NewRedisLocker(redisClient)

	// SEFAZ gateway for the distribution feed and manifestation events
	gateway, err := sefaz.NewHTTPGateway(&sefaz.Config{
		BaseURL:        cfg.Sefaz.BaseURL,
		Environment:    cfg.Sefaz.Environment,
		UFAuthor:       cfg.Sefaz.UFAuthor,
		TimeoutSeconds: cfg.Sefaz.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to initialize SEFAZ gateway", zap.Error(err))
	}

	// Raw XML archive in object storage
	archiver, err := storage.NewS3XMLArchiver(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize XML archiver", zap.Error(err))
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := archiver.EnsureBucket(ctx); err != nil {
			log.Warn("Could not ensure XML archive bucket", zap.Error(err))
		}
		cancel()
	}

	// Initialize repositories
	documentRepo := persistence.NewGormFiscalDocumentRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	pendingRepo := persistence.NewGormPendingNfeRepository(db.DB)
	eventRepo := persistence.NewGormManifestationEventRepository(db.DB)
	cursorRepo := persistence.NewGormCursorRepository(db.DB)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	countersInvalidation := event.NewCountersInvalidationHandler(countersCache, log)
	eventBus.Subscribe(countersInvalidation, countersInvalidation.EventTypes()...)

	log.Info("Event handlers registered",
		zap.Strings("counters_invalidation_events", countersInvalidation.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	reconEngine := fiscal.NewReconciliationEngine()
	var importOpts []fiscalapp.ImportServiceOption
	if cfg.Import.AutoRegisterSuppliers {
		importOpts = append(importOpts, fiscalapp.WithSupplierAutoRegistration())
	}
	importService := fiscalapp.NewImportService(documentRepo, supplierRepo, materialRepo, reconEngine, archiver, eventBus, log, importOpts...)
	documentService := fiscalapp.NewDocumentService(documentRepo, supplierRepo, materialRepo, reconEngine, countersCache, eventBus, log)
	manifestationService := distapp.NewManifestationService(pendingRepo, eventRepo, gateway, cfg.Sefaz.ReceiverCNPJ, eventBus, log)
	pollService := distapp.NewPollService(pendingRepo, cursorRepo, gateway, pollLocker, cfg.Sefaz.ReceiverCNPJ, cfg.Sefaz.PollLockTTL, eventBus, log)
	supplierService := partnerapp.NewSupplierService(supplierRepo, eventBus)
	materialService := catalogapp.NewMaterialService(materialRepo, eventBus)

	// Initialize HTTP handlers
	documentHandler := handler.NewDocumentHandler(importService, documentService)
	distributionHandler := handler.NewDistributionHandler(manifestationService, pollService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	materialHandler := handler.NewMaterialHandler(materialService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Every business route is tenant-scoped
	engine.Use(middleware.TenantWithConfig(middleware.TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/system", "/api/v1/ping"},
		Required:  true,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, redisClient))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(documentHandler).
		Register(distributionHandler).
		Register(supplierHandler).
		Register(materialHandler).
		Register(systemHandler)
	r.Setup()

	// Simple ping at root API level for basic liveness checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports database and redis connectivity
func healthHandler(db *persistence.Database, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)

		dbStatus := "ok"
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			dbStatus = "error"
		}

		redisStatus := "ok"
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			reqLog.Warn("Redis health check failed", zap.Error(err))
			redisStatus = "error"
		}

		status := http.StatusOK
		overall := "healthy"
		if dbStatus != "ok" || redisStatus != "ok" {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status":   overall,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"redis":    redisStatus,
		})
	}
}
