package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appingestion "github.com/caixo/backend/internal/application/ingestion"
	appledger "github.com/caixo/backend/internal/application/ledger"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/ai"
	"github.com/caixo/backend/internal/infrastructure/cache"
	"github.com/caixo/backend/internal/infrastructure/config"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"github.com/caixo/backend/internal/infrastructure/notify"
	"github.com/caixo/backend/internal/infrastructure/persistence"
	"github.com/caixo/backend/internal/infrastructure/persistence/tenant"
	"github.com/caixo/backend/internal/infrastructure/storage"
	"github.com/caixo/backend/internal/interfaces/http/handler"
	"github.com/caixo/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Caixô Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection with zap-backed GORM logging
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Tenant scoping: everything row-owned goes through the scoped store,
	// sender resolution and the shared catalog through the admin store.
	scopedDB := tenant.NewScopedDB(db.DB)
	adminDB := scopedDB.Admin()

	// Initialize repositories
	sessionRepo := persistence.NewGormSessionRepository(scopedDB)
	ruleRepo := persistence.NewGormLearnedRuleRepository(scopedDB)
	_ = persistence.NewGormTransactionRepository(scopedDB)
	_ = persistence.NewGormInstallmentRepository(scopedDB)
	ledgerScope := persistence.NewGormLedgerScope(scopedDB)
	catalogRepo := persistence.NewGormCatalogRepository(adminDB)
	userDirectory := persistence.NewGormUserDirectory(adminDB)
	tenantRepo := persistence.NewGormTenantRepository(adminDB)

	// Webhook delivery dedup: Redis when reachable, in-process otherwise
	var dedup shared.IdempotencyStore
	if redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, using in-memory webhook dedup", zap.Error(err))
		dedup = cache.NewInMemoryIdempotencyStore()
	} else {
		log.Info("Redis connected successfully")
		dedup = redisStore
	}
	defer func() {
		if err := dedup.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Attachment archive
	var archiver appingestion.Archiver
	if s3Archive, err := storage.NewS3Archive(&cfg.Storage, storage.WithLogger(log)); err != nil {
		log.Warn("Object storage not configured, archiving attachments in memory", zap.Error(err))
		archiver = storage.NewMemoryArchive()
	} else {
		bucketCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := s3Archive.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Failed to ensure archive bucket", zap.Error(err))
		}
		cancel()
		archiver = s3Archive
	}

	// AI adapters
	aiClient, err := ai.NewClient(context.Background(), cfg.AI, log)
	if err != nil {
		log.Fatal("Failed to initialize AI client", zap.Error(err))
	}

	// WhatsApp gateway
	gateway := notify.NewEvolutionClient(cfg.WhatsApp, log)
	fetcher := notify.NewMediaFetcher(cfg.WhatsApp.Timeout)

	// Application services
	writer := appledger.NewWriter(sessionRepo, ruleRepo, catalogRepo, ledgerScope)
	pipeline := appingestion.NewPipeline(
		userDirectory,
		tenantRepo,
		catalogRepo,
		ruleRepo,
		sessionRepo,
		aiClient,
		aiClient,
		gateway,
		archiver,
		fetcher,
	)

	dispatcherConfig := appingestion.DefaultDispatcherConfig()
	if cfg.Pipeline.Workers > 0 {
		dispatcherConfig.Workers = cfg.Pipeline.Workers
	}
	if cfg.Pipeline.QueueSize > 0 {
		dispatcherConfig.QueueSize = cfg.Pipeline.QueueSize
	}
	if cfg.Pipeline.MaxAttempts > 0 {
		dispatcherConfig.MaxAttempts = cfg.Pipeline.MaxAttempts
	}
	if cfg.Pipeline.RetryDelay > 0 {
		dispatcherConfig.RetryDelay = cfg.Pipeline.RetryDelay
	}
	dispatcher := appingestion.NewDispatcher(pipeline, dispatcherConfig, log)
	if err := dispatcher.Start(context.Background()); err != nil {
		log.Fatal("Failed to start ingestion dispatcher", zap.Error(err))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Health endpoints (outside API versioning)
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	engine.GET("/ready", readyHandler(db))

	webhookHandler := handler.NewWebhookHandler(userDirectory, dispatcher, writer, gateway, dedup)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(webhookHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop accepting requests first, then drain the
	// ingestion queue.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := dispatcher.Stop(ctx); err != nil {
		log.Error("Dispatcher did not drain in time", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// readyHandler reports readiness based on database connectivity
func readyHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.L(c.Request.Context()).Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unready",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
