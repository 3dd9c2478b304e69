package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomgate/internal/core/services"
	httphandlers "roomgate/internal/handlers/http"
	"roomgate/internal/infrastructure/filter"
	"roomgate/internal/infrastructure/middleware"
	"roomgate/internal/infrastructure/monitoring"
	"roomgate/internal/infrastructure/provider"
	"roomgate/internal/infrastructure/repositories"
	"roomgate/pkg/config"
	"roomgate/pkg/logger"
	"roomgate/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	// Tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Repositories
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	registry := repoFactory.CreateRoomRegistry()
	pendingQueue := repoFactory.CreatePendingQueue()
	handoffSlot := repoFactory.CreateHandoffSlot()
	snapshotStore := repoFactory.CreateSnapshotStore()

	// Membership filter, loaded from its persisted snapshot
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	membershipFilter, err := filter.Load(
		loadCtx,
		snapshotStore,
		cfg.Filter.SnapshotKey,
		cfg.Filter.ExpectedRooms,
		cfg.Filter.FalsePositiveRate,
		log,
	)
	loadCancel()
	if err != nil {
		log.Fatalw("failed to load membership filter", "error", err)
	}

	// Provider client and lifecycle reconciler
	roomProvider := provider.NewClient(provider.Config{
		Host:           cfg.Provider.Host,
		APIKey:         cfg.Provider.APIKey,
		APISecret:      cfg.Provider.APISecret,
		RequestTimeout: cfg.Provider.RequestTimeout,
	}, log)

	collector := monitoring.NewCollector(prometheus.DefaultRegisterer)

	credentialService := services.NewCredentialService(
		cfg.Provider.APIKey,
		cfg.Provider.APISecret,
		cfg.Admission.CredentialTTL,
	)
	lifecycleService := services.NewLifecycleService(registry, pendingQueue, roomProvider, collector, log)
	admissionService := services.NewAdmissionService(
		registry,
		pendingQueue,
		handoffSlot,
		membershipFilter,
		credentialService,
		lifecycleService,
		roomProvider,
		collector,
		log,
		cfg.Admission.HandoffTTL,
		cfg.Provider.JoinBaseURL,
	)

	// HTTP handlers
	roomHandler := httphandlers.NewRoomHandler(admissionService)
	webhookReceiver := provider.NewWebhookReceiver(cfg.Provider.APIKey, cfg.Provider.APISecret)
	webhookHandler := httphandlers.NewWebhookHandler(webhookReceiver, lifecycleService, log)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.NewRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	// Webhook endpoint authenticates with its own signature scheme
	webhookHandler.SetupRoutes(router)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	api.Use(middleware.ErrorHandlerMiddleware(log))
	roomHandler.SetupRoutes(api)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := repoFactory.HealthCheck(ctx); err != nil {
			c.JSON(503, gin.H{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting RoomGate server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down RoomGate server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer provider", "error", err)
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("RoomGate server stopped")
}
