// Package main provides the consultation bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/kentyisapen/line-chatbot-workshop/internal/bot"
	"github.com/kentyisapen/line-chatbot-workshop/internal/config"
	"github.com/kentyisapen/line-chatbot-workshop/internal/consult"
	"github.com/kentyisapen/line-chatbot-workshop/internal/line"
	"github.com/kentyisapen/line-chatbot-workshop/internal/logger"
	"github.com/kentyisapen/line-chatbot-workshop/internal/metrics"
	"github.com/kentyisapen/line-chatbot-workshop/internal/sentry"
	"github.com/kentyisapen/line-chatbot-workshop/internal/storage"
	"github.com/kentyisapen/line-chatbot-workshop/internal/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting consultation bot server")

	// Initialize error tracking (disabled when no token is configured)
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize error tracking")
	} else if sentry.IsEnabled() {
		log.Info("Error tracking initialized")
	}

	// Connect to database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", db.Path()).Info("Database connected")

	// Create Prometheus registry
	registry := prometheus.NewRegistry()

	// Register Go and process collectors
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	// Create metrics
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create LINE API client
	client, err := line.NewClient(line.ClientConfig{
		ChannelToken:        cfg.LineChannelToken,
		MaxMessagesPerReply: cfg.Bot.MaxMessagesPerReply,
		Logger:              log,
		Metrics:             m,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create LINE API client")
	}

	// Wire the consultation flow
	machine := consult.NewMachine(consult.MachineConfig{
		Store:   db,
		Sender:  client,
		Linker:  line.NewMenuLinker(db, client, log, m),
		Logger:  log,
		Metrics: m,
	})

	processor := bot.NewProcessor(bot.ProcessorConfig{
		Machine:   machine,
		BotConfig: &cfg.Bot,
		Logger:    log,
		Metrics:   m,
	})

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret: cfg.LineChannelSecret,
		BotConfig:     &cfg.Bot,
		Processor:     processor,
		Logger:        log,
		Metrics:       m,
	})
	log.Info("Webhook handler created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))

	// Setup routes
	setupRoutes(router, webhookHandler, db, registry)

	// Create HTTP server with timeouts tuned for webhook handling
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.WebhookHTTPRead,
		WriteTimeout: config.WebhookHTTPWrite,
		IdleTimeout:  config.WebhookHTTPIdle,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new webhooks first
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Drain in-flight event processing
	if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timeout waiting for event processing to drain")
	}

	// Flush buffered error reports
	if sentry.IsEnabled() {
		sentry.Flush(2 * time.Second)
	}

	// Close database connection
	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}
