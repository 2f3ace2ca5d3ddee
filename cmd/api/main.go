// Package main is the entry point for the honeypot API server.
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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/decoylabs/scam-honeypot/internal/config"
	"github.com/decoylabs/scam-honeypot/internal/detector"
	"github.com/decoylabs/scam-honeypot/internal/engage"
	"github.com/decoylabs/scam-honeypot/internal/handler"
	"github.com/decoylabs/scam-honeypot/internal/llm"
	"github.com/decoylabs/scam-honeypot/internal/middleware"
	natsclient "github.com/decoylabs/scam-honeypot/internal/nats"
	"github.com/decoylabs/scam-honeypot/internal/service"
	"github.com/decoylabs/scam-honeypot/internal/store"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
	"github.com/decoylabs/scam-honeypot/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting honeypot server", zap.String("service", cfg.ServiceName))

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, cfg.ServiceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS when configured; intel eventing is optional.
	var nc *natsclient.Client
	if cfg.NATSURL != "" {
		nc, err = natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer nc.Close()
	}

	intelPublisher := natsclient.NewIntelPublisher(nc, log)
	if err := intelPublisher.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure intel stream", zap.Error(err))
		os.Exit(1)
	}

	// Initialize the optional LLM capability; the detector and reply
	// generator fall back to heuristics/templates without it.
	var llmClient llm.Client
	switch {
	case cfg.DefaultLLM == string(llm.ProviderAnthropic) && cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	}
	if err != nil {
		log.Warn("failed to create LLM client, running in fallback-only mode", zap.Error(err))
		llmClient = nil
	}

	var classifier detector.Classifier
	if llmClient != nil {
		classifier = detector.NewLLMClassifier(llmClient, cfg.DetectorModel, cfg.LLMTimeout)
		log.Info("external classifier enabled", zap.String("provider", llmClient.Name()))
	}

	// Initialize services
	conversationStore := store.New(cfg.StateTTL, log)
	det := detector.New(detector.Config{
		ScamThreshold:        cfg.ScamThreshold,
		HarvestHintThreshold: cfg.HarvestHintThreshold,
	}, classifier, log)
	gen := engage.NewGenerator(llmClient, cfg.AgentModel, cfg.LLMTimeout, log)
	engagementSvc := service.NewEngagementService(conversationStore, det, gen, intelPublisher, cfg.MaxTurns, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(cfg.ServiceName, nc)
	webhookHandler := handler.NewWebhookHandler(engagementSvc, log)
	conversationHandler := handler.NewConversationHandler(engagementSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Relay webhook
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Post("/webhook", webhookHandler.Receive)
	})

	// Operator review API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Use(middleware.RequireScope("intel:read"))

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)
			r.Get("/{id}", conversationHandler.Get)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
