// Package main is the entry point for the Skedy Escalation Service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/skedy/escalation-service/internal/api/handlers"
	"github.com/skedy/escalation-service/internal/api/middleware"
	"github.com/skedy/escalation-service/internal/api/routes"
	"github.com/skedy/escalation-service/internal/channels/whatsapp"
	"github.com/skedy/escalation-service/internal/config"
	"github.com/skedy/escalation-service/internal/core/cache"
	"github.com/skedy/escalation-service/internal/core/docdb"
	openaiclient "github.com/skedy/escalation-service/internal/infrastructure/ai/openai"
	rediscache "github.com/skedy/escalation-service/internal/infrastructure/cache/redis"
	"github.com/skedy/escalation-service/internal/infrastructure/docdb/mongodb"
	"github.com/skedy/escalation-service/internal/pkg/metrics"
	"github.com/skedy/escalation-service/internal/services/escalation"
	"github.com/skedy/escalation-service/internal/services/language"
	"github.com/skedy/escalation-service/internal/services/notify"
	"github.com/skedy/escalation-service/internal/services/proxy"
	"github.com/skedy/escalation-service/internal/services/sentiment"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Log)

	ctx := context.Background()

	// Initialize cache client
	cacheClient, err := createCacheClient(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache client")
	}
	defer cacheClient.Close()

	// Initialize document db client
	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	defer docDBClient.Close(ctx)

	// Ensure database indexes
	if err := docDBClient.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	m := metrics.New()
	logger := log.Logger

	// Initialize classifier client
	aiClient, err := openaiclient.NewClient(&openaiclient.ClientConfig{
		BaseURL: cfg.OpenAI.BaseURL,
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		HTTPClient: &http.Client{
			Timeout: cfg.OpenAI.RequestTimeout,
		},
		Metrics: m,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize AI client")
	}

	// Initialize outbound WhatsApp sender
	sender, err := whatsapp.NewGraphSender(&whatsapp.Config{
		BaseURL:       cfg.WhatsApp.BaseURL,
		APIVersion:    cfg.WhatsApp.APIVersion,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		AccessToken:   cfg.WhatsApp.AccessToken,
		HTTPClient: &http.Client{
			Timeout: cfg.WhatsApp.Timeout,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize WhatsApp sender")
	}

	// Sentiment classification with Redis-backed caching
	sentimentService := sentiment.NewService(
		openaiclient.NewSentimentClassifier(aiClient),
		cacheClient,
		cfg.Cache.SentimentTTL,
		m,
		logger,
	)

	// Escalation decision engine
	detector := escalation.NewDetector(openaiclient.NewIntentClassifier(aiClient), logger)
	frustration := escalation.NewFrustrationAnalyzer(sentimentService, escalation.FrustrationConfig{
		Threshold:     cfg.Escalation.FrustrationThreshold,
		HistoryWindow: cfg.Escalation.SentimentHistoryWindow,
		NoStaffWindow: cfg.Escalation.NoStaffWindow,
	}, m, logger)
	dispatcher := notify.NewDispatcher(docDBClient, sender, notify.Config{
		SiteBaseURL:         cfg.Escalation.SiteBaseURL,
		FallbackPhone:       cfg.WhatsApp.BusinessFallbackNumber,
		TemplateName:        cfg.WhatsApp.EscalationTemplateName,
		HistoryLength:       cfg.Escalation.NotificationHistoryLength,
		RetryBaseDelay:      cfg.Escalation.RetryBaseDelay,
		RetryMaxDelay:       cfg.Escalation.RetryMaxDelay,
		MaxDeliveryAttempts: cfg.Escalation.MaxDeliveryAttempts,
	}, m, logger)
	engine := escalation.NewEngine(detector, frustration, dispatcher, m, logger)

	// Language resolution
	languageService := language.NewService(openaiclient.NewLanguageClassifier(aiClient), language.Config{
		ShortMessageLength: cfg.Escalation.ShortMessageLength,
		SwitchConfidence:   cfg.Escalation.LanguageSwitchConfidence,
	}, m, logger)

	// Proxy takeover
	proxyManager := proxy.NewManager(docDBClient, sender, cfg.Escalation.ProxyMaxDuration, m, logger)
	proxyRouter := proxy.NewRouter(proxyManager, docDBClient, sender, logger)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Setup router
	router := gin.New()
	loggingMw := middleware.NewLoggingMiddlewareWithLogger(logger)
	errorMw := middleware.NewErrorMiddleware()

	routesCfg := &routes.Config{
		HealthHandler: handlers.NewHealthHandler(cacheClient, docDBClient),
		EscalationHandler: handlers.NewEscalationHandler(
			docDBClient,
			engine,
			languageService,
			proxyRouter,
			int64(cfg.Escalation.SentimentHistoryWindow),
			logger,
		),
		NotificationsHandler: handlers.NewNotificationsHandler(docDBClient, proxyManager),
	}
	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw)

	// Create HTTP server
	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// createCacheClient creates a cache client based on the configuration.
func createCacheClient(cfg config.CacheConfig) (*rediscache.Client, error) {
	switch cache.Type(cfg.Type) {
	case cache.TypeRedis:
		return rediscache.NewClient(rediscache.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Password:   cfg.Password,
			DB:         cfg.DB,
			DefaultTTL: cfg.SentimentTTL,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported cache type")
		return nil, nil
	}
}

// createDocDBClient creates a document database client based on the configuration.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	docDBType := docdb.Type(cfg.Type)

	switch docDBType {
	case docdb.TypeMongoDB:
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported docdb type")
		return nil, nil
	}
}
