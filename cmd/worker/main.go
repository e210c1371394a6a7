package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"github.com/socialchef/gramz/internal/config"
	"github.com/socialchef/gramz/internal/db"
	"github.com/socialchef/gramz/internal/logger"
	"github.com/socialchef/gramz/internal/metrics"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/recipes"
	"github.com/socialchef/gramz/internal/sentry"
	"github.com/socialchef/gramz/internal/services/openai"
	"github.com/socialchef/gramz/internal/services/textgen"
	"github.com/socialchef/gramz/internal/supabase"
	"github.com/socialchef/gramz/internal/telemetry"
	"github.com/socialchef/gramz/internal/worker"
)

func main() {
	defer sentry.Recover()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireRedis(); err != nil {
		log.Fatalf("Invalid worker config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		headers := telemetry.ParseHeaders(cfg.OtelExporterOTLPHeaders)
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName+"-worker", cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, headers)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName+"-worker", cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else {
		defer sentry.Flush(2 * time.Second)
	}

	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	slog.SetDefault(logger.New(cfg.Env))

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseTracing)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	openaiClient := openai.NewClient(cfg.OpenAIKey, openai.WithEmbeddingModel(cfg.Chat.EmbeddingModel))
	textProvider, err := textgen.NewProvider(ctx, cfg.TextGeneration, textgen.Keys{Gemini: cfg.GeminiKey, Groq: cfg.GroqKey}, openaiClient)
	if err != nil {
		log.Fatalf("Failed to create text provider: %v", err)
	}

	writeMode, err := recipes.ParseWriteMode(cfg.Recipes.WriteMode)
	if err != nil {
		log.Fatalf("Invalid recipes config: %v", err)
	}

	supabaseClient := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	processor := worker.NewProcessor(
		textProvider,
		preferences.NewStore(supabaseClient),
		recipes.NewPersister(db.NewStore(pool), openaiClient, writeMode),
		supabaseClient,
	)

	workerMetrics, err := worker.NewWorkerMetrics()
	if err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	srv, err := worker.NewServer(cfg.RedisURL, 10)
	if err != nil {
		log.Fatalf("Failed to create worker: %v", err)
	}

	mux := worker.NewServeMux(processor.Handlers(),
		worker.SentryMiddleware,
		worker.OTelMiddleware,
		asynq.MiddlewareFunc(workerMetrics.Middleware),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutting down worker...")
		srv.Shutdown()
	}()

	slog.Info("Starting worker")

	if err := srv.Run(mux); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
