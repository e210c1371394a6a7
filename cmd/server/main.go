package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"github.com/socialchef/gramz/internal/agent"
	"github.com/socialchef/gramz/internal/api"
	"github.com/socialchef/gramz/internal/cache"
	"github.com/socialchef/gramz/internal/config"
	"github.com/socialchef/gramz/internal/db"
	"github.com/socialchef/gramz/internal/logger"
	"github.com/socialchef/gramz/internal/metrics"
	"github.com/socialchef/gramz/internal/middleware"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/recipes"
	"github.com/socialchef/gramz/internal/sentry"
	"github.com/socialchef/gramz/internal/services/openai"
	"github.com/socialchef/gramz/internal/services/textgen"
	"github.com/socialchef/gramz/internal/session"
	"github.com/socialchef/gramz/internal/supabase"
	"github.com/socialchef/gramz/internal/telemetry"
	"github.com/socialchef/gramz/internal/timer"
	"github.com/socialchef/gramz/internal/validation"
	"github.com/socialchef/gramz/internal/worker"
	"go.opentelemetry.io/otel"
)

func main() {
	defer sentry.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		headers := telemetry.ParseHeaders(cfg.OtelExporterOTLPHeaders)
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, headers)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
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
	store := db.NewStore(pool)

	// Redis backs the recipe list cache and timers. Without it both fall
	// back to process memory.
	var redisClient *redis.Client
	var recipeCache cache.Cache = cache.NewMemoryCache()
	var timerStore timer.Store = timer.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to create Redis client: %v", err)
		}
		defer redisClient.Close()
		recipeCache = cache.NewRedisCache(redisClient, "gramz:")
		timerStore = timer.NewRedisStore(redisClient)
	}

	var sessions session.Repository
	if cfg.MongoURI != "" {
		mongoClient, err := session.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		sessions = session.NewMongoRepository(mongoClient.Database(cfg.MongoDatabase), session.DefaultCollection)
	} else {
		slog.Warn("MONGODB_URI not set, conversations are kept in memory only")
	}

	openaiClient := openai.NewClient(cfg.OpenAIKey,
		openai.WithChatModel(cfg.Chat.Model),
		openai.WithEmbeddingModel(cfg.Chat.EmbeddingModel),
	)

	textProvider, err := textgen.NewProvider(ctx, cfg.TextGeneration, textgen.Keys{Gemini: cfg.GeminiKey, Groq: cfg.GroqKey}, openaiClient)
	if err != nil {
		log.Fatalf("Failed to create text provider: %v", err)
	}

	supabaseClient := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	prefs := preferences.NewStore(supabaseClient)

	expander, err := recipes.ExpanderFor(cfg.Search.Expansion)
	if err != nil {
		log.Fatalf("Invalid search config: %v", err)
	}
	writeMode, err := recipes.ParseWriteMode(cfg.Recipes.WriteMode)
	if err != nil {
		log.Fatalf("Invalid recipes config: %v", err)
	}

	searcher := recipes.NewSearcher(store, openaiClient, expander, cfg.Search.MatchThreshold, cfg.Search.MatchCount)
	persister := recipes.NewPersister(store, openaiClient, writeMode)
	catalog := recipes.NewCatalog(store, recipeCache, cfg.RecipeListTTLDuration())
	drafter := recipes.NewDrafter(textProvider, prefs, validation.DefaultContentValidationConfig())
	timers := timer.NewService(timerStore, supabaseClient)

	dispatcher := agent.NewDispatcher(agent.Handlers{
		Timer:       timers,
		Searcher:    searcher,
		Persister:   persister,
		Categorizer: recipes.NewCategorizer(textProvider),
		OnStored:    catalog,
		Preferences: prefs,
	})
	chatAgent := agent.New(openaiClient, dispatcher, agent.Options{
		Model:       cfg.Chat.Model,
		MaxSteps:    cfg.Chat.MaxSteps,
		TurnTimeout: cfg.TurnTimeoutDuration(),
	})

	deps := api.Deps{
		Agent:       chatAgent,
		Sessions:    session.NewRegistry(sessions, prefs),
		Searcher:    searcher,
		Catalog:     catalog,
		Drafter:     drafter,
		Preferences: prefs,
		Timers:      timers,
	}

	// Asynq client for enqueuing tasks
	if cfg.RedisURL != "" {
		asynqClient, err := worker.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to create task client: %v", err)
		}
		defer asynqClient.Close()
		deps.Queue = asynqClient
	}

	apiServer := api.NewServer(deps)

	r := chi.NewRouter()

	r.Use(otelchi.Middleware(cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig(cfg.ServiceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(sentry.HTTPMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg))
		apiServer.Mount(r)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting server", "port", cfg.Port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
