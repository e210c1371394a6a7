package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	DatabaseURL     string
	DatabaseTracing bool

	SupabaseURL            string
	SupabaseJWTSecret      string
	SupabaseServiceRoleKey string

	RedisURL string

	MongoURI      string
	MongoDatabase string

	OpenAIKey string
	GroqKey   string
	GeminiKey string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Chat           ChatConfig
	Search         SearchConfig
	Recipes        RecipesConfig
	TextGeneration TextGenerationConfig
	Cache          CacheConfig
}

// ChatConfig configures the function-calling chat provider and agent loop.
type ChatConfig struct {
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	MaxSteps       int    `yaml:"max_steps"`
	TurnTimeout    string `yaml:"turn_timeout"`
}

type SearchConfig struct {
	MatchThreshold float64
	MatchCount     int
	Expansion      string

	// thresholdSet records an explicit match_threshold, which may be 0.
	thresholdSet bool
}

type searchYAML struct {
	MatchThreshold *float64 `yaml:"match_threshold"`
	MatchCount     int      `yaml:"match_count"`
	Expansion      string   `yaml:"expansion"`
}

type RecipesConfig struct {
	WriteMode string `yaml:"write_mode"`
}

type TextGenerationConfig struct {
	Provider         string `yaml:"provider"`
	Model            string `yaml:"model"`
	FallbackEnabled  bool   `yaml:"fallback_enabled"`
	FallbackProvider string `yaml:"fallback_provider"`
}

type CacheConfig struct {
	RecipeListTTL string `yaml:"recipe_list_ttl"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		SupabaseURL:              os.Getenv("SUPABASE_URL"),
		SupabaseJWTSecret:        os.Getenv("SUPABASE_JWT_SECRET"),
		SupabaseServiceRoleKey:   os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		MongoURI:                 os.Getenv("MONGODB_URI"),
		MongoDatabase:            os.Getenv("MONGODB_DATABASE"),
		OpenAIKey:                os.Getenv("OPENAI_API_KEY"),
		GroqKey:                  os.Getenv("GROQ_API_KEY"),
		GeminiKey:                os.Getenv("GEMINI_API_KEY"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
	}
	cfg.DatabaseTracing, _ = strconv.ParseBool(os.Getenv("DATABASE_TRACING"))

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "gramz"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "gramz"
	}

	cfg.SetDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Chat           ChatConfig           `yaml:"chat"`
		Search         searchYAML           `yaml:"search"`
		Recipes        RecipesConfig        `yaml:"recipes"`
		TextGeneration TextGenerationConfig `yaml:"text_generation"`
		Cache          CacheConfig          `yaml:"cache"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Chat.Model != "" {
		c.Chat.Model = yamlConfig.Chat.Model
	}
	if yamlConfig.Chat.EmbeddingModel != "" {
		c.Chat.EmbeddingModel = yamlConfig.Chat.EmbeddingModel
	}
	if yamlConfig.Chat.MaxSteps > 0 {
		c.Chat.MaxSteps = yamlConfig.Chat.MaxSteps
	}
	if yamlConfig.Chat.TurnTimeout != "" {
		c.Chat.TurnTimeout = yamlConfig.Chat.TurnTimeout
	}

	if yamlConfig.Search.MatchThreshold != nil {
		c.Search.MatchThreshold = *yamlConfig.Search.MatchThreshold
		c.Search.thresholdSet = true
	}
	if yamlConfig.Search.MatchCount > 0 {
		c.Search.MatchCount = yamlConfig.Search.MatchCount
	}
	if yamlConfig.Search.Expansion != "" {
		c.Search.Expansion = yamlConfig.Search.Expansion
	}

	if yamlConfig.Recipes.WriteMode != "" {
		c.Recipes.WriteMode = yamlConfig.Recipes.WriteMode
	}

	if yamlConfig.TextGeneration.Provider != "" {
		c.TextGeneration.Provider = yamlConfig.TextGeneration.Provider
	}
	if yamlConfig.TextGeneration.Model != "" {
		c.TextGeneration.Model = yamlConfig.TextGeneration.Model
	}
	if yamlConfig.TextGeneration.FallbackEnabled {
		c.TextGeneration.FallbackEnabled = true
	}
	if yamlConfig.TextGeneration.FallbackProvider != "" {
		c.TextGeneration.FallbackProvider = yamlConfig.TextGeneration.FallbackProvider
	}

	if yamlConfig.Cache.RecipeListTTL != "" {
		c.Cache.RecipeListTTL = yamlConfig.Cache.RecipeListTTL
	}

	return nil
}

// SetDefaults fills every unset structured option.
func (c *Config) SetDefaults() {
	if c.Chat.Model == "" {
		c.Chat.Model = "gpt-4o-mini"
	}
	if c.Chat.EmbeddingModel == "" {
		c.Chat.EmbeddingModel = "text-embedding-3-small"
	}
	if c.Chat.MaxSteps <= 0 {
		c.Chat.MaxSteps = 6
	}
	if c.Chat.TurnTimeout == "" {
		c.Chat.TurnTimeout = "60s"
	}
	if !c.Search.thresholdSet && c.Search.MatchThreshold <= 0 {
		c.Search.MatchThreshold = 0.4
	}
	if c.Search.MatchCount <= 0 {
		c.Search.MatchCount = 7
	}
	if c.Search.Expansion == "" {
		c.Search.Expansion = "swedish_suffix"
	}
	if c.Recipes.WriteMode == "" {
		c.Recipes.WriteMode = "transactional"
	}
	if c.TextGeneration.Provider == "" {
		c.TextGeneration.Provider = "gemini"
	}
	if c.TextGeneration.FallbackProvider == "" {
		c.TextGeneration.FallbackProvider = "openai"
	}
	if c.Cache.RecipeListTTL == "" {
		c.Cache.RecipeListTTL = "10m"
	}
}

// TurnTimeoutDuration parses Chat.TurnTimeout, falling back to one minute.
func (c *Config) TurnTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Chat.TurnTimeout)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// RecipeListTTLDuration parses Cache.RecipeListTTL, falling back to ten minutes.
func (c *Config) RecipeListTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.Cache.RecipeListTTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	switch c.Recipes.WriteMode {
	case "transactional", "compensating", "best_effort":
	default:
		return fmt.Errorf("unknown recipes.write_mode %q", c.Recipes.WriteMode)
	}
	if c.Search.MatchThreshold < 0 || c.Search.MatchThreshold > 1 {
		return fmt.Errorf("search.match_threshold must be within [0,1], got %v", c.Search.MatchThreshold)
	}
	return nil
}

// RequireRedis reports an error when no Redis URL is configured. The API
// runs without Redis; the task worker does not.
func (c *Config) RequireRedis() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	return nil
}
