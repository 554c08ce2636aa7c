package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/cinecat/cinecat-engine/pkg/version"
)

// Config holds all configuration for cinecat-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// Version is the running API version ("MAJOR.MINOR.PATCH"). Bumped every
	// time the prompt templates change, so cached queries from older prompt
	// generations are never reused.
	Version string `yaml:"version" env:"API_VERSION" env-default:"1.1.14"`

	// VersionKey is Version in the fixed-width cache partition form
	// ("001.001.014"). Derived at load time.
	VersionKey string `yaml:"-"`

	// APIKey protects the search endpoint (X-API-Key header).
	APIKey string `yaml:"-" env:"TEXT2SQL_API_KEY"` // Secret - not in YAML

	// Database configuration (PostgreSQL: media catalog, reference tables
	// and the query cache live in the same database).
	Database DatabaseConfig `yaml:"database"`

	// Vector similarity store (Chroma-compatible REST endpoint).
	Vector VectorConfig `yaml:"vector"`

	// LLM collaborator endpoints.
	LLM LLMConfig `yaml:"llm"`

	// Cache resolution tuning.
	Cache CacheConfig `yaml:"cache"`

	// MigrationsPath is the directory holding SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"cinecat"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"cinecat"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// URL builds a connection string for pgx.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// VectorConfig holds the vector similarity store endpoint.
type VectorConfig struct {
	BaseURL string `yaml:"base_url" env:"VECTOR_BASE_URL" env-default:"http://localhost:8500"`

	// QuestionsCollection stores anonymized question embeddings.
	QuestionsCollection string `yaml:"questions_collection" env:"VECTOR_QUESTIONS_COLLECTION" env-default:"anonymized_queries"`

	TimeoutSeconds int `yaml:"timeout_seconds" env:"VECTOR_TIMEOUT_SECONDS" env-default:"30"`
}

// LLMConfig holds LLM collaborator configuration.
// Per-request model overrides select the concrete client; these are the
// defaults and credentials.
type LLMConfig struct {
	OpenAIBaseURL   string `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`    // Secret - not in YAML
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML

	ExtractionModel string `yaml:"extraction_model" env:"LLM_EXTRACTION_MODEL" env-default:"gpt-4o"`
	Text2SQLModel   string `yaml:"text2sql_model" env:"LLM_TEXT2SQL_MODEL" env-default:"gpt-4o"`

	// TimeoutSeconds bounds a single collaborator call.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"120"`
}

// CacheConfig holds cache resolution tuning.
type CacheConfig struct {
	// SimilarityThreshold is the maximum embedding distance accepted for an
	// anonymized-question cache hit.
	SimilarityThreshold float64 `yaml:"similarity_threshold" env:"CACHE_SIMILARITY_THRESHOLD" env-default:"0.15"`

	// NeighborCount is how many nearest neighbors are scanned per lookup.
	NeighborCount int `yaml:"neighbor_count" env:"CACHE_NEIGHBOR_COUNT" env-default:"10"`

	RowsPerPage    int `yaml:"rows_per_page" env:"ROWS_PER_PAGE" env-default:"50"`
	MaxRowsPerPage int `yaml:"max_rows_per_page" env:"MAX_ROWS_PER_PAGE" env-default:"500"`
}

// Load reads configuration and validates everything the process cannot run
// without. A failure here is fatal: the server must not reach the database
// or spend tokens while misconfigured.
func Load() (*Config, error) {
	cfg := &Config{}

	// Load config from YAML file with environment variable overrides.
	// A missing config.yaml is fine; env vars and defaults take over.
	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	key, err := version.Format(cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid api version: %w", err)
	}
	cfg.VersionKey = key

	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TEXT2SQL_API_KEY is required")
	}
	if c.Cache.RowsPerPage <= 0 {
		return fmt.Errorf("rows_per_page must be positive, got %d", c.Cache.RowsPerPage)
	}
	if c.Cache.SimilarityThreshold <= 0 {
		return fmt.Errorf("similarity_threshold must be positive, got %f", c.Cache.SimilarityThreshold)
	}
	if c.Cache.NeighborCount <= 0 {
		return fmt.Errorf("neighbor_count must be positive, got %d", c.Cache.NeighborCount)
	}
	return nil
}
