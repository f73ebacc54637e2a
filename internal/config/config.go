package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/croftt/kbchat-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// External service configurations
	KBConnectorCfg    KBConnectorConfig    `envPrefix:"KB_"`
	ModelConnectorCfg ModelConnectorConfig `envPrefix:"MODEL_"`

	// Chat history configuration
	ChatHistoryCfg ChatHistoryConfig `envPrefix:"CHAT_"`

	// Diagnostics database: the knowledge base's backing store. Only the
	// kb-diagnose tooling needs it; the server runs without a database.
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"5"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// KBConnectorConfig addresses the hosted knowledge-base retrieval service.
type KBConnectorConfig struct {
	HTTPClientConfig
	KnowledgeBaseID string              `env:"ID,notEmpty"`
	DataSourceID    string              `env:"DATA_SOURCE_ID"`
	TopK            int                 `env:"TOP_K" envDefault:"3"`
	Poll            pkgRetry.PollConfig `envPrefix:"POLL_"`
}

// ModelConnectorConfig addresses the hosted model-inference service and
// carries the default generation parameters.
type ModelConnectorConfig struct {
	HTTPClientConfig
	DefaultModelID string  `env:"ID" envDefault:"anthropic.claude-3-haiku-20240307-v1:0"`
	Temperature    float64 `env:"TEMPERATURE" envDefault:"0.1"`
	TopP           float64 `env:"TOP_P" envDefault:"1"`
	MaxTokens      int     `env:"MAX_TOKENS" envDefault:"512"`
}

// ChatHistoryConfig bounds the in-memory session history store.
type ChatHistoryConfig struct {
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.ModelConnectorCfg.Temperature < 0 || cfg.ModelConnectorCfg.Temperature > 1 {
		errs = append(errs, fmt.Sprintf("MODEL_TEMPERATURE must be in [0,1], got %g", cfg.ModelConnectorCfg.Temperature))
	}

	if cfg.ModelConnectorCfg.TopP < 0 || cfg.ModelConnectorCfg.TopP > 1 {
		errs = append(errs, fmt.Sprintf("MODEL_TOP_P must be in [0,1], got %g", cfg.ModelConnectorCfg.TopP))
	}

	if cfg.ModelConnectorCfg.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("MODEL_MAX_TOKENS must be positive, got %d", cfg.ModelConnectorCfg.MaxTokens))
	}

	if cfg.KBConnectorCfg.TopK < 1 || cfg.KBConnectorCfg.TopK > 100 {
		errs = append(errs, fmt.Sprintf("KB_TOP_K must be between 1 and 100, got %d", cfg.KBConnectorCfg.TopK))
	}

	if cfg.ChatHistoryCfg.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("CHAT_SESSION_TTL must be at least 1m, got %s", cfg.ChatHistoryCfg.SessionTTL))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errs = append(errs, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
