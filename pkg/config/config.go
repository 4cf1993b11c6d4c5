package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Contract sources
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceURL      = "url"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Contract portfolio source
	Contracts ContractsConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External services
	OpenAI OpenAIConfig
	Kafka  KafkaConfig

	// Scheduler
	Scheduler SchedulerConfig

	// API
	CORSAllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string
}

// ContractsConfig selects where the portfolio is loaded from
type ContractsConfig struct {
	Source string // file, postgres, url
	Path   string // .json / .yaml / .yml
	URL    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// OpenAIConfig holds the chat-completion endpoint used for outreach scripts.
// Azure deployments set Azure=true and BaseURL to the resource endpoint.
type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	APIVersion    string
	Deployment    string
	Azure         bool
	RatePerMinute int
	Timeout       time.Duration
}

// Enabled reports whether an API key is configured
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// KafkaConfig holds the action-queue publisher configuration
type KafkaConfig struct {
	Brokers      []string
	ActionsTopic string
}

// Enabled reports whether any broker is configured
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// SchedulerConfig holds cron expressions (with seconds)
type SchedulerConfig struct {
	RefreshSchedule string
	ExportSchedule  string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Contracts: ContractsConfig{
			Source: strings.ToLower(getEnv("CONTRACTS_SOURCE", SourceFile)),
			Path:   getEnv("CONTRACTS_PATH", "contract_data.json"),
			URL:    getEnv("CONTRACTS_URL", ""),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		OpenAI: OpenAIConfig{
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", ""),
			APIVersion:    getEnv("OPENAI_API_VERSION", "2024-02-01"),
			Deployment:    getEnv("OPENAI_DEPLOYMENT", "gpt-4o-mini"),
			Azure:         getEnvAsBool("OPENAI_AZURE", false),
			RatePerMinute: getEnvAsInt("OPENAI_RATE_PER_MINUTE", 20),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", "30s"),
		},

		Kafka: KafkaConfig{
			Brokers:      getEnvAsList("KAFKA_BROKERS", nil),
			ActionsTopic: getEnv("KAFKA_ACTIONS_TOPIC", "billflow.actions"),
		},

		Scheduler: SchedulerConfig{
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 */15 * * * *"),
			ExportSchedule:  getEnv("EXPORT_SCHEDULE", "0 0 7 * * *"),
		},

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Contracts.Source {
	case SourceFile:
		if c.Contracts.Path == "" {
			return fmt.Errorf("CONTRACTS_PATH is required when CONTRACTS_SOURCE=file")
		}
	case SourcePostgres:
		// DB URL은 postgres 소스일 때만 필수
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when CONTRACTS_SOURCE=postgres")
		}
	case SourceURL:
		if c.Contracts.URL == "" {
			return fmt.Errorf("CONTRACTS_URL is required when CONTRACTS_SOURCE=url")
		}
	default:
		return fmt.Errorf("CONTRACTS_SOURCE must be one of: file, postgres, url")
	}

	if c.OpenAI.Azure && c.OpenAI.Enabled() && c.OpenAI.BaseURL == "" {
		return fmt.Errorf("OPENAI_BASE_URL is required for Azure deployments")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
