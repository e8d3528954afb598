package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Documents DocumentsConfig
	Scoring   ScoringConfig
	Workflows WorkflowsConfig
	Reporting ReportingConfig
	Providers ProvidersConfig
	Notify    NotifyConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DocumentsConfig governs tokenized document-collection requests.
type DocumentsConfig struct {
	Enabled           bool
	DefaultExpiryDays int
	TokenLength       int
}

// ScoringConfig holds the approval-score band thresholds.
type ScoringConfig struct {
	RejectBelow  int
	ApproveAbove int
}

// WorkflowsConfig toggles the rule engine.
type WorkflowsConfig struct {
	Enabled bool
}

// ReportingConfig governs metrics rollup exposure and cache behaviour.
type ReportingConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ProvidersConfig bounds calls to external credit/document providers.
type ProvidersConfig struct {
	Timeout time.Duration
}

// NotifyConfig tunes the asynchronous notification dispatch queue.
type NotifyConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Documents = DocumentsConfig{
		Enabled:           v.GetBool("ENABLE_DOCUMENT_REQUESTS"),
		DefaultExpiryDays: v.GetInt("DOCUMENT_DEFAULT_EXPIRY_DAYS"),
		TokenLength:       v.GetInt("DOCUMENT_TOKEN_LENGTH"),
	}
	// Tokens below 48 characters are guessable enough to be a liability.
	if cfg.Documents.TokenLength < 48 {
		cfg.Documents.TokenLength = 64
	}

	cfg.Scoring = ScoringConfig{
		RejectBelow:  v.GetInt("SCORING_REJECT_BELOW"),
		ApproveAbove: v.GetInt("SCORING_APPROVE_ABOVE"),
	}

	cfg.Workflows = WorkflowsConfig{
		Enabled: v.GetBool("ENABLE_WORKFLOWS"),
	}

	cfg.Reporting = ReportingConfig{
		Enabled:  v.GetBool("ENABLE_REPORTING"),
		CacheTTL: parseDuration(v.GetString("REPORTING_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Providers = ProvidersConfig{
		Timeout: parseDuration(v.GetString("PROVIDER_TIMEOUT"), 5*time.Second),
	}

	cfg.Notify = NotifyConfig{
		Workers:    v.GetInt("NOTIFY_WORKERS"),
		MaxRetries: v.GetInt("NOTIFY_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFY_RETRY_DELAY"), 2*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "fi_decision")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "fi-decision-api")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DOCUMENT_REQUESTS", true)
	v.SetDefault("DOCUMENT_DEFAULT_EXPIRY_DAYS", 7)
	v.SetDefault("DOCUMENT_TOKEN_LENGTH", 64)

	v.SetDefault("SCORING_REJECT_BELOW", 400)
	v.SetDefault("SCORING_APPROVE_ABOVE", 650)

	v.SetDefault("ENABLE_WORKFLOWS", true)

	v.SetDefault("ENABLE_REPORTING", true)
	v.SetDefault("REPORTING_CACHE_TTL", "10m")

	v.SetDefault("PROVIDER_TIMEOUT", "5s")

	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_MAX_RETRIES", 3)
	v.SetDefault("NOTIFY_RETRY_DELAY", "2s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
