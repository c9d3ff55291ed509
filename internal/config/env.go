package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// OracleConfig defines the text-understanding providers consulted for
// boundary classification and the models used per provider.
type OracleConfig struct {
	PrimaryEngine   string // "openai"|"anthropic"
	SecondaryEngine string
	OpenAIModel     string
	AnthropicModel  string
	Timeout         time.Duration
	MaxTokens       int
}

// WorkerConfig defines dispatcher worker behavior and limits.
type WorkerConfig struct {
	Concurrency         int
	JobTimeout          time.Duration
	JobMaxAttempts      int
	RetryBaseDelay      time.Duration
	MaxInflightPerModel int
	BreakerBaseBackoff  time.Duration
	BreakerMaxBackoff   time.Duration
}

// QueueConfig defines queue connectivity and names.
type QueueConfig struct {
	RedisURL     string
	Stream       string
	Group        string
	PollInterval time.Duration
}

// StorageConfig defines artifact storage targets.
type StorageConfig struct {
	UseS3          bool
	Bucket         string
	ArtifactPrefix string
	Region         string
	AccessKey      string
	SecretKey      string
	LocalDir       string
	UploadDir      string
	Encrypt        bool
	EncryptionKey  string
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Port          string
	MaxUploadMB   int64
	RunDispatcher bool
}

// Config is the top-level configuration.
type Config struct {
	Logging LoggingConfig
	Axiom   AxiomConfig
	Oracle  OracleConfig
	Worker  WorkerConfig
	Queue   QueueConfig
	Storage StorageConfig
	Server  ServerConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/decomposer.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_decomposer",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Oracle = OracleConfig{
		PrimaryEngine:   getEnv("PRIMARY_ENGINE", "openai"),
		SecondaryEngine: getEnv("SECONDARY_ENGINE", "anthropic"),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4.1"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet"),
		Timeout:         parseDuration(getEnv("ORACLE_TIMEOUT", "90s"), 90*time.Second),
		MaxTokens:       parseInt(getEnv("ORACLE_MAX_TOKENS", "4096"), 4096),
	}

	cfg.Worker = WorkerConfig{
		Concurrency:         parseInt(getEnv("WORKER_CONCURRENCY", "4"), 4),
		JobTimeout:          parseDuration(getEnv("JOB_TIMEOUT", "5m"), 5*time.Minute),
		JobMaxAttempts:      parseInt(getEnv("JOB_MAX_ATTEMPTS", "3"), 3),
		RetryBaseDelay:      parseDuration(getEnv("RETRY_BASE_DELAY", "2s"), 2*time.Second),
		MaxInflightPerModel: parseInt(getEnv("MAX_INFLIGHT_PER_MODEL", "2"), 2),
		BreakerBaseBackoff:  parseDuration(getEnv("BREAKER_BASE_BACKOFF", "30s"), 30*time.Second),
		BreakerMaxBackoff:   parseDuration(getEnv("BREAKER_MAX_BACKOFF", "5m"), 5*time.Minute),
	}

	cfg.Queue = QueueConfig{
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		Stream:       getEnv("QUEUE_STREAM", "jobs:bundles"),
		Group:        getEnv("QUEUE_GROUP", "workers:decompose"),
		PollInterval: parseDuration(getEnv("QUEUE_POLL_INTERVAL", "200ms"), 200*time.Millisecond),
	}

	cfg.Storage = StorageConfig{
		UseS3:          parseBool(getEnv("STORAGE_S3", "0")),
		Bucket:         getEnv("AWS_S3_BUCKET", "hole-documents-dev"),
		ArtifactPrefix: getEnv("ARTIFACT_PREFIX", "decomposed"),
		Region:         getEnv("AWS_REGION", ""),
		AccessKey:      getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LocalDir:       getEnv("RESULT_DIR", "uploads/results"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		Encrypt:        parseBool(getEnv("STORAGE_ENCRYPT", "0")),
		EncryptionKey:  getEnv("STORAGE_ENCRYPTION_KEY", ""),
	}

	cfg.Server = ServerConfig{
		Port:          getEnv("PORT", "8080"),
		MaxUploadMB:   int64(parseInt(getEnv("MAX_UPLOAD_MB", "64"), 64)),
		RunDispatcher: parseBool(getEnv("RUN_DISPATCHER", "1")),
	}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
