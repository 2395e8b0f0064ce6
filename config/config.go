package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the downloader bot
type Config struct {
	Telegram TelegramConfig
	Download DownloadConfig
	Courtesy CourtesyConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
	Service  ServiceConfig
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string
}

// DownloadConfig holds download policy and temp storage configuration
type DownloadConfig struct {
	TempDir          string
	OperationTimeout time.Duration
	DeliveryTimeout  time.Duration
	MaxVideoDuration time.Duration
	ProgressInterval time.Duration
	JanitorInterval  time.Duration
	JanitorMaxAge    time.Duration
}

// CourtesyConfig holds the easter-egg table: username -> extra message.
// Built once at startup and never mutated afterwards.
type CourtesyConfig struct {
	Messages map[string]string
}

// KafkaConfig holds Kafka configuration. Empty Brokers disables outcome events.
type KafkaConfig struct {
	Brokers      []string
	OutcomeTopic string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config   *Config
	Telegram *TelegramConfig
	Download *DownloadConfig
	Courtesy *CourtesyConfig
	Kafka    *KafkaConfig
	Logging  *LoggingConfig
	Service  *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:   cfg,
		Telegram: &cfg.Telegram,
		Download: &cfg.Download,
		Courtesy: &cfg.Courtesy,
		Kafka:    &cfg.Kafka,
		Logging:  &cfg.Logging,
		Service:  &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	download, err := loadDownloadConfig()
	if err != nil {
		return nil, err
	}

	courtesy, err := ParseCourtesy(getEnv("EASTER_EGG_USERS", ""), getEnv("EASTER_EGG_MESSAGES", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		},
		Download: download,
		Courtesy: CourtesyConfig{Messages: courtesy},
		Kafka: KafkaConfig{
			Brokers:      splitList(getEnv("KAFKA_BROKERS", "")),
			OutcomeTopic: getEnv("KAFKA_OUTCOME_TOPIC", "downloads.completed"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "yt-downloader-bot"),
			Port: getEnv("SERVICE_PORT", "8081"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// durationEnv binds an environment key to a duration field
type durationEnv struct {
	key      string
	fallback string
	target   *time.Duration
}

func loadDownloadConfig() (DownloadConfig, error) {
	var cfg DownloadConfig

	durations := []durationEnv{
		{key: "DOWNLOAD_OPERATION_TIMEOUT", fallback: "5m", target: &cfg.OperationTimeout},
		{key: "DOWNLOAD_DELIVERY_TIMEOUT", fallback: "300s", target: &cfg.DeliveryTimeout},
		{key: "DOWNLOAD_MAX_VIDEO_DURATION", fallback: "600s", target: &cfg.MaxVideoDuration},
		{key: "DOWNLOAD_PROGRESS_INTERVAL", fallback: "2s", target: &cfg.ProgressInterval},
		{key: "DOWNLOAD_JANITOR_INTERVAL", fallback: "10m", target: &cfg.JanitorInterval},
		{key: "DOWNLOAD_JANITOR_MAX_AGE", fallback: "30m", target: &cfg.JanitorMaxAge},
	}

	for _, d := range durations {
		value, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return DownloadConfig{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.target = value
	}

	cfg.TempDir = getEnv("DOWNLOAD_TEMP_DIR", filepath.Join(os.TempDir(), "yt-downloader"))

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Download.TempDir == "" {
		return fmt.Errorf("DOWNLOAD_TEMP_DIR must not be empty")
	}

	if c.Download.OperationTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_OPERATION_TIMEOUT must be positive")
	}

	if c.Download.DeliveryTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_DELIVERY_TIMEOUT must be positive")
	}

	if c.Download.MaxVideoDuration <= 0 {
		return fmt.Errorf("DOWNLOAD_MAX_VIDEO_DURATION must be positive")
	}

	if c.Download.JanitorInterval <= 0 {
		return fmt.Errorf("DOWNLOAD_JANITOR_INTERVAL must be positive")
	}

	// Files younger than one operation may still belong to a live request
	if c.Download.JanitorMaxAge <= c.Download.OperationTimeout {
		return fmt.Errorf("DOWNLOAD_JANITOR_MAX_AGE must exceed DOWNLOAD_OPERATION_TIMEOUT")
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.OutcomeTopic == "" {
		return fmt.Errorf("KAFKA_OUTCOME_TOPIC is required when KAFKA_BROKERS is set")
	}

	return nil
}

// ParseCourtesy zips two comma-separated lists into a username -> message table.
// Usernames are normalized with NormalizeUsername.
func ParseCourtesy(users, messages string) (map[string]string, error) {
	names := splitList(users)
	texts := splitList(messages)

	if len(names) != len(texts) {
		return nil, fmt.Errorf("EASTER_EGG_USERS has %d entries but EASTER_EGG_MESSAGES has %d", len(names), len(texts))
	}

	table := make(map[string]string, len(names))
	for i, name := range names {
		table[NormalizeUsername(name)] = texts[i]
	}

	return table, nil
}

// NormalizeUsername lowercases a Telegram username and strips a leading @
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

// splitList splits a comma-separated value, dropping blank entries
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
