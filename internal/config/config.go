package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kotche/femhealth/internal/content"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	TelegramConfig TelegramConfig
	PostgresConfig PostgresConfig
	KafkaConfig    KafkaConfig
	GeminiConfig   GeminiConfig
	DispatchConfig DispatchConfig
	NotifierConfig NotifierConfig
	MetricsConfig  MetricsConfig
	TracingConfig  TracingConfig
	LogLevel       string
}

type TelegramConfig struct {
	TokenDashboardBot string
	TokenNotifyBot    string
}

type PostgresConfig struct {
	Store    string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers           []string
	Topic             string
	GroupID           string
	NumPartitions     int
	ReplicationFactor int
}

type GeminiConfig struct {
	APIKey   string
	Model    string
	Attempts uint
	Delay    time.Duration
	Timeout  time.Duration
}

type DispatchConfig struct {
	SMTPHost    string
	MinDelay    time.Duration
	MaxDelay    time.Duration
	DueSoonDays int
}

type NotifierConfig struct {
	Schedule string
}

type MetricsConfig struct {
	Addr string
}

type TracingConfig struct {
	Endpoint string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	config := &Config{
		TelegramConfig: TelegramConfig{
			TokenDashboardBot: getEnv("TOKEN_DASHBOARD_BOT", ""),
			TokenNotifyBot:    getEnv("TOKEN_NOTIFY_BOT", ""),
		},
		PostgresConfig: PostgresConfig{
			Store:    getEnv("STORE", StoreMemory),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "user"),
			Password: getEnv("POSTGRES_PASSWORD", "password"),
			DBName:   getEnv("POSTGRES_DB", "femhealth"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "cycle-reminders"),
			GroupID: getEnv("KAFKA_GROUP_ID", "reminder-dispatchers"),
		},
		GeminiConfig: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", content.DefaultModel),
		},
		DispatchConfig: DispatchConfig{
			SMTPHost: getEnv("SMTP_HOST", "smtp.femhealth.io"),
		},
		NotifierConfig: NotifierConfig{
			Schedule: getEnv("NOTIFIER_SCHEDULE", "0 8 * * *"),
		},
		MetricsConfig: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":8080"),
		},
		TracingConfig: TracingConfig{
			Endpoint: getEnv("TRACING_ENDPOINT", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if config.KafkaConfig.NumPartitions, err = getEnvInt("KAFKA_PARTITIONS", 1); err != nil {
		return nil, err
	}
	if config.KafkaConfig.ReplicationFactor, err = getEnvInt("KAFKA_REPLICATION_FACTOR", 1); err != nil {
		return nil, err
	}
	attempts, err := getEnvInt("GEMINI_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	config.GeminiConfig.Attempts = uint(attempts)
	if config.GeminiConfig.Delay, err = getEnvDuration("GEMINI_RETRY_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if config.GeminiConfig.Timeout, err = getEnvDuration("GEMINI_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if config.DispatchConfig.MinDelay, err = getEnvDuration("DISPATCH_MIN_DELAY", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if config.DispatchConfig.MaxDelay, err = getEnvDuration("DISPATCH_MAX_DELAY", 300*time.Millisecond); err != nil {
		return nil, err
	}
	if config.DispatchConfig.DueSoonDays, err = getEnvInt("DUE_SOON_DAYS", 3); err != nil {
		return nil, err
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DSN builds the connection string used by both database/sql and migrate.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

func (c *Config) validate() error {
	if c.TelegramConfig.TokenDashboardBot == "" {
		return fmt.Errorf("TOKEN_DASHBOARD_BOT is required")
	}

	if c.TelegramConfig.TokenNotifyBot == "" {
		return fmt.Errorf("TOKEN_NOTIFY_BOT is required")
	}

	switch c.PostgresConfig.Store {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("STORE must be '%s' or '%s', got '%s'", StoreMemory, StorePostgres, c.PostgresConfig.Store)
	}

	if len(c.KafkaConfig.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	if c.DispatchConfig.MinDelay > c.DispatchConfig.MaxDelay {
		return fmt.Errorf("DISPATCH_MIN_DELAY %s exceeds DISPATCH_MAX_DELAY %s",
			c.DispatchConfig.MinDelay, c.DispatchConfig.MaxDelay)
	}

	if c.DispatchConfig.DueSoonDays < 0 {
		return fmt.Errorf("DUE_SOON_DAYS must not be negative")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s '%s': %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s '%s': %w", key, value, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
