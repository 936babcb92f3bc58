package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	SMTP      SMTPConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
	Notify    NotifyConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	NotifyLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
}

type StoreConfig struct {
	Driver     string
	RedisURL   string
	Connection string
}

// SMTPConfig.Username defaults to Email for servers that log in with the
// sender address.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JwtSecret       string
	TokenTTL        time.Duration
	DefaultPassword string
}

type SchedulerConfig struct {
	Cron    string
	Enabled bool
}

// NotifyConfig overrides the public endpoints of the outbound HTTP clients.
type NotifyConfig struct {
	NotifyXBaseURL      string
	TelegramBaseURL     string
	ExchangeRateBaseURL string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8787"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			NotifyLogFilePath:  getEnv("NOTIFY_LOG_FILE_PATH", "logs/notification.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", StoreRedis)),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Username:   getEnv("SMTP_USERNAME", getEnv("SMTP_EMAIL", "")),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Subscription Tracker"),
		},
		Auth: AuthConfig{
			JwtSecret:       getEnv("JWT_SECRET", ""),
			TokenTTL:        time.Duration(getEnvAsInt("JWT_TTL_HOURS", 24)) * time.Hour,
			DefaultPassword: getEnv("ADMIN_DEFAULT_PASSWORD", "password"),
		},
		Scheduler: SchedulerConfig{
			Cron:    getEnv("SCHEDULER_CRON", "0 * * * *"),
			Enabled: getEnvAsBool("SCHEDULER_ENABLED", true),
		},
		Notify: NotifyConfig{
			NotifyXBaseURL:      getEnv("NOTIFYX_BASE_URL", ""),
			TelegramBaseURL:     getEnv("TELEGRAM_API_BASE_URL", ""),
			ExchangeRateBaseURL: getEnv("EXCHANGE_RATE_API_URL", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "subscription-tracker-backend"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
