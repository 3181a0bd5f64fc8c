package app

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./usermgmt.db)
	DatabaseURL    string // Postgres connection URL, required for the postgres driver

	PepperFile     string        // File holding the password pepper (default: ./pepper)
	JWTSecret      string        // HS256 secret; empty generates a per-process secret
	Issuer         string        // iss claim of issued tokens (default: usermgmt)
	TokenTTL       time.Duration // Access token lifetime (default: 1500m)
	BcryptCost     int           // bcrypt work factor (default: bcrypt.DefaultCost)
	BootstrapToken string        // Optional: enables POST /bootstrap

	CodeTTL       time.Duration // Verification code lifetime (default: 10m)
	CodeRetention time.Duration // Purge codes expired longer ago than this; 0 keeps them forever

	Env                  string        // dev, staging, prod (default: dev)
	LogLevel             string        // debug, info, warn, error (default: info)
	LogFormat            string        // json or text (default: json)
	LogFile              string        // Optional rotated log file
	LogRotationTime      time.Duration // default: 24h
	LogMaxAge            time.Duration // default: 7 days
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // default: 10s
	HousekeepingInterval time.Duration // default: 1h

	SMTPHost     string // Empty logs codes instead of mailing them
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	NotifyQueueSize int
	KafkaBrokers    []string // Empty disables the Kafka sink
	KafkaTopic      string
	RabbitMQURL     string // Empty disables the RabbitMQ sink
	RabbitMQQueue   string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Println("warning: .env not loaded:", err)
		}
	}

	return Config{
		DatabaseDriver: strings.ToLower(getEnvOrDefault("UM_DATABASE_DRIVER", "sqlite")),
		DatabaseFile:   getEnvOrDefault("UM_DATABASE_FILE", "usermgmt.db"),
		DatabaseURL:    os.Getenv("UM_DATABASE_URL"),

		PepperFile:     getEnvOrDefault("UM_PEPPER_FILE", "pepper"),
		JWTSecret:      os.Getenv("UM_JWT_SECRET"),
		Issuer:         getEnvOrDefault("UM_ISSUER", "usermgmt"),
		TokenTTL:       getEnvDurationOrDefault("UM_TOKEN_TTL", 1500*time.Minute),
		BcryptCost:     getEnvIntOrDefault("UM_BCRYPT_COST", 0),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		CodeTTL:       getEnvDurationOrDefault("UM_VERIFICATION_CODE_TTL", 10*time.Minute),
		CodeRetention: getEnvDurationOrDefault("UM_VERIFICATION_CODE_RETENTION", 0),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:              os.Getenv("LOG_FILE"),
		LogRotationTime:      getEnvDurationOrDefault("LOG_ROTATION_TIME", 24*time.Hour),
		LogMaxAge:            getEnvDurationOrDefault("LOG_MAX_AGE", 7*24*time.Hour),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPFromName: os.Getenv("SMTP_FROM_NAME"),

		NotifyQueueSize: getEnvIntOrDefault("NOTIFY_QUEUE_SIZE", 0),
		KafkaBrokers:    getEnvListOrDefault("KAFKA_BROKERS", nil),
		KafkaTopic:      getEnvOrDefault("KAFKA_TOPIC", "usermgmt.events"),
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		RabbitMQQueue:   getEnvOrDefault("RABBITMQ_QUEUE", "usermgmt.events"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
