package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the full service configuration
type Config struct {
	Port      int
	LogLevel  string
	Env       string
	TxTimeout time.Duration
	DB        DBConfig
	Kafka     KafkaConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

// DBConfig holds the database configuration
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// KafkaConfig holds the optional event mirror configuration.
// An empty broker list disables the mirror.
type KafkaConfig struct {
	Brokers     []string
	EventsTopic string
}

// StorageConfig holds the blob store collaborator configuration
type StorageConfig struct {
	BaseURL       string
	VerifyUploads bool
}

// RateLimitConfig holds the HTTP rate limiter configuration
type RateLimitConfig struct {
	GlobalMaxTokens   float64
	GlobalRefillRate  float64
	IPMaxTokens       float64
	IPRefillRate      float64
	TrustForwardedFor bool
}

// getEnv retrieves the value of an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

// Load reads the configuration from environment variables and returns a Config struct.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))

	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))

	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	txTimeoutMs, err := strconv.Atoi(getEnv("TX_TIMEOUT_MS", "5000"))

	if err != nil {
		return nil, fmt.Errorf("invalid TX_TIMEOUT_MS: %w", err)
	}

	var brokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return &Config{
		Port:      port,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Env:       getEnv("APP_ENV", "development"),
		TxTimeout: time.Duration(txTimeoutMs) * time.Millisecond,
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "printhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:     brokers,
			EventsTopic: getEnv("KAFKA_EVENTS_TOPIC", "printhub.order-events"),
		},
		Storage: StorageConfig{
			BaseURL:       getEnv("STORAGE_BASE_URL", ""),
			VerifyUploads: getEnv("STORAGE_VERIFY_UPLOADS", "false") == "true",
		},
		RateLimit: RateLimitConfig{
			GlobalMaxTokens:   getEnvFloat("RATE_LIMIT_GLOBAL_MAX", 200),
			GlobalRefillRate:  getEnvFloat("RATE_LIMIT_GLOBAL_RATE", 100),
			IPMaxTokens:       getEnvFloat("RATE_LIMIT_IP_MAX", 30),
			IPRefillRate:      getEnvFloat("RATE_LIMIT_IP_RATE", 10),
			TrustForwardedFor: getEnv("RATE_LIMIT_TRUST_FORWARDED_FOR", "false") == "true",
		},
	}, nil
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := getEnv(key, "")

	if raw == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// GetDBConnString returns the database connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}
