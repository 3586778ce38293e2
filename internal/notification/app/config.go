package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	RedisAddr     string // Required: redis address carrying the event stream
	RedisPassword string // Optional
	ConsumerGroup string // Optional: consumer group name (default: notification-service)
	ConsumerName  string // Optional: consumer name within the group (default: hostname)

	VerifyURLBase string // Optional: public verification endpoint for mail links

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // Health endpoint port (default: 8082)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	consumerName := os.Getenv("CONSUMER_NAME")
	if consumerName == "" {
		if hostname, err := os.Hostname(); err == nil {
			consumerName = hostname
		} else {
			consumerName = "notification-" + strconv.Itoa(os.Getpid())
		}
	}

	return Config{
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		ConsumerGroup:       getEnvOrDefault("CONSUMER_GROUP", "notification-service"),
		ConsumerName:        consumerName,
		VerifyURLBase:       getEnvOrDefault("VERIFY_URL_BASE", "http://localhost:8080/api/auth/verify"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8082),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
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

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
