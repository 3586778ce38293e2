package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	JWTSecret string // Required: shared HS256 secret for the mesh

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	VerificationTTL time.Duration // Optional: verification token lifetime (default: 15m)

	DatabaseFile string // Optional: path to SQLite database file (default: ./users.db)
	PepperFile   string // Optional: path to pepper file for password hashing (default: ./pepper)

	RedisAddr     string // Optional: redis address for verification store + event bus
	RedisPassword string // Optional
	CachePrefix   string // Optional: redis key namespace (default: meshauth)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8081)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AccessTokenTTL:      getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		VerificationTTL:     getEnvDurationOrDefault("VERIFICATION_TOKEN_TTL", 15*time.Minute),
		DatabaseFile:        getEnvOrDefault("USER_DATABASE_FILE", "users.db"),
		PepperFile:          getEnvOrDefault("USER_PEPPER_FILE", "pepper"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		CachePrefix:         getEnvOrDefault("CACHE_PREFIX", "meshauth"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8081),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
