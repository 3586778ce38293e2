package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	JWTSecret string // Required: shared HS256 secret for the mesh

	APIPrefix   string        // Optional: public path prefix stripped before routing (default: /api)
	PublicPaths []string      // Optional: comma-separated paths that skip token verification
	Routes      string        // Required: comma-separated "prefix=url" downstream route table
	ClockLeeway time.Duration // Optional: allowed clock skew when checking token expiry (default: 0)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// defaultPublicPaths are the endpoints a caller can reach before they have
// any token: registration, login, and the emailed verification link.
var defaultPublicPaths = []string{"/auth/register", "/auth/login", "/auth/verify"}

func LoadConfig() Config {
	publicPaths := defaultPublicPaths
	if raw := os.Getenv("GATEWAY_PUBLIC_PATHS"); raw != "" {
		publicPaths = nil
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				publicPaths = append(publicPaths, p)
			}
		}
	}

	return Config{
		JWTSecret:           os.Getenv("JWT_SECRET"),
		APIPrefix:           getEnvOrDefault("GATEWAY_API_PREFIX", "/api"),
		PublicPaths:         publicPaths,
		Routes:              getEnvOrDefault("GATEWAY_ROUTES", "/auth=http://localhost:8081,/v1/users=http://localhost:8081"),
		ClockLeeway:         getEnvDurationOrDefault("GATEWAY_CLOCK_LEEWAY", 0),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
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

	return defaultValue
}
