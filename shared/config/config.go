package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret              string
	AccessTokenTTLSeconds  string
	RefreshTokenTTLSeconds string

	// Sessions
	SessionIdleTimeoutSeconds     string
	SessionAbsoluteTimeoutSeconds string
	MaxSessionsPerUser            string

	// Cleanup sweep
	CleanupIntervalSeconds string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Rate Limiting
	RateLimitMaxRequests          string
	RateLimitTimeWindowSeconds    string
	RateLimitBlockDurationMinutes string

	// Login Rate Limiting
	LoginRateLimitMaxAttempts   string
	LoginRateLimitWindowSeconds string
	LoginRateLimitBlockMinutes  string

	// Seed Admin
	AdminEmail    string
	AdminPassword string

	// Frontend URL
	FrontendURL string

	// Auth Service URL
	AuthServiceURL string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "ultrabms"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret:              getEnv("JWT_SECRET", "your-secret-key-change-this"),
		AccessTokenTTLSeconds:  getEnv("ACCESS_TOKEN_TTL_SECONDS", "3600"),
		RefreshTokenTTLSeconds: getEnv("REFRESH_TOKEN_TTL_SECONDS", "604800"),

		// Sessions
		SessionIdleTimeoutSeconds:     getEnv("SESSION_IDLE_TIMEOUT_SECONDS", "1800"),
		SessionAbsoluteTimeoutSeconds: getEnv("SESSION_ABSOLUTE_TIMEOUT_SECONDS", "43200"),
		MaxSessionsPerUser:            getEnv("MAX_SESSIONS_PER_USER", "3"),

		// Cleanup sweep
		CleanupIntervalSeconds: getEnv("CLEANUP_INTERVAL_SECONDS", "3600"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Rate Limiting
		RateLimitMaxRequests:          getEnv("RATE_LIMIT_MAX_REQUESTS", "100"),
		RateLimitTimeWindowSeconds:    getEnv("RATE_LIMIT_TIME_WINDOW_SECONDS", "60"),
		RateLimitBlockDurationMinutes: getEnv("RATE_LIMIT_BLOCK_DURATION_MINUTES", "15"),

		// Login Rate Limiting
		LoginRateLimitMaxAttempts:   getEnv("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", "5"),
		LoginRateLimitWindowSeconds: getEnv("LOGIN_RATE_LIMIT_WINDOW_SECONDS", "300"),
		LoginRateLimitBlockMinutes:  getEnv("LOGIN_RATE_LIMIT_BLOCK_MINUTES", "30"),

		// Seed Admin
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@ultrabms.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		// Frontend URL
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Auth Service URL
		AuthServiceURL: getEnv("AUTH_SERVICE_URL", "http://localhost:8001"),
	}

	log.Println("✅ Configuration loaded successfully")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// GetAccessTokenTTL returns the access token lifetime
func (c *Config) GetAccessTokenTTL() time.Duration {
	return secondsOrDefault(c.AccessTokenTTLSeconds, 3600)
}

// GetRefreshTokenTTL returns the refresh token lifetime
func (c *Config) GetRefreshTokenTTL() time.Duration {
	return secondsOrDefault(c.RefreshTokenTTLSeconds, 604800)
}

// GetSessionIdleTimeout returns the maximum allowed session inactivity
func (c *Config) GetSessionIdleTimeout() time.Duration {
	return secondsOrDefault(c.SessionIdleTimeoutSeconds, 1800)
}

// GetSessionAbsoluteTimeout returns the maximum total session lifetime
func (c *Config) GetSessionAbsoluteTimeout() time.Duration {
	return secondsOrDefault(c.SessionAbsoluteTimeoutSeconds, 43200)
}

// GetMaxSessionsPerUser returns the concurrent session cap per user
func (c *Config) GetMaxSessionsPerUser() int {
	if value, err := strconv.Atoi(c.MaxSessionsPerUser); err == nil && value > 0 {
		return value
	}
	return 3
}

// GetCleanupInterval returns how often the background sweeps run
func (c *Config) GetCleanupInterval() time.Duration {
	return secondsOrDefault(c.CleanupIntervalSeconds, 3600)
}

// GetRateLimitMaxRequests returns the rate limit max requests as integer
func (c *Config) GetRateLimitMaxRequests() int {
	if value, err := strconv.Atoi(c.RateLimitMaxRequests); err == nil {
		return value
	}
	return 100
}

// GetRateLimitTimeWindowSeconds returns the rate limit time window as integer
func (c *Config) GetRateLimitTimeWindowSeconds() int {
	if value, err := strconv.Atoi(c.RateLimitTimeWindowSeconds); err == nil {
		return value
	}
	return 60
}

// GetRateLimitBlockDurationMinutes returns the rate limit block duration as integer
func (c *Config) GetRateLimitBlockDurationMinutes() int {
	if value, err := strconv.Atoi(c.RateLimitBlockDurationMinutes); err == nil {
		return value
	}
	return 15
}

func secondsOrDefault(value string, fallback int) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
