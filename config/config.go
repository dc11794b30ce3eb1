package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App    AppConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Limits LimitsConfig
	Logger LoggerConfig
}

type AppConfig struct {
	Env            string
	Port           string
	Domain         string
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// MongoConfig holds document store settings. An empty URI selects the in-memory store.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig holds Redis settings. An empty Addr disables Redis-backed features.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type LimitsConfig struct {
	IssueQueuePrefix  string
	IssuesPerDay      int
	ViewDedupeWindow  time.Duration
	VoteRetryAttempts int
}

type LoggerConfig struct {
	Level string
}

// Production reports whether the service runs with GO_ENV=production.
func (a AppConfig) Production() bool {
	return a.Env == "production"
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return ":" + a.Port
}

// Load reads configuration from the environment after loading an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	tokenTTL, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:            getEnv("GO_ENV", "development"),
			Port:           getEnv("PORT", "8080"),
			Domain:         os.Getenv("DOMAIN"),
			CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		},
		Mongo: MongoConfig{
			URI:            os.Getenv("MONGODB_URI"),
			Database:       getEnv("MONGODB_DATABASE", "civicfix"),
			ConnectTimeout: getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			TokenTTL:   tokenTTL,
			BcryptCost: getEnvAsInt("BCRYPT_COST", 10),
		},
		Limits: LimitsConfig{
			IssueQueuePrefix:  getEnv("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue-limit"),
			IssuesPerDay:      getEnvAsInt("ISSUE_DAILY_LIMIT", 10),
			ViewDedupeWindow:  getEnvAsDuration("VIEW_DEDUPE_WINDOW", time.Hour),
			VoteRetryAttempts: getEnvAsInt("VOTE_RETRY_ATTEMPTS", 5),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.App.Production() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.Auth.JWTSecret = "dev-secret"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
