package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	FrontendURL    string

	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	RedisURL      string
	RedisPassword string
	MoveCacheTTL  time.Duration

	JWTSecret    string
	APITokenTTL  time.Duration
	Engine       EngineConfig
	BotMoveDelay time.Duration
	CleanupEvery time.Duration
	LogLevel     string
	LogFormat    string
	ReleaseMode  bool
}

// EngineConfig holds the search defaults used when a request leaves them out.
type EngineConfig struct {
	MaxDepth         int
	TimeLimit        time.Duration
	TTSize           int
	DefaultAlgorithm string
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" && trimmed != frontendURL {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}

	// Append simple_protocol for PgBouncer compatibility (pgx driver)
	dbURL := GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))
	if dbURL != "" {
		if u, err := url.Parse(dbURL); err == nil {
			q := u.Query()
			if q.Get("default_query_exec_mode") == "" {
				q.Set("default_query_exec_mode", "simple_protocol")
				u.RawQuery = q.Encode()
				dbURL = u.String()
			}
		}
	}

	AppConfig = &Config{
		Port:           port,
		AllowedOrigins: allowedOrigins,
		FrontendURL:    frontendURL,

		DatabaseURL:          dbURL,
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),

		RedisURL:      GetEnv("REDIS_URL", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		MoveCacheTTL:  GetEnvAsDuration("MOVE_CACHE_TTL_MINUTES", 60, time.Minute),

		JWTSecret:   GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		APITokenTTL: GetEnvAsDuration("API_TOKEN_TTL_HOURS", 24, time.Hour),

		Engine: EngineConfig{
			MaxDepth:         GetEnvAsInt("ENGINE_MAX_DEPTH", 12),
			TimeLimit:        GetEnvAsDuration("ENGINE_TIME_LIMIT_MS", 500, time.Millisecond),
			TTSize:           GetEnvAsInt("ENGINE_TT_SIZE", 1000000),
			DefaultAlgorithm: GetEnv("ENGINE_DEFAULT_ALGORITHM", "iterdeep_moveorder"),
		},
		BotMoveDelay: GetEnvAsDuration("BOT_MOVE_DELAY_MS", 300, time.Millisecond),
		CleanupEvery: GetEnvAsDuration("CLEANUP_INTERVAL_MINUTES", 5, time.Minute),
		LogLevel:     GetEnv("LOG_LEVEL", "info"),
		LogFormat:    GetEnv("LOG_FORMAT", "console"),
		ReleaseMode:  GetEnvAsBool("GIN_RELEASE_MODE", false),
	}

	return AppConfig
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", defaultValue).Msg("invalid integer value, using default")
		return defaultValue
	}
	return value
}

// GetEnvAsDuration reads an integer count of unit.
func GetEnvAsDuration(key string, defaultValue int, unit time.Duration) time.Duration {
	return time.Duration(GetEnvAsInt(key, defaultValue)) * unit
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Bool("default", defaultValue).Msg("invalid boolean value, using default")
		return defaultValue
	}
	return value
}
