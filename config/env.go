package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Redis RedisConfig
	DB    DBConfig
	Auth  AuthConfig
	Sync  SyncConfig
	API   APIConfig
}

type APIConfig struct {
	RateLimit string
}

type DBConfig struct {
	DSN string
}

type AuthConfig struct {
	TerminalID  string
	TerminalKey string
	TokenTTL    time.Duration
}

type SyncConfig struct {
	RestaurantID    string
	HighlightWindow time.Duration
	StalePendingAge time.Duration
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, _ := strconv.Atoi(getEnv("AUTH_TOKEN_TTL_MINUTES", "480"))
	highlightWindow, _ := strconv.Atoi(getEnv("SYNC_HIGHLIGHT_WINDOW_SECONDS", "30"))
	staleAge, _ := strconv.Atoi(getEnv("SYNC_STALE_PENDING_SECONDS", "120"))

	return Config{
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			DSN: getEnv("CATALOG_DSN", ""),
		},
		Auth: AuthConfig{
			TerminalID:  getEnv("TERMINAL_ID", "terminal-1"),
			TerminalKey: getEnv("TERMINAL_KEY", ""),
			TokenTTL:    time.Duration(tokenTTL) * time.Minute,
		},
		Sync: SyncConfig{
			RestaurantID:    getEnv("RESTAURANT_ID", ""),
			HighlightWindow: time.Duration(highlightWindow) * time.Second,
			StalePendingAge: time.Duration(staleAge) * time.Second,
		},
		API: APIConfig{
			RateLimit: getEnv("API_RATE_LIMIT", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
