package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	RecoveryFile  = "file"
	RecoveryRedis = "redis"
)

type Config struct {
	Port             string
	DBPath           string
	MigrationsDir    string
	JWTSecret        string
	TokenTTL         time.Duration
	AuthPasswordHash string
	CORSOrigins      []string
	RecoveryBackend  string
	RecoveryPath     string
	RecoveryKey      string
	RedisAddr        string
	RedisPassword    string
	LogLevel         string
	ShutdownTimeout  time.Duration
}

var defaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// Load reads the configuration from the environment.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", "./data/pomodoro.db")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("JWT_SECRET", "change-this-secret")
	v.SetDefault("TOKEN_TTL_HOURS", 72)
	v.SetDefault("AUTH_PASSWORD_HASH", "")
	v.SetDefault("CORS_ORIGINS", strings.Join(defaultCORSOrigins, ","))
	v.SetDefault("RECOVERY_BACKEND", RecoveryFile)
	v.SetDefault("RECOVERY_PATH", "./data/pending-phase.json")
	v.SetDefault("RECOVERY_KEY", "timer:pendingPhase")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 5)

	backend := strings.ToLower(strings.TrimSpace(v.GetString("RECOVERY_BACKEND")))
	if backend != RecoveryRedis {
		backend = RecoveryFile
	}

	return Config{
		Port:             v.GetString("PORT"),
		DBPath:           v.GetString("DB_PATH"),
		MigrationsDir:    v.GetString("MIGRATIONS_DIR"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         time.Duration(positive(v.GetInt("TOKEN_TTL_HOURS"), 72)) * time.Hour,
		AuthPasswordHash: v.GetString("AUTH_PASSWORD_HASH"),
		CORSOrigins:      splitList(v.GetString("CORS_ORIGINS"), defaultCORSOrigins),
		RecoveryBackend:  backend,
		RecoveryPath:     v.GetString("RECOVERY_PATH"),
		RecoveryKey:      v.GetString("RECOVERY_KEY"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		ShutdownTimeout:  time.Duration(positive(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS"), 5)) * time.Second,
	}
}

func positive(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitList(value string, fallback []string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
