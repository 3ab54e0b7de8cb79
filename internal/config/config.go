package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	DatabaseURL   string // shared records database; empty runs local-only
	HistoryDBPath string
	TuningFile    string
	SessionTTL    int // minutes before an idle session is swept
}

func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		HistoryDBPath: getEnv("HISTORY_DB_PATH", "history.db"),
		TuningFile:    os.Getenv("TUNING_FILE"),
		SessionTTL:    getEnvInt("SESSION_TTL_MINUTES", 60),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
