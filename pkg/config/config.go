package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DataDir       string
	StorageDriver string // "file" or "sqlite"
	SQLitePath    string
	NoteDebounce  time.Duration
	SnoozeOffset  time.Duration
	ReminderTick  time.Duration
	LogLevel      string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataDir = filepath.Join(home, ".planora")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DataDir:       dataDir,
		StorageDriver: getEnv("STORAGE_DRIVER", "file"),
		SQLitePath:    getEnv("SQLITE_PATH", filepath.Join(dataDir, "planora.db")),
		NoteDebounce:  getDuration("NOTE_DEBOUNCE", 1*time.Second),
		SnoozeOffset:  getDuration("SNOOZE_OFFSET", 15*time.Minute),
		ReminderTick:  getDuration("REMINDER_TICK", 30*time.Second),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
