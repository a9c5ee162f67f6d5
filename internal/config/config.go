package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

const (
	defaultListenAddr = ":8080"
	defaultDBPath     = "sirsim.db"
	defaultBatchDelay = 100 * time.Millisecond

	envListenAddr    = "SIRSIM_LISTEN_ADDR"
	envDBPath        = "SIRSIM_DB_PATH"
	envLogLevel      = "SIRSIM_LOG_LEVEL"
	envMaxPopulation = "SIRSIM_MAX_POPULATION"
	envBatchDelay    = "SIRSIM_BATCH_DELAY"
	envPresetDir     = "SIRSIM_PRESET_DIR"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   slog.Level
	// MaxPopulation caps the total initial population of a run. Zero or
	// negative disables the cap.
	MaxPopulation int
	// BatchDelay is the pause between two batches of a run.
	BatchDelay time.Duration
	// PresetDir, when set, stores presets as YAML files instead of SQLite.
	PresetDir string
}

// Load reads configuration from environment variables with sensible defaults.
// Malformed numeric values are ignored.
func Load() Config {
	cfg := Config{
		ListenAddr:    defaultListenAddr,
		DBPath:        defaultDBPath,
		LogLevel:      slog.LevelInfo,
		MaxPopulation: model.DefaultMaxPopulation,
		BatchDelay:    defaultBatchDelay,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = ParseLogLevel(v)
	}
	if v := os.Getenv(envMaxPopulation); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPopulation = n
		}
	}
	if v := os.Getenv(envBatchDelay); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.BatchDelay = d
		}
	}
	if v := os.Getenv(envPresetDir); v != "" {
		cfg.PresetDir = v
	}

	return cfg
}

// ParseLogLevel maps a level name to a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
