// Package cli implements the sirsim command line: the API server, one-off
// simulation runs and preset management.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Kyky30/Projet-SIR/internal/config"
	"github.com/Kyky30/Projet-SIR/internal/store"
)

var (
	dbPath    string
	logLevel  string
	presetDir string

	rootCmd = &cobra.Command{
		Use:   "sirsim",
		Short: "SEIRD epidemic propagation engine",
		Long: `sirsim simulates an epidemic over a closed population split into
healthy, exposed, infected, recovered and dead compartments, either
individual by individual (stochastic) or as aggregate rates (ode).

Environment variables (SIRSIM_*) configure every command; flags win over them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (env SIRSIM_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env SIRSIM_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&presetDir, "preset-dir", "", "store presets as YAML files in this directory (env SIRSIM_PRESET_DIR)")
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = config.ParseLogLevel(logLevel)
	}
	if flags.Changed("preset-dir") {
		cfg.PresetDir = presetDir
	}
	return cfg
}

func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	return config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
}

// openStore opens the SQLite store, routing presets to the preset directory
// when one is configured.
func openStore(cfg config.Config) (store.Store, error) {
	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.PresetDir == "" {
		return db, nil
	}
	dir, err := store.NewDirPresetStore(cfg.PresetDir)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store.WithPresets(db, dir), nil
}
