package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Kyky30/Projet-SIR/internal/api"
	"github.com/Kyky30/Projet-SIR/internal/backend"
	"github.com/Kyky30/Projet-SIR/internal/engine"
)

var (
	listenAddr    string
	maxPopulation int
	batchDelay    time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serves the run, preset and engine API until SIGINT or SIGTERM.
Runs still in flight at shutdown are stopped and recorded as stopped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		flags := cmd.Flags()
		if flags.Changed("addr") {
			cfg.ListenAddr = listenAddr
		}
		if flags.Changed("max-population") {
			cfg.MaxPopulation = maxPopulation
		}
		if flags.Changed("batch-delay") {
			cfg.BatchDelay = batchDelay
		}

		logger := newLogger(cmd, cfg)
		logger.Info("sirsim: starting",
			"listen_addr", cfg.ListenAddr,
			"db_path", cfg.DBPath,
			"preset_dir", cfg.PresetDir,
			"max_population", cfg.MaxPopulation,
			"batch_delay", cfg.BatchDelay.String(),
		)

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		reg := backend.DefaultRegistry()
		runner := engine.NewRunner(s, reg, logger,
			engine.WithBatchDelay(cfg.BatchDelay),
			engine.WithMaxPopulation(cfg.MaxPopulation),
		)
		srv := api.NewServer(cfg.ListenAddr, s, reg, runner, logger,
			api.WithMaxPopulation(cfg.MaxPopulation),
		)
		return srv.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (env SIRSIM_LISTEN_ADDR, default :8080)")
	serveCmd.Flags().IntVar(&maxPopulation, "max-population", 0, "population ceiling per run, 0 disables it (env SIRSIM_MAX_POPULATION)")
	serveCmd.Flags().DurationVar(&batchDelay, "batch-delay", 0, "pause between batches (env SIRSIM_BATCH_DELAY, default 100ms)")
}
