package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kyky30/Projet-SIR/internal/backend"
	"github.com/Kyky30/Projet-SIR/internal/config"
	"github.com/Kyky30/Projet-SIR/internal/engine"
	"github.com/Kyky30/Projet-SIR/internal/model"
	"github.com/Kyky30/Projet-SIR/internal/output"
	"github.com/Kyky30/Projet-SIR/internal/store"
)

var (
	runEngine     string
	runPreset     string
	runParamsFile string
	runSets       []string
	runSeed       int64
	runFormat     string
	runOutput     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one run and write its daily snapshots",
	Long: `Runs a simulation in the foreground, batch by batch, writing every
snapshot as soon as its batch completes. Parameters start from the defaults,
a stored preset (--preset) or a YAML file (--params), then --set overrides
apply. SIGINT stops the run at the next batch boundary; snapshots written so
far are kept.`,
	Example: `  # Default parameters on the default engine, CSV on stdout
  sirsim run

  # Stochastic run from a preset, 200 days, JSON lines to a file
  sirsim run --engine stochastic --preset flu --set horizon_days=200 -f jsonl -o flu.jsonl

  # Reproducible run
  sirsim run --engine stochastic --seed 42`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		logger := newLogger(cmd, cfg)

		params, err := resolveRunParams(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		kind := runEngine
		if kind == "" {
			kind = backend.DefaultKind
		}
		b, err := backend.DefaultRegistry().Resolve(kind)
		if err != nil {
			return err
		}
		if err := params.ValidateFor(kind, cfg.MaxPopulation); err != nil {
			return err
		}

		seed := runSeed
		if !cmd.Flags().Changed("seed") {
			seed = time.Now().UnixNano()
		}
		eng, err := b.New(backend.RunSpec{Params: params, Seed: seed})
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if runOutput != "" {
			f, err := os.Create(runOutput)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}
		sw, err := output.NewWriter(runFormat, out)
		if err != nil {
			return err
		}

		ctrl := engine.NewController()
		if err := ctrl.Start(eng, params.HorizonDays, params.Discretization); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			ctrl.Stop()
		}()

		logger.Info("run started", "engine", kind, "seed", seed,
			"horizon", params.HorizonDays, "batch", params.Discretization)

		for batch, err := range ctrl.Batches() {
			if err != nil {
				return fmt.Errorf("engine failed after %d days: %w", ctrl.Elapsed(), err)
			}
			if err := sw.Write(batch.Snapshots); err != nil {
				ctrl.Stop()
				return fmt.Errorf("write snapshots: %w", err)
			}
			logger.Debug("batch done", "elapsed", batch.Elapsed, "horizon", batch.Horizon)
		}

		logger.Info("run finished", "engine", kind, "status", ctrl.State().String(), "elapsed", ctrl.Elapsed())
		return nil
	},
}

// resolveRunParams picks the base bundle and applies --set overrides.
func resolveRunParams(ctx context.Context, cfg config.Config) (model.Params, error) {
	if runPreset != "" && runParamsFile != "" {
		return model.Params{}, fmt.Errorf("--preset and --params are mutually exclusive")
	}

	params := model.DefaultParams()
	switch {
	case runParamsFile != "":
		data, err := os.ReadFile(runParamsFile)
		if err != nil {
			return model.Params{}, fmt.Errorf("read params file: %w", err)
		}
		if params, err = store.UnmarshalPresetYAML(data); err != nil {
			return model.Params{}, err
		}
	case runPreset != "":
		s, err := openStore(cfg)
		if err != nil {
			return model.Params{}, err
		}
		defer s.Close()
		if params, err = s.GetPreset(ctx, runPreset); err != nil {
			return model.Params{}, fmt.Errorf("preset %q: %w", runPreset, err)
		}
	}
	return applySets(params, runSets)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEngine, "engine", "e", "", "engine kind (stochastic or ode, default ode)")
	runCmd.Flags().StringVar(&runPreset, "preset", "", "start from a stored preset")
	runCmd.Flags().StringVar(&runParamsFile, "params", "", "start from a YAML parameter file")
	runCmd.Flags().StringArrayVar(&runSets, "set", nil, "override one parameter, key=value (repeatable)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed for the stochastic engine (default: time based)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", output.FormatCSV, "output format: csv or jsonl")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "write snapshots to this file instead of stdout")
}
