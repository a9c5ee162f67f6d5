package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kyky30/Projet-SIR/internal/model"
	"github.com/Kyky30/Projet-SIR/internal/store"
)

var presetSets []string

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage named parameter presets",
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List preset names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(loadConfig(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		names, err := s.ListPresets(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a preset's parameter summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(loadConfig(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.GetPreset(cmd.Context(), args[0])
		if err != nil {
			return presetErr(args[0], err)
		}
		fmt.Fprint(cmd.OutOrStdout(), p.Summary())
		return nil
	},
}

var presetSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save the default parameters with --set overrides as a preset",
	Long: `Saves a preset built from the default parameters and any --set
overrides. An existing preset with the same name is overwritten.`,
	Example: `  sirsim preset save flu --set transmission_probability=0.3 --set infection_duration=5`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := applySets(model.DefaultParams(), presetSets)
		if err != nil {
			return err
		}
		return savePreset(cmd, args[0], p)
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(loadConfig(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DeletePreset(cmd.Context(), args[0]); err != nil {
			return presetErr(args[0], err)
		}
		return nil
	},
}

var presetImportCmd = &cobra.Command{
	Use:   "import NAME FILE",
	Short: "Save a YAML parameter file as a preset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[1], err)
		}
		p, err := store.UnmarshalPresetYAML(data)
		if err != nil {
			return err
		}
		return savePreset(cmd, args[0], p)
	},
}

var presetExportCmd = &cobra.Command{
	Use:   "export NAME [FILE]",
	Short: "Write a preset as YAML to FILE or stdout",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(loadConfig(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.GetPreset(cmd.Context(), args[0])
		if err != nil {
			return presetErr(args[0], err)
		}
		data, err := store.MarshalPresetYAML(p)
		if err != nil {
			return err
		}
		if len(args) == 2 {
			return os.WriteFile(args[1], data, 0o644)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

// savePreset validates p against the configured ceiling and stores it.
func savePreset(cmd *cobra.Command, name string, p model.Params) error {
	cfg := loadConfig(cmd)
	if err := store.ValidatePresetName(name); err != nil {
		return err
	}
	if err := p.Validate(cfg.MaxPopulation); err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SavePreset(cmd.Context(), name, p); err != nil {
		return err
	}
	newLogger(cmd, cfg).Info("preset saved", "name", name)
	return nil
}

func presetErr(name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("preset %q not found", name)
	}
	return err
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetListCmd, presetShowCmd, presetSaveCmd, presetDeleteCmd, presetImportCmd, presetExportCmd)

	presetSaveCmd.Flags().StringArrayVar(&presetSets, "set", nil, "override one parameter, key=value (repeatable)")
}
