package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Kyky30/Projet-SIR/internal/backend"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List available engine kinds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDETERMINISTIC\tINTEGER COUNTS\tDESCRIPTION")
		for _, info := range backend.DefaultRegistry().List() {
			name := info.Name
			if name == backend.DefaultKind {
				name += " (default)"
			}
			c := info.Capabilities
			fmt.Fprintf(tw, "%s\t%t\t%t\t%s\n", name, c.Deterministic, c.IntegerCounts, c.Description)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}
