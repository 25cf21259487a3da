package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chemviz-cli/internal/render"
)

var (
	chSelect int
	chOut    string
)

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Write the distribution and averages charts of a dataset as PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := selectFromHistory(cmd.Context(), newSession(), chSelect)
		if err != nil {
			return err
		}
		dir := chOut
		if dir == "" {
			dir = cfg.ChartsDir
		}
		paths, err := render.WriteCharts(d, dir)
		if err != nil {
			return fmt.Errorf("charts: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote chart %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chartsCmd.Flags().IntVarP(&chSelect, "select", "s", 1, "use the Nth most recent dataset (1 = latest)")
	chartsCmd.Flags().StringVarP(&chOut, "out", "o", "", "output directory (default charts_dir)")
}
