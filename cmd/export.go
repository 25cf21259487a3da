package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
	"github.com/KaramelBytes/chemviz-cli/internal/render"
)

var (
	exSelect int
	exOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a dataset's summary and charts to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := selectFromHistory(cmd.Context(), newSession(), exSelect)
		if err != nil {
			return err
		}
		path := exOut
		if path == "" {
			stem := dataset.Stem(d.Name)
			if stem == "" {
				stem = "dataset"
			}
			path = filepath.Join(cfg.ChartsDir, stem+"_summary.xlsx")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("mkdir export dir: %w", err)
		}
		if err := render.ExportXLSX(d, path); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().IntVarP(&exSelect, "select", "s", 1, "use the Nth most recent dataset (1 = latest)")
	exportCmd.Flags().StringVarP(&exOut, "out", "o", "", "output .xlsx path (default <charts_dir>/<name>_summary.xlsx)")
}
