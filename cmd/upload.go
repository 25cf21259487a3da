package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
	"github.com/KaramelBytes/chemviz-cli/internal/render"
)

var (
	upCharts bool
	upReport bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Upload a CSV dataset and show its analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("dataset: %w", err)
		}
		ctx := cmd.Context()
		sess := newSession()
		sess.Choose(path)
		sess.Upload(ctx)

		st := sess.Snapshot()
		out := cmd.OutOrStdout()
		fmt.Fprint(out, render.Dashboard(st, render.Options{Cursor: -1}))
		active := st.Active()
		if dataset.Classify(active) != dataset.KindSummary {
			return fmt.Errorf("upload of %s failed", path)
		}
		if upCharts {
			paths, err := render.WriteCharts(active, cfg.ChartsDir)
			if err != nil {
				return fmt.Errorf("charts: %w", err)
			}
			for _, p := range paths {
				fmt.Fprintf(out, "✓ Wrote chart %s\n", p)
			}
		}
		if upReport {
			if active.ID == nil {
				fmt.Fprintln(os.Stderr, "⚠ Warning: backend did not return a dataset id; no report available")
				return nil
			}
			p, err := sess.DownloadReport(ctx, active.ID, active.Name, cfg.ReportsDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Report saved to %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolVar(&upCharts, "charts", false, "also write PNG charts to charts_dir")
	uploadCmd.Flags().BoolVar(&upReport, "report", false, "also download the PDF report to reports_dir")
}
