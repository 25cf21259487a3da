package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	repSelect int
	repName   string
	repOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report [id]",
	Short: "Download the PDF report for a dataset",
	Long:  "Download the PDF report for a dataset by backend id, or for the Nth most recent dataset with --select. The file is saved as <name>_report.pdf.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (repSelect > 0) {
			return fmt.Errorf("specify exactly one of <id> or --select")
		}
		ctx := cmd.Context()
		sess := newSession()
		var id *int64
		name := repName
		if len(args) == 1 {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid dataset id %q", args[0])
			}
			id = &n
			if name == "" {
				sess.LoadHistory(ctx)
				if d := findByID(sess.Snapshot().History, n); d != nil {
					name = d.Name
				}
			}
		} else {
			d, err := selectFromHistory(ctx, sess, repSelect)
			if err != nil {
				return err
			}
			if d.ID == nil {
				return fmt.Errorf("dataset %q has no id; the backend cannot build its report", d.Name)
			}
			id = d.ID
			if name == "" {
				name = d.Name
			}
		}
		dir := repOut
		if dir == "" {
			dir = cfg.ReportsDir
		}
		if name == "" {
			name = fmt.Sprintf("dataset_%d", *id)
		}
		path, err := sess.DownloadReport(ctx, id, name, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Report saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVarP(&repSelect, "select", "s", 0, "use the Nth most recent dataset (1 = latest)")
	reportCmd.Flags().StringVar(&repName, "name", "", "dataset display name used for the file name")
	reportCmd.Flags().StringVarP(&repOut, "out", "o", "", "output directory (default reports_dir)")
}
