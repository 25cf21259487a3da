package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/chemviz-cli/internal/dashboard"
	"github.com/KaramelBytes/chemviz-cli/internal/logging"
	"github.com/KaramelBytes/chemviz-cli/internal/tui"
)

var dashExport string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.NewFile(cfg.LogFile, debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
			log = zap.NewNop()
		}
		defer func() { _ = log.Sync() }()
		// Report failures surface as an in-view notice.
		sess := dashboard.NewSession(newClient(), nil, log)
		opts := tui.Options{ReportsDir: cfg.ReportsDir, ChartsDir: cfg.ChartsDir, ExportPath: dashExport}
		p := tea.NewProgram(tui.New(sess, opts, log), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVar(&dashExport, "export", "", "XLSX path used by the x key (default <charts_dir>/<name>_summary.xlsx)")
}
