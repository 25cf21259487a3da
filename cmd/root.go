package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/chemviz-cli/internal/api"
	cfgpkg "github.com/KaramelBytes/chemviz-cli/internal/config"
	"github.com/KaramelBytes/chemviz-cli/internal/dashboard"
	"github.com/KaramelBytes/chemviz-cli/internal/logging"
)

var (
	cfgFile string
	debug   bool
	// HTTP flags (override config if set)
	flagAPIBase        string
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "chemviz",
	Short:         "ChemViz CLI: upload equipment datasets and explore their analysis",
	Long:          `ChemViz uploads CSV equipment datasets to the ChemViz backend, shows summary statistics and charts for the latest upload or any earlier one, and downloads PDF reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.chemviz/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagAPIBase, "api-base", "", "backend API root, e.g. http://127.0.0.1:8000/api (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{APIBase: api.DefaultBaseURL, HTTPTimeoutSec: 15, ReportsDir: ".", ChartsDir: "."}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("api-base") && flagAPIBase != "" {
		cfg.APIBase = flagAPIBase
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}

	l, err := logging.New(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger = l
}

func newClient() *api.Client {
	return api.NewClient(cfg.APIBase, time.Duration(cfg.HTTPTimeoutSec)*time.Second).WithToken(cfg.APIToken)
}

// newSession wires the backend client into a session whose failure notices
// go to stderr.
func newSession() *dashboard.Session {
	notify := dashboard.NotifierFunc(func(msg string) {
		fmt.Fprintln(os.Stderr, "✗", msg)
	})
	return dashboard.NewSession(newClient(), notify, logger)
}
