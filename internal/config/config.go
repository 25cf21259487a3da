package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIBase        string `mapstructure:"api_base" yaml:"api_base"`
	APIToken       string `mapstructure:"api_token" yaml:"api_token,omitempty"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	ReportsDir     string `mapstructure:"reports_dir" yaml:"reports_dir"`
	ChartsDir      string `mapstructure:"charts_dir" yaml:"charts_dir"`
	// Log file for the interactive dashboard; stderr would corrupt the screen.
	LogFile string `mapstructure:"log_file" yaml:"log_file,omitempty"`
}

// Dir returns ~/.chemviz.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".chemviz"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.chemviz/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	// The file may hold an API token.
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CHEMVIZ")
	v.AutomaticEnv()

	v.SetDefault("api_base", "http://127.0.0.1:8000/api")
	v.SetDefault("api_token", "")
	v.SetDefault("http_timeout_sec", 15)
	v.SetDefault("reports_dir", ".")
	v.SetDefault("charts_dir", ".")
	v.SetDefault("log_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.HTTPTimeoutSec <= 0 {
		c.HTTPTimeoutSec = 15
	}
	return &c, nil
}
