// Package cmd contains the CLI commands for indicatord.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/offscreen/internal/config"
)

var (
	configPath string
	addr       string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "indicatord",
	Short: "Off-screen indicator host",
	Long: `indicatord runs a demo scene of moving entities, tracks which of them are
outside the camera view and streams the resulting edge indicators to
websocket subscribers.

Endpoints:
  /ws        indicator frames as JSON text messages
  /metrics   prometheus metrics
  /healthz   liveness probe

Examples:
  indicatord                          # run with built-in defaults
  indicatord run --config host.yaml   # run with a config file
  indicatord config --addr :9000      # print the resolved configuration`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug | info | warn | error, overrides log_level")
}

// loadConfig resolves the configuration from the file, then the flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = addr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
