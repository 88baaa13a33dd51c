package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as YAML",
	Long: `Print the configuration indicatord would run with, after applying the
config file and flag overrides. The output is a valid config file.

Examples:
  indicatord config > host.yaml
  indicatord config --config host.yaml --log-level debug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cfg.Encode(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
