package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeusync/offscreen/internal/injector"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scene and serve the indicator feed",
	Long: `Run the demo scene and serve the indicator feed until interrupted.

This is also what indicatord does when called without a command.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return app.Run(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
