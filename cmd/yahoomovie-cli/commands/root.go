package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/config"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The json5 config file, <name>.local.json5 next to it overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages.")
}

var rootCmd = &cobra.Command{
	Use:   "yahoomovie-cli",
	Short: "yahoomovie-cli scrapes movies, showtimes and theaters from movies.yahoo.com.tw.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		telemetry.InitSlog(cfg.Verbose || *verbose)

		value, err := globals.Build(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		err = value.Service.LoadIssues()
		if err != nil {
			slog.Warn("some tables could not be loaded and start out empty", "err", err)
		}

		cmd.SetContext(globals.Set(cmd.Context(), value))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := globals.Get(cmd.Context()).Otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
	SilenceUsage: true,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
