package commands

import (
	"log/slog"
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"
	"yahoomovie/internal/components/chrono"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/notify"
	"yahoomovie/internal/watch"

	"github.com/spf13/cobra"
)

var watchNow *bool

func init() {
	watchNow = watchCmd.Flags().Bool("now", false, "Also crawl once right away.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--now]",
	Short: "Re-crawls on the watch.cron schedule and mails a digest of new movies.",
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())
		ctx := cmd.Context()

		var digest watch.DigestSender
		if g.Config.Smtp.Enabled() && len(g.Config.Notify.To) > 0 {
			digest = notify.NewMailer(g.Config.Smtp, g.Config.Notify.To, g.Tel)
		} else {
			slog.Info("smtp or notify.to is not configured, digests will not be sent")
		}
		watcher := watch.New(g.Crawler, digest, g.Tel)

		telemetry.InstrumentPerfStats(ctx, g.Tel)

		if *watchNow {
			result, _ := watcher.Tick(ctx)
			printAdded(result)
		}

		cron := chrono.NewStandardCron(g.Tel)
		err := watcher.Schedule(ctx, cron, g.Config.Watch.Cron)
		if err != nil {
			utils.Fatal("invalid watch.cron", err)
		}
		slog.Info("watching", "cron", g.Config.Watch.Cron)

		<-ctx.Done()
		cron.Stop()
	},
}
