package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var servePort *int

func init() {
	servePort = serveCmd.Flags().Int("port", 0, "Override serve.port.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port <port>]",
	Short: "Serves the stored data and on-demand showtimes as a JSON api.",
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())
		ctx := cmd.Context()

		port := g.Config.Serve.Port
		if *servePort > 0 {
			port = *servePort
		}

		telemetry.InstrumentPerfStats(ctx, g.Tel)

		server := &http.Server{
			Addr:    fmt.Sprintf("0.0.0.0:%d", port),
			Handler: h2c.NewHandler(service.NewHandler(g.Service), &http2.Server{}),
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()

		slog.Info("listening to http...", "port", port)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal(fmt.Sprintf("failed to listen on port %d", port), err)
		}
	},
}
