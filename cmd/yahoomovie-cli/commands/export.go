package commands

import (
	"fmt"
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"
	"yahoomovie/internal/export"

	"github.com/spf13/cobra"
)

var exportFile *string

func init() {
	exportFile = exportCmd.Flags().String("file", "", "Export to this sqlite file instead of the configured database.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--file <path/to/out.db>]",
	Short: "Mirrors the movie, theater and showtime tables into sqlite or libsql.",
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		target := g.Config.Export
		if *exportFile != "" {
			target = export.Database{File: *exportFile}
		}
		if !target.Enabled() {
			utils.Fatal("nothing to export to", fmt.Errorf("set export.file, export.url or --file"))
		}

		db, err := target.OpenDB()
		if err != nil {
			utils.Fatal("failed to open export database", err)
		}
		defer db.Close()

		snap := export.TakeSnapshot(g.Store)
		err = export.NewExporter(db, g.Tel).Export(cmd.Context(), snap)
		if err != nil {
			utils.Fatal("failed to export", err)
		}
		fmt.Printf(
			"exported %d movies, %d theaters, %d showtimes\n",
			len(snap.Movies), len(snap.Theaters), len(snap.Showtimes),
		)
	},
}
