package commands

import (
	"strings"
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var markersDate *string

func init() {
	markersDate = markersCmd.Flags().String("date", "", "The date as YYYY-MM-DD, defaults to today in Taipei.")
	rootCmd.AddCommand(markersCmd)
}

var markersCmd = &cobra.Command{
	Use:   "markers <movie id> [--date <YYYY-MM-DD>]",
	Short: "Lists the coordinates of every theater showing a movie.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		markers, err := g.Service.Markers(cmd.Context(), args[0], *markersDate)
		if err != nil {
			utils.Fatal("failed to get markers", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Theater", "Latitude", "Longitude", "Times"})
		for _, m := range markers {
			t.AppendRow(table.Row{m.Theater.Name, m.Theater.Latitude, m.Theater.Longitude, strings.Join(m.Times, " ")})
		}
		t.Render()
	},
}
