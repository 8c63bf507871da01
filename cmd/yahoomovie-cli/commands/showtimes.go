package commands

import (
	"fmt"
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showtimesDate *string

func init() {
	showtimesDate = showtimesCmd.Flags().String("date", "", "The date as YYYY-MM-DD, defaults to today in Taipei.")
	rootCmd.AddCommand(showtimesCmd)
}

var showtimesCmd = &cobra.Command{
	Use:   "showtimes <movie id> [--date <YYYY-MM-DD>]",
	Short: "Shows where and when a movie is showing, fetching the schedule if it is not stored yet.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		rows, err := g.Service.Showtimes(cmd.Context(), args[0], *showtimesDate)
		if err != nil {
			utils.Fatal("failed to get showtimes", err)
		}
		if len(rows) == 0 {
			fmt.Println("no showtimes")
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Theater", "Region", "Date", "Time", "Type"})
		for _, r := range rows {
			name := string(r.TheaterID)
			region := ""
			theater, err := g.Service.Theater(string(r.TheaterID))
			if err == nil {
				name = theater.Name
				region = theater.Region
			}
			t.AppendRow(table.Row{name, region, r.Date, r.Time, r.Tag})
		}
		t.Render()
	},
}
