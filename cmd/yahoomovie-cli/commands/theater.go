package commands

import (
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(theaterCmd)
}

var theaterCmd = &cobra.Command{
	Use:   "theater <theater id>",
	Short: "Shows a stored theater.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		theater, err := g.Service.Theater(args[0])
		if err != nil {
			utils.Fatal("failed to get theater", err)
		}

		t := utils.NewTable()
		t.AppendRows([]table.Row{
			{"ID", theater.ID},
			{"Name", theater.Name},
			{"Region", theater.Region},
			{"Phone", theater.Phone},
			{"Address", theater.Address},
			{"Latitude", theater.Latitude},
			{"Longitude", theater.Longitude},
		})
		t.Render()
	},
}
