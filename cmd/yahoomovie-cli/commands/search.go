package commands

import (
	"fmt"
	"strings"
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchLimit *int

func init() {
	searchLimit = searchCmd.Flags().Int("limit", 10, "The maximum number of results, 0 for all.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <name> [--limit <n>]",
	Short: "Finds stored movies by chinese or english name.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		results := g.Service.Search(strings.Join(args, " "), *searchLimit)
		if len(results) == 0 {
			fmt.Println("no matching movies")
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"#", "ID", "Name", "English Name", "Score"})
		for _, r := range results {
			t.AppendRow(table.Row{r.Index, r.ID, r.ChineseName, r.EnglishName, fmt.Sprintf("%.2f", r.Score)})
		}
		t.Render()
	},
}
