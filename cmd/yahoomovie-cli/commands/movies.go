package commands

import (
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	moviesRecent  *int
	moviesDetails *bool
)

func init() {
	moviesRecent = moviesCmd.Flags().Int("recent", 0, "Only list movies released in the last <n> days (7 for this week).")
	moviesDetails = moviesCmd.Flags().Bool("details", false, "Also show credits and the synopsis.")
	rootCmd.AddCommand(moviesCmd)
}

func renderMovies(rows []catalog.MovieRow, details bool) {
	t := utils.NewTable()
	if details {
		t.AppendHeader(table.Row{"#", "ID", "Name", "Runtime", "Director", "Cast", "Synopsis"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Index, r.ID, r.ChineseName, r.Runtime, r.Director, r.Cast, r.Synopsis})
		}
	} else {
		t.AppendHeader(table.Row{"#", "ID", "Name", "English Name", "Release", "Expectation", "Satisfaction", "IMDb"})
		for _, r := range rows {
			t.AppendRow(table.Row{
				r.Index, r.ID, r.ChineseName, r.EnglishName, r.ReleaseDate,
				r.Expectation, r.Satisfaction, r.ImdbScore,
			})
		}
	}
	t.Render()
}

var moviesCmd = &cobra.Command{
	Use:   "movies [--recent <days>] [--details]",
	Short: "Lists the stored movies.",
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		rows, err := g.Service.Movies(service.MovieQuery{
			RecentDays: *moviesRecent,
			Preview:    true,
		})
		if err != nil {
			utils.Fatal("failed to list movies", err)
		}
		renderMovies(rows, *moviesDetails)
	},
}
