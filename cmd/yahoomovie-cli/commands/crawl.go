package commands

import (
	"fmt"
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"
	"yahoomovie/internal/crawler"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var crawlMaxPages *int

func init() {
	crawlMaxPages = crawlCmd.Flags().Int("max-pages", 0, "Override scraper.max_pages for this run.")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--max-pages <n>]",
	Short: "Crawls the listing and stores every movie not seen before.",
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		c := g.Crawler
		if *crawlMaxPages > 0 {
			c = crawler.New(g.Client, g.Store.Movies, crawler.Options{MaxPages: *crawlMaxPages}, g.Tel)
		}

		result, err := c.Run(cmd.Context())
		printAdded(result)
		if err != nil {
			utils.Fatal("crawl stopped early, the movies above were saved", err)
		}
	},
}

func printAdded(result crawler.Result) {
	if len(result.Added) > 0 {
		t := utils.NewTable()
		t.AppendHeader(table.Row{"ID", "Name", "English Name", "Release", "IMDb"})
		for _, m := range result.Added {
			t.AppendRow(table.Row{m.ID, m.ChineseName, m.EnglishName, m.ReleaseDate, m.ImdbScore})
		}
		t.Render()
	}
	fmt.Printf("pages: %d, new: %d, known: %d\n", result.Pages, len(result.Added), result.Skipped)
}
