package commands

import (
	"fmt"
	"os"
	"yahoomovie/cmd/yahoomovie-cli/globals"
	"yahoomovie/cmd/yahoomovie-cli/utils"

	"github.com/spf13/cobra"
)

var posterOut *string

func init() {
	posterOut = posterCmd.Flags().StringP("out", "o", "poster.jpg", "Where to write the image.")
	rootCmd.AddCommand(posterCmd)
}

var posterCmd = &cobra.Command{
	Use:   "poster <movie id> [-o <file>]",
	Short: "Downloads the poster of a stored movie.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		movie, err := g.Service.Movie(args[0])
		if err != nil {
			utils.Fatal("failed to find movie", err)
		}
		body, err := g.Service.Poster(cmd.Context(), movie.PosterUrl)
		if err != nil {
			utils.Fatal("failed to download poster", err)
		}
		err = os.WriteFile(*posterOut, body, 0644)
		if err != nil {
			utils.Fatal("failed to write poster", err)
		}
		fmt.Printf("wrote %d bytes to %s\n", len(body), *posterOut)
	},
}
