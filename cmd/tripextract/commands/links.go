package commands

import (
	"github.com/spf13/cobra"

	"tripextract/internal/app"
	"tripextract/internal/domain"
)

var linkBase string

func init() {
	linksCmd.Flags().StringVar(&linkBase, "base", "", "Prefix for harvested hrefs (default https://www.tripadvisor.com/).")
	rootCmd.AddCommand(linksCmd)
}

var linksCmd = &cobra.Command{
	Use:   "links [--base <url>]",
	Short: "Collects detail-page links from saved listing pages into combine.txt.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := app.NewLinkService(linkBase)
		return forEachCategory("links", func(c domain.Category) (app.DirResult, error) {
			n, err := svc.Collect(cmd.Context(), categoryDir(c, linksDir))
			return app.DirResult{Records: n}, err
		})
	},
}
