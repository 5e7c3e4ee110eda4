package commands

import (
	"github.com/spf13/cobra"

	"tripextract/internal/app"
	"tripextract/internal/domain"
)

func init() {
	rootCmd.AddCommand(prettifyCmd)
}

var prettifyCmd = &cobra.Command{
	Use:   "prettify",
	Short: "Converts crawler JSON-lines into pretty JSON page lists.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := app.NewPrettifyService()
		return forEachCategory("prettify", func(c domain.Category) (app.DirResult, error) {
			return svc.ProcessDir(cmd.Context(), categoryDir(c))
		})
	},
}
