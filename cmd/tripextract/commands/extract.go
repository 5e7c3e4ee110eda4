package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripextract/internal/app"
	"tripextract/internal/domain"
	"tripextract/internal/extract"
	"tripextract/internal/ids"
)

var seedDir string

func init() {
	extractCmd.Flags().StringVar(&seedDir, "seed-from", "",
		"Directory of earlier *_clean.json files; new ids continue after the ones found there.")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract [--seed-from <dir>]",
	Short: "Extracts records from pretty page lists into <name>_clean.json files.",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := extract.LoadProfiles(cfg.ProfilesFile)
		if err != nil {
			return err
		}
		// one sequencer per run: ids keep counting across files
		svc := app.NewExtractService(extract.New(profiles), ids.NewSequencer())
		if seedDir != "" {
			// a missing seed dir fails the run; only missing inputs are skipped
			cats, err := selectedCategories()
			if err != nil {
				return err
			}
			for _, c := range cats {
				if err := svc.SeedFrom(c, seedDir); err != nil {
					return fmt.Errorf("--seed-from: %w", err)
				}
			}
		}
		return forEachCategory("extract", func(c domain.Category) (app.DirResult, error) {
			return svc.ProcessDir(cmd.Context(), c, categoryDir(c, prettyDir), categoryDir(c, extractDir))
		})
	},
}
