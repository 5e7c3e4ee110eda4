package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tripextract/internal/adapters/observability"
	"tripextract/internal/app"
	"tripextract/internal/domain"
	"tripextract/internal/shared"
)

// Per-category directory layout under the data dir.
const (
	linksDir   = "links"
	prettyDir  = "prettier_json"
	extractDir = "extract_json"
)

var (
	cfg        shared.Config
	dataDir    string
	categories []string
)

var rootCmd = &cobra.Command{
	Use:   "tripextract",
	Short: "tripextract turns saved travel pages into records and loads them into MySQL and Weaviate.",
	Long: `tripextract works on a data directory with one folder per category (eat, stay, do):

  <data>/<category>/links/*.txt                 saved listing pages      (links)
  <data>/<category>/*.jsonl                     crawler output           (prettify)
  <data>/<category>/prettier_json/*.json        pretty page lists        (extract)
  <data>/<category>/extract_json/*_clean.json   extracted records        (load-sql, load-vector)`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = shared.Load()
		log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
		if dataDir == "" {
			dataDir = cfg.DataDir
		}
		observability.Serve(cfg.MetricsAddr, observability.InitRegistry())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Root data directory (defaults to DATA_DIR).")
	rootCmd.PersistentFlags().StringSliceVarP(&categories, "category", "c", []string{"eat", "stay", "do"},
		"Categories to process (eat, stay, do).")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func selectedCategories() ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(categories))
	seen := map[domain.Category]bool{}
	for _, s := range categories {
		c, err := domain.ParseCategory(s)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func categoryDir(c domain.Category, sub ...string) string {
	return filepath.Join(append([]string{dataDir, c.Dir()}, sub...)...)
}

// forEachCategory runs stage for every selected category, skipping the ones
// whose input directory does not exist. Failures are joined, not fatal.
func forEachCategory(stage string, run func(c domain.Category) (app.DirResult, error)) error {
	cats, err := selectedCategories()
	if err != nil {
		return err
	}
	var errs error
	for _, c := range cats {
		res, err := run(c)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("stage", stage).Str("category", string(c)).Err(err).Msg("input missing; skipped")
			continue
		}
		log.Info().
			Str("stage", stage).
			Str("category", string(c)).
			Int("files", res.Processed).
			Int("failed", res.Failed).
			Int("records", res.Records).
			Msg("stage finished")
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", c, err))
		}
	}
	return errs
}
