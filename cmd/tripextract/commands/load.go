package commands

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	redisad "tripextract/internal/adapters/redis"
	"tripextract/internal/adapters/weaviate"
	"tripextract/internal/app"
	"tripextract/internal/domain"
	mysqlrepo "tripextract/internal/storage/mysql"
)

var vectorReset bool

func init() {
	loadVectorCmd.Flags().BoolVar(&vectorReset, "reset", true, "Drop and recreate the category collections before loading.")
	rootCmd.AddCommand(loadSQLCmd, loadVectorCmd)
}

var loadSQLCmd = &cobra.Command{
	Use:   "load-sql",
	Short: "Loads extracted records into MySQL/MariaDB, one table per category.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fmt.Errorf("sql.Open: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		log.Info().Msg("database connection ok")

		svc := app.NewLoadService(mysqlrepo.New(db), openCache(cmd.Context()))
		return forEachCategory("load-sql", func(c domain.Category) (app.DirResult, error) {
			return svc.LoadDir(cmd.Context(), c, categoryDir(c, extractDir))
		})
	},
}

// openCache returns the API cache so a load can evict stale entries, or nil
// when redis is not reachable.
func openCache(ctx context.Context) domain.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable; cache eviction disabled")
		_ = cache.Close()
		return nil
	}
	return cache
}

var loadVectorCmd = &cobra.Command{
	Use:   "load-vector [--reset=false]",
	Short: "Pushes Embedded and Bridge projections of extracted records into Weaviate.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := weaviate.New(weaviate.Options{
			BaseURL:   cfg.WeaviateURL,
			APIKey:    cfg.WeaviateKey,
			OpenAIKey: cfg.OpenAIKey,
			RPS:       cfg.VectorRPS,
		})
		if err != nil {
			return err
		}
		if cfg.OpenAIKey == "" {
			log.Warn().Msg("OPENAI_APIKEY is empty; the vectorizer will reject inserts")
		}
		svc := app.NewVectorService(client, cfg.LoadWorkers)

		if vectorReset {
			cats, err := selectedCategories()
			if err != nil {
				return err
			}
			if err := svc.Reset(cmd.Context(), cats); err != nil {
				return err
			}
		}
		return forEachCategory("load-vector", func(c domain.Category) (app.DirResult, error) {
			return svc.LoadDir(cmd.Context(), c, categoryDir(c, extractDir))
		})
	},
}
