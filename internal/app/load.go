package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tripextract/internal/adapters/observability"
	"tripextract/internal/domain"
	"tripextract/internal/storage/mysql"
)

// LoadService writes extracted JSON files into the relational store.
type LoadService struct {
	repo  domain.RecordRepository
	cache domain.Cache
}

// NewLoadService builds the loader; cache may be nil.
func NewLoadService(r domain.RecordRepository, cache domain.Cache) *LoadService {
	return &LoadService{repo: r, cache: cache}
}

// LoadDir loads every *.json file in dir into the category's table.
func (s *LoadService) LoadDir(ctx context.Context, c domain.Category, dir string) (DirResult, error) {
	var res DirResult
	files, err := listFiles(dir, ".json")
	if err != nil {
		return res, err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n, err := s.LoadFile(ctx, c, f)
		if err != nil {
			res.Failed++
			observability.ObserveFile("load_sql", "error")
			logFileError(f, err)
			continue
		}
		res.Processed++
		res.Records += n
		observability.ObserveFile("load_sql", "ok")
		log.Info().Str("file", f).Str("table", c.Table()).Int("rows", n).Msg("rows loaded")
	}
	return res, res.Err("load-sql")
}

// LoadFile infers a schema from one file, makes sure the table fits it and
// upserts the rows. Empty files are skipped.
func (s *LoadService) LoadFile(ctx context.Context, c domain.Category, path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	rows, err := domain.DecodeRows(b)
	if err != nil {
		return 0, fmt.Errorf("decode rows: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	schema := mysql.InferSchema(rows)
	if !schema.Has(c.IDKey()) {
		return 0, fmt.Errorf("no %s column in %s", c.IDKey(), path)
	}
	if err := s.repo.EnsureTable(ctx, c.Table(), schema); err != nil {
		return 0, err
	}
	if err := s.repo.UpsertRows(ctx, c.Table(), schema, rows); err != nil {
		return 0, err
	}
	observability.ObserveRows(c.Table(), len(rows))

	// Loaded rows change both single-record and list responses.
	if s.cache != nil {
		for _, r := range rows {
			if id, ok := r.Get(c.IDKey()).(string); ok {
				_ = s.cache.Del(ctx, recordKey(c, id))
			}
		}
		// no expiry: the generation must outlive the pages it retires
		_ = s.cache.Set(ctx, generationKey(c), uuid.NewString(), 0)
	}
	return len(rows), nil
}
