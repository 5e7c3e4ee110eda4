package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"tripextract/internal/adapters/observability"
	"tripextract/internal/domain"
	"tripextract/internal/extract"
	"tripextract/internal/ids"
)

type ExtractService struct {
	ex  *extract.Extractor
	seq *ids.Sequencer
}

func NewExtractService(ex *extract.Extractor, seq *ids.Sequencer) *ExtractService {
	return &ExtractService{ex: ex, seq: seq}
}

// SeedFrom advances the id sequence past every id already present in the
// *_clean.json files of dir, so a new batch continues the numbering.
func (s *ExtractService) SeedFrom(c domain.Category, dir string) error {
	files, err := listFiles(dir, "_clean.json")
	if err != nil {
		return err
	}
	var existing []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		rows, err := domain.DecodeRows(b)
		if err != nil {
			return fmt.Errorf("decode %s: %w", f, err)
		}
		for _, r := range rows {
			if id, ok := r.Get(c.IDKey()).(string); ok {
				existing = append(existing, id)
			}
		}
	}
	s.seq.Seed(c.Prefix(), existing)
	return nil
}

// ProcessDir extracts every *.json page list in in and writes <base>_clean.json
// files into out. A failing file is logged and skipped.
func (s *ExtractService) ProcessDir(ctx context.Context, c domain.Category, in, out string) (DirResult, error) {
	var res DirResult
	files, err := listFiles(in, ".json")
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if strings.HasSuffix(f, "_clean.json") {
			observability.ObserveFile("extract", "skipped")
			continue
		}
		n, err := s.ProcessFile(c, f, out)
		if err != nil {
			res.Failed++
			observability.ObserveFile("extract", "error")
			logFileError(f, err)
			continue
		}
		res.Processed++
		res.Records += n
		observability.ObserveFile("extract", "ok")
		log.Info().Str("file", f).Int("records", n).Msg("extracted")
	}
	return res, res.Err("extract")
}

// ProcessFile extracts one file and returns the number of records written.
func (s *ExtractService) ProcessFile(c domain.Category, path, out string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pages []domain.RawPage
	if err := json.Unmarshal(b, &pages); err != nil {
		return 0, fmt.Errorf("decode pages: %w", err)
	}
	recs := make([]domain.Record, 0, len(pages))
	for _, p := range pages {
		rec, err := s.ex.Extract(c, s.seq.Next(c.Prefix()), p.HTML)
		if err != nil {
			return 0, fmt.Errorf("extract %s: %w", p.URL, err)
		}
		recs = append(recs, rec)
	}
	dst := filepath.Join(out, baseName(path, ".json")+"_clean.json")
	if err := writeJSON(dst, recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}

func logFileError(path string, err error) {
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Error().Str("file", path).Msg("file not found")
	case errors.As(err, &syn), errors.As(err, &typ):
		log.Error().Str("file", path).Err(err).Msg("invalid JSON")
	default:
		log.Error().Str("file", path).Err(err).Msg("processing failed")
	}
}
