package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"tripextract/internal/adapters/observability"
	"tripextract/internal/domain"
	"tripextract/internal/htmlfmt"
)

const prettyDir = "prettier_json"

// crawlLine is one JSON-lines entry as written by the crawler.
type crawlLine struct {
	Input  string `json:"input"`
	Result string `json:"result"`
}

type PrettifyService struct{}

func NewPrettifyService() *PrettifyService { return &PrettifyService{} }

// ProcessDir converts every *.jsonl in in into in/prettier_json/<base>_output<N>.json.
func (s *PrettifyService) ProcessDir(ctx context.Context, in string) (DirResult, error) {
	var res DirResult
	files, err := listFiles(in, ".jsonl")
	if err != nil {
		return res, err
	}
	out := filepath.Join(in, prettyDir)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		dst, n, err := s.ProcessFile(f, out)
		if err != nil {
			res.Failed++
			observability.ObserveFile("prettify", "error")
			logFileError(f, err)
			continue
		}
		res.Processed++
		res.Records += n
		observability.ObserveFile("prettify", "ok")
		log.Info().Str("file", f).Str("output", dst).Int("pages", n).Msg("prettified")
	}
	return res, res.Err("prettify")
}

// ProcessFile rewrites one JSON-lines file and returns the output path.
func (s *PrettifyService) ProcessFile(path, out string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var pages []domain.RawPage
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var cl crawlLine
		if err := json.Unmarshal(b, &cl); err != nil {
			return "", 0, fmt.Errorf("line %d: %w", line, err)
		}
		pretty, err := htmlfmt.Prettify(cl.Result)
		if err != nil {
			return "", 0, fmt.Errorf("line %d: %w", line, err)
		}
		pages = append(pages, domain.RawPage{URL: cl.Input, HTML: pretty})
	}
	if err := sc.Err(); err != nil {
		return "", 0, fmt.Errorf("scan: %w", err)
	}

	dst := nextFreePath(out, baseName(path, ".jsonl")+"_output")
	if pages == nil {
		pages = []domain.RawPage{}
	}
	if err := writeJSON(dst, pages); err != nil {
		return "", 0, err
	}
	return dst, len(pages), nil
}

// nextFreePath returns dir/<stem><N>.json for the first N >= 1 not on disk.
func nextFreePath(dir, stem string) string {
	for n := 1; ; n++ {
		p := filepath.Join(dir, stem+strconv.Itoa(n)+".json")
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p
		}
	}
}
