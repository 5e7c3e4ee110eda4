package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"tripextract/internal/adapters/observability"
)

const (
	linkBase     = "https://www.tripadvisor.com/"
	combinedFile = "combine.txt"
	linkCardSel  = "div.kgrOn.o"
)

type LinkService struct {
	base string
}

// NewLinkService prefixes every harvested href with base; empty means the default site root.
func NewLinkService(base string) *LinkService {
	if base == "" {
		base = linkBase
	}
	return &LinkService{base: base}
}

// Collect reads every saved listing page (*.txt) in dir and writes the detail
// links, one per line, to dir/combine.txt. It returns the number of links.
func (s *LinkService) Collect(ctx context.Context, dir string) (int, error) {
	files, err := listFiles(dir, ".txt")
	if err != nil {
		return 0, err
	}
	var links []string
	failed := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if filepath.Base(f) == combinedFile {
			continue
		}
		found, err := linksFromFile(f)
		if err != nil {
			failed++
			observability.ObserveFile("links", "error")
			logFileError(f, err)
			continue
		}
		observability.ObserveFile("links", "ok")
		log.Debug().Str("file", f).Int("links", len(found)).Msg("links harvested")
		links = append(links, found...)
	}

	var b strings.Builder
	for _, l := range links {
		b.WriteString(s.base + l + "\n")
	}
	dst := filepath.Join(dir, combinedFile)
	if err := os.WriteFile(dst, []byte(b.String()), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", dst, err)
	}
	log.Info().Str("output", dst).Int("links", len(links)).Msg("links written")
	if failed > 0 {
		return len(links), fmt.Errorf("links: %d files failed", failed)
	}
	return len(links), nil
}

func linksFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var out []string
	doc.Find(linkCardSel).Each(func(_ int, card *goquery.Selection) {
		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			out = append(out, strings.TrimSpace(href))
		}
	})
	return out, nil
}
