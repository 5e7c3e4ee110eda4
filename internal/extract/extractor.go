package extract

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"tripextract/internal/adapters/observability"
	"tripextract/internal/domain"
)

// Extractor turns saved pages into records using per-category profiles.
type Extractor struct {
	profiles map[domain.Category]Profile
}

func New(profiles map[domain.Category]Profile) *Extractor {
	return &Extractor{profiles: profiles}
}

func (e *Extractor) Profile(c domain.Category) (Profile, bool) {
	p, ok := e.profiles[c]
	return p, ok
}

// Extract parses one page. The page text is HTML-unescaped once before
// parsing and the same unescaped text feeds the regex-based fields.
func (e *Extractor) Extract(c domain.Category, id, page string) (domain.Record, error) {
	p, ok := e.profiles[c]
	if !ok {
		return domain.Record{}, fmt.Errorf("%w: no profile for %q", domain.ErrUnknownCategory, c)
	}
	raw := html.UnescapeString(page)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse html: %w", err)
	}

	rec := domain.Record{
		Category:    c,
		ID:          id,
		Name:        Name(doc),
		HasDuration: p.Duration,
		TrackHotels: p.NearbyHotels,
	}

	var tier string
	rec.AboutAndTags, tier = AboutAndTags(doc, raw, p)
	observability.ObserveFallback("about_and_tags", tier)

	rec.Latitude, rec.Longitude, tier = LatLong(raw)
	observability.ObserveFallback("coordinates", tier)

	rec.StartTime, rec.EndTime, tier = Hours(doc, raw, p)
	observability.ObserveFallback("hours", tier)

	if p.Duration {
		rec.Duration = Duration(raw)
	}

	rec.Reviews, tier = Reviews(doc, p)
	observability.ObserveFallback("reviews", tier)

	var tiers []string
	rec.Nearby, tiers = Nearby(doc, p.NearbyHotels)
	if len(tiers) == 0 {
		tiers = []string{"none"}
	}
	for _, t := range tiers {
		observability.ObserveFallback("nearby", t)
	}

	log.Debug().Str("category", string(c)).Str("id", id).
		Int("reviews", len(rec.Reviews)).Strs("nearby_tiers", tiers).
		Msg("record extracted")
	observability.ObserveRecord(string(c))
	return rec, nil
}
