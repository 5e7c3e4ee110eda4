package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tripextract/internal/domain"
)

const (
	headingHotels      = "Best nearby hotels"
	headingRestaurants = "Best nearby restaurants"
	headingAttractions = "Best nearby attractions"

	sectionTitleSel = ".biGQs._P.fiohW.ngXxk"
	sectionAltSel   = ".sectionTitle"
	nearbyBlockSel  = ".xCVkR"
	nearbyNameSel   = ".o.W.q"
	nearbyColumnSel = ".yvHvW"
	columnNameSel   = ".biGQs._P.alXOW.oCpZu.GzNcM.nvOhm.UTQMg.ZTpaU.ngXxk"
)

// Nearby fills the nearby slots in up to three passes. The heading pass reads
// the flat list of section titles; the block and column passes only run while
// the restaurant or attraction group is still empty. Hotel slots are only
// filled when hotels is set. The returned tiers list every pass that wrote
// at least one slot.
func Nearby(doc *goquery.Document, hotels bool) (domain.Nearby, []string) {
	var n domain.Nearby
	var tiers []string

	titles := doc.Find(sectionTitleSel)
	if titles.Length() == 0 {
		titles = doc.Find(sectionAltSel)
	}
	if titles.Length() > 0 {
		items := texts(titles, strings.TrimSpace)
		h, r, a := indexOf(items, headingHotels), indexOf(items, headingRestaurants), indexOf(items, headingAttractions)
		if h >= 0 && r >= 0 && a >= 0 {
			if hotels {
				fillAfter(&n.Accommodation, items, h, r)
			}
			fillAfter(&n.FoodAndDrink, items, r, a)
			fillAfter(&n.Activity, items, a, len(items))
			tiers = append(tiers, "headings")
		}
	}

	if missing(n) {
		blocks := doc.Find(nearbyBlockSel)
		wrote := false
		if names := blockNames(blocks, "Restaurants"); len(names) > 0 {
			fillFrom(&n.FoodAndDrink, names)
			wrote = true
		}
		if names := blockNames(blocks, "Attractions"); len(names) > 0 {
			fillFrom(&n.Activity, names)
			wrote = true
		}
		if wrote {
			tiers = append(tiers, "blocks")
		}
	}

	if missing(n) {
		cols := doc.Find(nearbyColumnSel)
		wrote := false
		if cols.Length() > 0 {
			if names := columnNames(cols.Eq(0)); len(names) > 0 {
				fillFrom(&n.FoodAndDrink, names)
				wrote = true
			}
		}
		if cols.Length() > 1 {
			if names := columnNames(cols.Eq(1)); len(names) > 0 {
				fillFrom(&n.Activity, names)
				wrote = true
			}
		}
		if wrote {
			tiers = append(tiers, "columns")
		}
	}
	return n, tiers
}

func indexOf(items []string, want string) int {
	for i, s := range items {
		if s == want {
			return i
		}
	}
	return -1
}

// fillAfter writes the items following heading into slots, stopping at bound.
func fillAfter(slots *[domain.SlotsPerGroup]*string, items []string, heading, bound int) {
	for i := range slots {
		idx := heading + 1 + i
		if idx < bound && idx < len(items) {
			s := items[idx]
			slots[i] = &s
		}
	}
}

func fillFrom(slots *[domain.SlotsPerGroup]*string, names []string) {
	for i := 0; i < len(slots) && i < len(names); i++ {
		s := names[i]
		slots[i] = &s
	}
}

func filled(slots [domain.SlotsPerGroup]*string) bool {
	for _, s := range slots {
		if s != nil && *s != "" {
			return true
		}
	}
	return false
}

func missing(n domain.Nearby) bool {
	return !filled(n.FoodAndDrink) || !filled(n.Activity)
}

func blockNames(blocks *goquery.Selection, label string) []string {
	var out []string
	blocks.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), label)
	}).Find(nearbyNameSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := trimmedText(s); t != "" {
			out = append(out, t)
		}
		return len(out) < domain.SlotsPerGroup
	})
	return out
}

func columnNames(col *goquery.Selection) []string {
	var out []string
	col.Find(columnNameSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := NormalizeSpace(s.Text()); t != "" {
			out = append(out, t)
		}
		return len(out) < domain.SlotsPerGroup
	})
	return out
}
