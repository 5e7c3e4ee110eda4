package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	descriptionRe = regexp.MustCompile(`"description":"(.*?)"`)
	latRe         = regexp.MustCompile(`"latitude":(-?\d+\.\d+)`)
	lonRe         = regexp.MustCompile(`"longitude":(-?\d+\.\d+)`)
	escapedGeoRe  = regexp.MustCompile(`latitude%5C%5C%5C%22%3A(-?\d+\.\d+)%2C%5C%5C%5C%22longitude%5C%5C%5C%22%3A(-?\d+\.\d+)`)
	timesRe       = regexp.MustCompile(`"times":\[(.*?)\]`)
	durationRe    = regexp.MustCompile(`Duration:\s*.*?(\d+)`)
)

// Name is the text of the first h1, h2 or h3 in document order.
func Name(doc *goquery.Document) *string {
	h := doc.Find("h1, h2, h3").First()
	if h.Length() == 0 {
		return nil
	}
	s := trimmedText(h)
	return &s
}

// AboutAndTags tries the profile's description block, then "About" column
// blocks, then the embedded JSON description. The returned tier names the
// source that matched ("none" when nothing did).
func AboutAndTags(doc *goquery.Document, raw string, p Profile) ([]string, string) {
	if sel := classSelector(p.Description); sel != "" {
		if nodes := doc.Find(sel); nodes.Length() > 0 {
			return texts(nodes, NormalizeSpace), "description"
		}
	}

	var cols []string
	doc.Find(".ui_columns").Each(func(_ int, s *goquery.Selection) {
		t := trimmedText(s)
		if strings.Contains(t, "About") && !strings.Contains(t, "Manage this business?") {
			cols = append(cols, NormalizeSpace(t))
		}
	})
	if len(cols) > 0 {
		return cols, "about_columns"
	}

	if m := descriptionRe.FindStringSubmatch(raw); m != nil {
		out := []string{m[1]}
		doc.Find(".SrqKb").Each(func(_ int, s *goquery.Selection) {
			out = append(out, trimmedText(s))
		})
		return out, "json_description"
	}
	return nil, "none"
}

// LatLong reads coordinates from embedded JSON, falling back to the
// triple-escaped URL-encoded form found in some inline scripts.
func LatLong(raw string) (lat, lon *float64, tier string) {
	if la, lo := latRe.FindStringSubmatch(raw), lonRe.FindStringSubmatch(raw); la != nil && lo != nil {
		if a, b, ok := parsePair(la[1], lo[1]); ok {
			return &a, &b, "json"
		}
	}
	if m := escapedGeoRe.FindStringSubmatch(raw); m != nil {
		if a, b, ok := parsePair(m[1], m[2]); ok {
			return &a, &b, "escaped"
		}
	}
	return nil, nil, "none"
}

func parsePair(a, b string) (float64, float64, bool) {
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}

// Hours resolves opening hours: the profile's fixed pair, the first element
// of the hours class split on "-", or the embedded "times" list.
// Both values go through ConvertTime.
func Hours(doc *goquery.Document, raw string, p Profile) (start, end *string, tier string) {
	if len(p.FixedHours) == 2 {
		s, e := ConvertTime(p.FixedHours[0]), ConvertTime(p.FixedHours[1])
		return &s, &e, "fixed"
	}
	if sel := classSelector(p.Hours); sel != "" {
		if first := doc.Find(sel).First(); first.Length() > 0 {
			parts := strings.Split(first.Text(), "-")
			s := ConvertTime(NormalizeSpace(parts[0]))
			start = &s
			if len(parts) > 1 {
				e := ConvertTime(NormalizeSpace(parts[1]))
				end = &e
			}
			return start, end, "class"
		}
	}
	if m := timesRe.FindStringSubmatch(raw); m != nil {
		parts := strings.Split(strings.ReplaceAll(m[1], `"`, ""), "-")
		if len(parts) == 2 {
			s, e := ConvertTime(NormalizeSpace(parts[0])), ConvertTime(NormalizeSpace(parts[1]))
			return &s, &e, "times_json"
		}
	}
	return nil, nil, "none"
}

// Duration is the first integer after "Duration:" in the page.
func Duration(raw string) *int {
	m := durationRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// Reviews collects review bodies from the profile's review class, falling back
// to ".partial_entry". A nested profile, when its inner nodes exist, replaces
// whatever the first pass found. Bodies are cleaned; empty ones are dropped.
func Reviews(doc *goquery.Document, p Profile) ([]string, string) {
	var sel *goquery.Selection
	tier := "reviews"
	if s := classSelector(p.Reviews); s != "" {
		sel = doc.Find(s)
	}
	if sel == nil || sel.Length() == 0 {
		sel = doc.Find(".partial_entry")
		tier = "partial_entry"
	}
	if n := p.NestedReviews; n != nil {
		if inner := doc.Find(classSelector(n.Outer)).Find(classSelector(n.Inner)); inner.Length() > 0 {
			sel = inner
			tier = "nested"
		}
	}

	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if r := CleanReview(s.Text()); r != "" {
			out = append(out, r)
		}
	})
	if len(out) == 0 {
		return nil, "none"
	}
	return out, tier
}
