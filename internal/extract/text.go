package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRe = regexp.MustCompile(`[\s\p{Z}]+`)
	nonASCIIRe   = regexp.MustCompile(`[^\x00-\x7F]+`)
)

// NormalizeSpace collapses every whitespace run into one space and trims.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CleanReview drops non-ASCII characters (emoji mostly) and normalises spacing.
func CleanReview(s string) string {
	return NormalizeSpace(nonASCIIRe.ReplaceAllString(strings.TrimSpace(s), ""))
}

// ConvertTime turns a 12-hour clock value ("5:30 PM") into "17:30:00".
// Values that do not parse are returned unchanged.
func ConvertTime(v string) string {
	s := strings.ToUpper(NormalizeSpace(v))
	t, err := time.Parse("3:04 PM", s)
	if err != nil {
		return v
	}
	return t.Format("15:04:05")
}

func trimmedText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

func texts(sel *goquery.Selection, clean func(string) string) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, clean(s.Text()))
	})
	return out
}
