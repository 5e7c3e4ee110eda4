package domain

// RawPage is one downloaded document as stored by the crawler.
type RawPage struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}
