package types

// DefaultPostingTitle is used when a scraped page has neither og:title nor <title>.
const DefaultPostingTitle = "Job Posting"

// ScrapedPosting is the JSON envelope produced when a job posting is fetched from a URL.
// Description and AIDescription hold the same verbatim page text at scrape time.
type ScrapedPosting struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	AIDescription string `json:"ai_description"`
}
