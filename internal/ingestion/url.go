// Package ingestion turns user input into job posting text: pasted text is used
// as-is, URLs are scraped into a JSON envelope, and the result can be cleaned
// up by the language model.
package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/types"
)

// PageFetcher retrieves the readable content of a page.
type PageFetcher interface {
	Page(ctx context.Context, url string) (*fetch.Page, error)
}

var _ PageFetcher = (*fetch.Fetcher)(nil)

// Posting is the outcome of acquiring a job posting.
type Posting struct {
	// Text is the posting as the rest of the program sees it: the input
	// unchanged, or the scraped envelope serialized as JSON.
	Text string
	// Scraped is set when the input was a URL, even if scraping failed.
	Scraped *types.ScrapedPosting
	// ScrapeErr records why scraping failed; Text then carries a placeholder.
	ScrapeErr error
}

// AIText returns the text to hand to the language model.
func (p *Posting) AIText() string {
	if p.Scraped != nil {
		return p.Scraped.AIDescription
	}
	return p.Text
}

// Acquirer resolves job posting input and cleans it with a language model.
type Acquirer struct {
	pages  PageFetcher
	client llm.Client
	logger *slog.Logger
}

// NewAcquirer creates an Acquirer. client may be nil when Clean is not used.
func NewAcquirer(pages PageFetcher, client llm.Client, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{pages: pages, client: client, logger: logger}
}

// IsURL reports whether input should be fetched rather than used as text.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// Acquire returns input unchanged unless it is a URL, in which case the page
// is scraped. Scraping never fails the call: on error the envelope carries a
// placeholder naming the URL and ScrapeErr is set.
func (a *Acquirer) Acquire(ctx context.Context, input string) *Posting {
	if !IsURL(input) {
		return &Posting{Text: input}
	}

	scraped, scrapeErr := a.scrape(ctx, input)
	if scrapeErr != nil {
		a.logger.Warn("failed to scrape job posting", "url", input, "error", scrapeErr)
		scraped = FailedPosting(input)
	}

	text, err := encodeEnvelope(scraped)
	if err != nil {
		// only reachable if the encoder itself breaks; keep the URL visible
		text = scraped.Description
	}
	return &Posting{Text: text, Scraped: scraped, ScrapeErr: scrapeErr}
}

func (a *Acquirer) scrape(ctx context.Context, url string) (*types.ScrapedPosting, error) {
	page, err := a.pages.Page(ctx, url)
	if err != nil {
		return nil, err
	}
	title := page.Title
	if title == "" {
		title = types.DefaultPostingTitle
	}
	a.logger.Debug("scraped job posting", "url", url, "title", title, "chars", len(page.Text))
	return &types.ScrapedPosting{
		URL:           url,
		Title:         title,
		Description:   page.Text,
		AIDescription: page.Text,
	}, nil
}

// FailedPosting is the envelope used when a URL could not be scraped.
func FailedPosting(url string) *types.ScrapedPosting {
	placeholder := fmt.Sprintf("Job Posting URL: %s (failed to scrape content)", url)
	return &types.ScrapedPosting{
		URL:           url,
		Title:         types.DefaultPostingTitle,
		Description:   placeholder,
		AIDescription: placeholder,
	}
}

// Clean asks the model to restructure the posting into a fixed section order.
// On failure the original text is returned along with the error.
func (a *Acquirer) Clean(ctx context.Context, text string) (string, error) {
	if a.client == nil {
		return text, fmt.Errorf("no language model client configured")
	}

	prompt, err := prompts.Render(prompts.PostingFile, "clean-job-posting", map[string]string{
		"JobPosting": text,
	})
	if err != nil {
		return text, err
	}

	cleaned, err := a.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		a.logger.Warn("job posting clean-up failed, keeping original text", "error", err)
		return text, fmt.Errorf("error cleaning job posting: %w", err)
	}
	if strings.TrimSpace(cleaned) == "" {
		return text, fmt.Errorf("error cleaning job posting: empty response")
	}
	return cleaned, nil
}

func encodeEnvelope(p *types.ScrapedPosting) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
