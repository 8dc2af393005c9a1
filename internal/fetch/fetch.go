// Package fetch retrieves job posting pages and turns their HTML into readable text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeBuilder/1.0)"

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	Client    *http.Client // optional; a client with Timeout is built when nil
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// URL retrieves HTML content from a URL.
// Non-200 responses return the partial Result together with an *Error.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// Renderer renders a page in a real browser and returns the resulting HTML.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Fetcher downloads a page and extracts its title and visible text.
// When a Renderer is set and the plain HTTP text looks like an unrendered
// single-page app, the page is rendered and extracted again.
type Fetcher struct {
	opts     *Options
	renderer Renderer
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher. renderer may be nil.
func NewFetcher(opts *Options, renderer Renderer, logger *slog.Logger) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{opts: opts, renderer: renderer, logger: logger}
}

// Page fetches urlStr and returns its extracted content.
func (f *Fetcher) Page(ctx context.Context, urlStr string) (*Page, error) {
	result, err := URL(ctx, urlStr, f.opts)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("fetched page", "url", urlStr, "status", result.StatusCode, "bytes", len(result.HTML))

	page, err := ParseHTML(result.HTML)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to parse HTML", Cause: err}
	}

	if f.renderer == nil || !ShouldUseBrowser(page.Text) {
		return page, nil
	}

	f.logger.Debug("page text is short, rendering in browser", "url", urlStr, "chars", len(page.Text))
	html, err := f.renderer.Render(ctx, urlStr)
	if err != nil {
		f.logger.Warn("browser rendering failed, using HTTP content", "url", urlStr, "error", err)
		return page, nil
	}
	rendered, err := ParseHTML(html)
	if err != nil {
		f.logger.Warn("rendered HTML could not be parsed, using HTTP content", "url", urlStr, "error", err)
		return page, nil
	}
	if len(rendered.Text) <= len(page.Text) {
		return page, nil
	}
	if rendered.Title == "" {
		rendered.Title = page.Title
	}
	return rendered, nil
}
