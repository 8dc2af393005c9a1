package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/types"
)

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
	tiers   []llm.ModelTier
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	return f.reply, f.err
}

func (f *fakeLLM) GenerateStructured(context.Context, *llm.StructuredRequest) (*llm.StructuredResponse, error) {
	return nil, errors.New("not used")
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake" }

func (f *fakeLLM) Close() error { return nil }

func newTestAcquirer(client llm.Client) *Acquirer {
	return NewAcquirer(fetch.NewFetcher(nil, nil, nil), client, nil)
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://jobs.example.com/123", true},
		{"http://jobs.example.com/123", true},
		{"HTTPS://jobs.example.com", false},
		{" https://jobs.example.com", false},
		{"ftp://example.com", false},
		{"Senior Go Engineer at Acme", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsURL(tt.input), "input %q", tt.input)
	}
}

func TestAcquire_TextPassthrough(t *testing.T) {
	input := "Senior Go Engineer at Acme Corp\nRemote, $150k\n  <b>not html</b>  "

	posting := newTestAcquirer(nil).Acquire(context.Background(), input)
	assert.Equal(t, input, posting.Text)
	assert.Equal(t, input, posting.AIText())
	assert.Nil(t, posting.Scraped)
	assert.NoError(t, posting.ScrapeErr)
}

func TestAcquire_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head>
			<meta property="og:title" content="Senior Go Engineer">
			<title>Careers</title>
			<script>track()</script>
		</head><body><h1>Senior Go Engineer</h1><p>Build APIs &amp; services</p></body></html>`))
	}))
	defer server.Close()

	posting := newTestAcquirer(nil).Acquire(context.Background(), server.URL)
	require.NoError(t, posting.ScrapeErr)
	require.NotNil(t, posting.Scraped)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal([]byte(posting.Text), &envelope))
	assert.Equal(t, server.URL, envelope["url"])
	assert.Equal(t, "Senior Go Engineer", envelope["title"])
	assert.Equal(t, "Careers\nSenior Go Engineer\nBuild APIs & services", envelope["description"])
	assert.Equal(t, envelope["description"], envelope["ai_description"])
	assert.Equal(t, envelope["ai_description"], posting.AIText())

	assert.Contains(t, posting.Text, "\n    \"url\": ")
	assert.Contains(t, posting.Text, "APIs & services")
}

func TestAcquire_URLWithoutTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Just text</p></body></html>`))
	}))
	defer server.Close()

	posting := newTestAcquirer(nil).Acquire(context.Background(), server.URL)
	require.NoError(t, posting.ScrapeErr)
	assert.Equal(t, types.DefaultPostingTitle, posting.Scraped.Title)
}

func TestAcquire_URLFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	posting := newTestAcquirer(nil).Acquire(context.Background(), server.URL)
	require.Error(t, posting.ScrapeErr)

	placeholder := "Job Posting URL: " + server.URL + " (failed to scrape content)"
	assert.Contains(t, posting.Text, server.URL)
	assert.Equal(t, placeholder, posting.AIText())

	var envelope types.ScrapedPosting
	require.NoError(t, json.Unmarshal([]byte(posting.Text), &envelope))
	assert.Equal(t, placeholder, envelope.Description)
	assert.Equal(t, server.URL, envelope.URL)
}

func TestAcquire_UnreachableURL(t *testing.T) {
	url := "http://127.0.0.1:1/posting"

	posting := newTestAcquirer(nil).Acquire(context.Background(), url)
	require.Error(t, posting.ScrapeErr)
	assert.Contains(t, posting.Text, url)
	assert.Contains(t, posting.AIText(), "(failed to scrape content)")
}

func TestClean(t *testing.T) {
	client := &fakeLLM{reply: "Title: Senior Go Engineer\nCompany: Acme"}

	cleaned, err := newTestAcquirer(client).Clean(context.Background(), "raw page text")
	require.NoError(t, err)
	assert.Equal(t, "Title: Senior Go Engineer\nCompany: Acme", cleaned)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Clean the following job announcement")
	assert.Contains(t, client.prompts[0], "raw page text")
	assert.Equal(t, llm.TierStandard, client.tiers[0])
}

func TestClean_FallsBackOnError(t *testing.T) {
	client := &fakeLLM{err: errors.New("quota exceeded")}

	cleaned, err := newTestAcquirer(client).Clean(context.Background(), "raw page text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, "raw page text", cleaned)
}

func TestClean_EmptyReply(t *testing.T) {
	cleaned, err := newTestAcquirer(&fakeLLM{reply: "  "}).Clean(context.Background(), "raw")
	assert.Error(t, err)
	assert.Equal(t, "raw", cleaned)
}

func TestClean_NoClient(t *testing.T) {
	cleaned, err := newTestAcquirer(nil).Clean(context.Background(), "raw")
	assert.Error(t, err)
	assert.Equal(t, "raw", cleaned)
}
