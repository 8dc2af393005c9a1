// Package coverletter generates a JSON cover letter for a tailored resume and
// cleans up the Unicode the model tends to escape.
package coverletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/resume-builder/internal/console"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/types"
)

// DefaultMaxPasses bounds the escape clean-up loop.
const DefaultMaxPasses = 5

// DateLayout is how the letter date is given to the model.
const DateLayout = "January 2, 2006"

// Error is returned when a cover letter could not be produced.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("error generating cover letter: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("error generating cover letter: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Result is a generated cover letter.
type Result struct {
	// Letter is the letter JSON, indented with four spaces, keys in model order.
	Letter json.RawMessage
	// Warning is set when escape sequences survived every clean-up pass.
	Warning bool
	// Passes is the number of clean-up passes made.
	Passes int
}

// Warner receives non-fatal notices shown to the user.
type Warner interface {
	Warn(format string, a ...any)
}

var _ Warner = (*console.Console)(nil)

// Generator produces cover letters with a language model.
type Generator struct {
	client    llm.Client
	out       Warner
	logger    *slog.Logger
	now       func() time.Time
	maxPasses int
}

// New creates a Generator. maxPasses below one falls back to DefaultMaxPasses.
func New(client llm.Client, out Warner, logger *slog.Logger, now func() time.Time, maxPasses int) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	if maxPasses < 1 {
		maxPasses = DefaultMaxPasses
	}
	return &Generator{client: client, out: out, logger: logger, now: now, maxPasses: maxPasses}
}

// Generate asks the model for a cover letter for resume and posting.
// The response is free-form: no schema is enforced.
func (g *Generator) Generate(ctx context.Context, resume *types.Document, posting string) (*Result, error) {
	prompt, err := BuildPrompt(resume, posting, g.now())
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	output, err := g.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &Error{Message: "language model call failed", Cause: err}
	}

	return g.process(output)
}

// process turns raw model output into a clean letter.
func (g *Generator) process(output string) (*Result, error) {
	text := stripFences(norm.NFKC.String(output))

	if !json.Valid([]byte(text)) {
		g.out.Warn("Warning: First JSON parse failed. Retrying cleanup...")
		text = llm.CleanJSONBlock(norm.NFKC.String(text))
		if !json.Valid([]byte(text)) {
			g.logger.Debug("unparseable cover letter output", "output", output)
			return nil, &Error{Message: "response is not valid JSON"}
		}
	}

	cleaned, passes, warning, err := normalizeLetter([]byte(text), g.maxPasses)
	if err != nil {
		return nil, &Error{Message: "failed to normalize response", Cause: err}
	}
	if warning {
		g.logger.Warn("escape sequences remain in cover letter", "passes", passes)
	}

	letter, err := indent(cleaned, "    ")
	if err != nil {
		return nil, &Error{Message: "failed to format response", Cause: err}
	}
	return &Result{Letter: letter, Warning: warning, Passes: passes}, nil
}

// BuildPrompt renders the cover letter prompt. A posting that is a JSON object
// is embedded as-is; anything else is wrapped as {"description": posting}.
func BuildPrompt(resume *types.Document, posting string, date time.Time) (string, error) {
	resumeJSON, err := encodeIndent(resume)
	if err != nil {
		return "", fmt.Errorf("failed to encode resume: %w", err)
	}
	postingJSON, err := postingObject(posting)
	if err != nil {
		return "", fmt.Errorf("failed to encode job posting: %w", err)
	}

	return prompts.Render(prompts.CoverLetterFile, "generate-cover-letter", map[string]string{
		"Date":       date.Format(DateLayout),
		"Resume":     resumeJSON,
		"JobPosting": postingJSON,
	})
}

func postingObject(posting string) (string, error) {
	trimmed := strings.TrimSpace(posting)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		compact, err := reencode([]byte(trimmed), func(s string) string { return s })
		if err != nil {
			return "", err
		}
		out, err := indent(compact, "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return encodeIndent(map[string]string{"description": posting})
}

func encodeIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
