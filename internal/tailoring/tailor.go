package tailoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/console"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// Reporter receives diagnostic output shown to the user when a call fails.
type Reporter interface {
	Error(format string, a ...any)
	Println(a ...any)
}

var _ Reporter = (*console.Console)(nil)

// Tailorer sends a baseline resume and a job posting to the model.
type Tailorer struct {
	client llm.Client
	out    Reporter
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Tailorer. now defaults to time.Now.
func New(client llm.Client, out Reporter, logger *slog.Logger, now func() time.Time) *Tailorer {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Tailorer{client: client, out: out, logger: logger, now: now}
}

// Tailor returns a new complete document built from baseline, with only the
// editable fields rewritten for posting. status is always "complete" and
// last_modified is the time of the call, whatever the model returned.
func (t *Tailorer) Tailor(ctx context.Context, baseline *types.Document, posting string) (*types.Document, error) {
	if baseline == nil || baseline.Resume == nil {
		return nil, &Error{Stage: StageParse, Message: "baseline document has no resume"}
	}

	req, err := t.buildRequest(baseline, posting)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("requesting tailored resume", "model", t.client.GetModel(req.Tier))
	resp, err := t.client.GenerateStructured(ctx, req)
	if err != nil {
		t.out.Error("API call failed. Below is the JSON schema used:")
		t.out.Println(string(schemas.TailoredResumeJSON()))
		return nil, &Error{Stage: StageAPI, Message: "error calling language model API", Cause: err}
	}

	raw, err := responseJSON(resp)
	if err != nil {
		t.out.Error("Failed to parse API response into structured JSON. Raw output:")
		t.out.Println(resp.Content)
		return nil, &Error{Stage: StageParse, Message: "failed to parse API response into structured JSON", Cause: err}
	}

	if err := schemas.ValidateTailoredResume(raw); err != nil {
		return nil, &Error{Stage: StageSchema, Message: "API response does not match the tailored resume schema", Cause: err}
	}

	var tailored types.Document
	if err := json.Unmarshal(raw, &tailored); err != nil || tailored.Resume == nil {
		if err == nil {
			err = errors.New("resume missing")
		}
		return nil, &Error{Stage: StageParse, Message: "failed to decode tailored resume", Cause: err}
	}

	if tailored.Status != types.StatusComplete {
		t.logger.Debug("overriding model status", "status", tailored.Status)
	}
	return &types.Document{
		Resume:       Merge(baseline.Resume, tailored.Resume, t.logger),
		Status:       types.StatusComplete,
		LastModified: types.Timestamp(t.now()),
	}, nil
}

func (t *Tailorer) buildRequest(baseline *types.Document, posting string) (*llm.StructuredRequest, error) {
	system, err := SystemPrompt()
	if err != nil {
		return nil, err
	}

	baselineJSON, err := encodeIndent(baseline)
	if err != nil {
		return nil, fmt.Errorf("failed to encode baseline resume: %w", err)
	}
	user, err := prompts.Render(prompts.TailoringFile, "user", map[string]string{
		"BaselineResume": baselineJSON,
		"JobPosting":     posting,
	})
	if err != nil {
		return nil, err
	}

	hint, err := prompts.Render(prompts.TailoringFile, "schema-reminder", map[string]string{
		"SchemaName":    schemas.TailoredResumeName,
		"SchemaVersion": schemas.TailoredResumeVersion,
		"Schema":        string(schemas.TailoredResumeJSON()),
	})
	if err != nil {
		return nil, err
	}

	def := schemas.TailoredResume()
	return &llm.StructuredRequest{
		System:     system,
		User:       user,
		SchemaName: schemas.TailoredResumeName,
		Schema:     &def,
		SchemaHint: hint,
		Tier:       llm.TierAdvanced,
	}, nil
}

// responseJSON prefers the provider-parsed document and falls back to the raw text.
func responseJSON(resp *llm.StructuredResponse) (json.RawMessage, error) {
	if len(resp.Parsed) > 0 {
		return resp.Parsed, nil
	}
	if resp.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", resp.Refusal)
	}
	cleaned := llm.CleanJSONBlock(resp.Content)
	if cleaned == "" {
		return nil, errors.New("empty response")
	}
	if !json.Valid([]byte(cleaned)) {
		return nil, errors.New("response is not valid JSON")
	}
	return json.RawMessage(cleaned), nil
}

func encodeIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
