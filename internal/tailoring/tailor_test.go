package tailoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/console"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/types"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)

type fakeClient struct {
	resp *llm.StructuredResponse
	err  error
	reqs []*llm.StructuredRequest
}

func (f *fakeClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeClient) GenerateStructured(_ context.Context, req *llm.StructuredRequest) (*llm.StructuredResponse, error) {
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

func baselineDoc() *types.Document {
	return &types.Document{
		Resume: &types.Resume{
			JobTarget: types.JobTarget{PositionTitle: "Engineer", Company: "", Location: "", SalaryDesired: ""},
			PersonalInfo: types.PersonalInfo{
				Name:    "Ada Lovelace",
				Email:   "ada@example.com",
				Phone:   "555-0100",
				Summary: "Engineer who writes code.",
			},
			WorkExperience: []types.WorkExperience{{
				JobTitle:         "Developer",
				Company:          "Analytical Engines",
				Location:         "London",
				StartDate:        "1842",
				EndDate:          "1843",
				Responsibilities: []string{"Wrote code"},
				Achievements:     []string{},
				ProgramsManaged:  []string{},
				Technologies:     []string{},
			}},
			Education: []types.Education{{
				Institution: "Home",
				Degree:      "Mathematics",
				Location:    "London",
				StartDate:   "1830",
				EndDate:     "1835",
				Details:     "Tutored by De Morgan",
			}},
			Certifications:   []types.Certification{},
			LeadershipSkills: []string{"Mentoring"},
			Tools:            []string{"Pen"},
			OnlineProfiles:   types.OnlineProfiles{GitHub: "https://github.com/ada"},
		},
		Status:       types.StatusComplete,
		LastModified: "2026-01-01 10:00:00",
	}
}

// acmeResponse is what a model might return for the Acme posting, including
// edits to fields it was told to leave alone.
func acmeResponse() *types.Document {
	doc := baselineDoc()
	r := doc.Resume.Clone()
	r.JobTarget = types.JobTarget{
		PositionTitle: "Senior Go Engineer",
		Company:       "Acme Corp",
		Location:      "Remote",
		SalaryDesired: "$150k",
	}
	r.PersonalInfo.Summary = "Go engineer building reliable services."
	r.PersonalInfo.Name = "A. Lovelace"
	r.WorkExperience[0].Responsibilities = []string{"Wrote Go services"}
	r.WorkExperience[0].Technologies = []string{"Go"}
	r.WorkExperience[0].Company = "Acme"
	r.Education[0].Details = "PhD"
	r.Tools = []string{"Go", "Docker"}
	return &types.Document{Resume: r, Status: types.StatusInProgress, LastModified: "1999-01-01 00:00:00"}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func newTailorer(client llm.Client) (*Tailorer, *bytes.Buffer) {
	var out bytes.Buffer
	ui := console.New(strings.NewReader(""), &out)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(client, ui, logger, func() time.Time { return fixedNow }), &out
}

func TestTailor_AcmeScenario(t *testing.T) {
	client := &fakeClient{resp: &llm.StructuredResponse{Parsed: mustJSON(t, acmeResponse())}}
	tailorer, _ := newTailorer(client)

	baseline := baselineDoc()
	got, err := tailorer.Tailor(context.Background(), baseline, "Senior Go Engineer, Acme Corp, Remote, $150k")
	require.NoError(t, err)

	assert.Equal(t, types.JobTarget{
		PositionTitle: "Senior Go Engineer",
		Company:       "Acme Corp",
		Location:      "Remote",
		SalaryDesired: "$150k",
	}, got.Resume.JobTarget)
	assert.Equal(t, "Go engineer building reliable services.", got.Resume.PersonalInfo.Summary)

	// protected fields are identical to the baseline
	assert.Equal(t, "Ada Lovelace", got.Resume.PersonalInfo.Name)
	assert.Equal(t, "ada@example.com", got.Resume.PersonalInfo.Email)
	assert.Equal(t, "555-0100", got.Resume.PersonalInfo.Phone)
	assert.Equal(t, mustJSON(t, baseline.Resume.Education), mustJSON(t, got.Resume.Education))
	assert.Equal(t, mustJSON(t, baseline.Resume.Certifications), mustJSON(t, got.Resume.Certifications))
	assert.Equal(t, baseline.Resume.OnlineProfiles, got.Resume.OnlineProfiles)
	assert.Equal(t, "Analytical Engines", got.Resume.WorkExperience[0].Company)

	// editable work experience lists come from the model
	assert.Equal(t, []string{"Wrote Go services"}, got.Resume.WorkExperience[0].Responsibilities)
	assert.Equal(t, []string{"Go"}, got.Resume.WorkExperience[0].Technologies)
	assert.Equal(t, []string{"Go", "Docker"}, got.Resume.Tools)

	assert.Equal(t, types.StatusComplete, got.Status)
	assert.Equal(t, types.Timestamp(fixedNow), got.LastModified)

	// the baseline passed in is untouched
	assert.Equal(t, []string{"Wrote code"}, baseline.Resume.WorkExperience[0].Responsibilities)
	assert.Equal(t, "Engineer", baseline.Resume.JobTarget.PositionTitle)
}

func TestTailor_Request(t *testing.T) {
	client := &fakeClient{resp: &llm.StructuredResponse{Parsed: mustJSON(t, acmeResponse())}}
	tailorer, _ := newTailorer(client)

	_, err := tailorer.Tailor(context.Background(), baselineDoc(), "Senior Go Engineer, Acme Corp")
	require.NoError(t, err)
	require.Len(t, client.reqs, 1)
	req := client.reqs[0]

	assert.Equal(t, llm.TierAdvanced, req.Tier)
	assert.Equal(t, "tailored_resume", req.SchemaName)
	require.NotNil(t, req.Schema)

	assert.Contains(t, req.System, "1. 'job_target'")
	assert.Contains(t, req.System, "5. 'tools'")
	assert.Contains(t, req.System, "Do not modify other fields (e.g., education, certifications, online_profiles).")

	assert.Contains(t, req.User, "Baseline Resume (original):\n{\n    \"resume\": {")
	assert.Contains(t, req.User, `"Wrote code"`)
	assert.Contains(t, req.User, "Job Posting Details:\nSenior Go Engineer, Acme Corp")

	assert.Contains(t, req.SchemaHint, "tailored_resume v1")
	assert.Contains(t, req.SchemaHint, `"additionalProperties": false`)
}

func TestTailor_FallbackToRawContent(t *testing.T) {
	content := "```json\n" + string(mustJSON(t, acmeResponse())) + "\n```"
	client := &fakeClient{resp: &llm.StructuredResponse{Content: content}}
	tailorer, _ := newTailorer(client)

	got, err := tailorer.Tailor(context.Background(), baselineDoc(), "posting")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Resume.JobTarget.Company)
	assert.Equal(t, types.StatusComplete, got.Status)
}

func TestTailor_APIError(t *testing.T) {
	client := &fakeClient{err: errors.New("connection reset")}
	tailorer, out := newTailorer(client)

	_, err := tailorer.Tailor(context.Background(), baselineDoc(), "posting")
	require.Error(t, err)

	var tailorErr *Error
	require.ErrorAs(t, err, &tailorErr)
	assert.Equal(t, StageAPI, tailorErr.Stage)
	assert.Contains(t, err.Error(), "error calling language model API: connection reset")

	assert.Contains(t, out.String(), "API call failed")
	assert.Contains(t, out.String(), `"additionalProperties": false`)
}

func TestTailor_ParseFailure(t *testing.T) {
	client := &fakeClient{resp: &llm.StructuredResponse{Content: "I cannot produce JSON today."}}
	tailorer, out := newTailorer(client)

	_, err := tailorer.Tailor(context.Background(), baselineDoc(), "posting")

	var tailorErr *Error
	require.ErrorAs(t, err, &tailorErr)
	assert.Equal(t, StageParse, tailorErr.Stage)
	assert.Contains(t, out.String(), "Raw output")
	assert.Contains(t, out.String(), "I cannot produce JSON today.")
}

func TestTailor_Refusal(t *testing.T) {
	client := &fakeClient{resp: &llm.StructuredResponse{Refusal: "I can't help with that."}}
	tailorer, _ := newTailorer(client)

	_, err := tailorer.Tailor(context.Background(), baselineDoc(), "posting")

	var tailorErr *Error
	require.ErrorAs(t, err, &tailorErr)
	assert.Equal(t, StageParse, tailorErr.Stage)
	assert.Contains(t, err.Error(), "I can't help with that.")
}

func TestTailor_SchemaViolation(t *testing.T) {
	client := &fakeClient{resp: &llm.StructuredResponse{
		Parsed: json.RawMessage(`{"resume": {"tools": []}, "status": "complete", "last_modified": "now"}`),
	}}
	tailorer, _ := newTailorer(client)

	_, err := tailorer.Tailor(context.Background(), baselineDoc(), "posting")

	var tailorErr *Error
	require.ErrorAs(t, err, &tailorErr)
	assert.Equal(t, StageSchema, tailorErr.Stage)
}

func TestTailor_PrePackageBaseline(t *testing.T) {
	client := &fakeClient{}
	tailorer, _ := newTailorer(client)

	prePackage := &types.Document{Baseline: baselineDoc(), JobPosting: "x", Status: types.StatusIncomplete}
	_, err := tailorer.Tailor(context.Background(), prePackage, "posting")
	assert.Error(t, err)
	assert.Empty(t, client.reqs)
}

func TestMerge_WorkExperienceCountMismatch(t *testing.T) {
	baseline := baselineDoc().Resume

	t.Run("extra entries dropped", func(t *testing.T) {
		tailored := baseline.Clone()
		tailored.WorkExperience[0].Achievements = []string{"Shipped"}
		tailored.WorkExperience = append(tailored.WorkExperience, types.WorkExperience{JobTitle: "Invented"})

		got := Merge(baseline, tailored, nil)
		require.Len(t, got.WorkExperience, 1)
		assert.Equal(t, []string{"Shipped"}, got.WorkExperience[0].Achievements)
	})

	t.Run("missing entries keep baseline", func(t *testing.T) {
		tailored := baseline.Clone()
		tailored.WorkExperience = []types.WorkExperience{}

		got := Merge(baseline, tailored, nil)
		require.Len(t, got.WorkExperience, 1)
		assert.Equal(t, []string{"Wrote code"}, got.WorkExperience[0].Responsibilities)
	})
}

func TestMerge_NilListsBecomeEmpty(t *testing.T) {
	baseline := baselineDoc().Resume
	tailored := baseline.Clone()
	tailored.Tools = nil
	tailored.LeadershipSkills = nil

	got := Merge(baseline, tailored, nil)
	assert.NotNil(t, got.Tools)
	assert.Empty(t, got.Tools)
	assert.NotNil(t, got.LeadershipSkills)
}

func TestChangedProtected(t *testing.T) {
	baseline := baselineDoc().Resume
	assert.Empty(t, changedProtected(baseline, baseline.Clone()))

	tailored := acmeResponse().Resume
	merged := Merge(baseline, tailored, nil)
	assert.Equal(t, []string{"personal_info", "education", "work_experience[0]"}, changedProtected(merged, tailored))
}

func TestSystemPrompt_ListsEveryEditableField(t *testing.T) {
	system, err := SystemPrompt()
	require.NoError(t, err)

	for i, f := range editableFields {
		assert.Contains(t, system, f.instruction, "field %d (%s)", i, f.name)
	}
	assert.True(t, strings.HasPrefix(system, "You are a professional resume tailoring assistant"))
}
