package tailoring

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/types"
)

// editableField is one entry of the tailoring policy. The instruction goes to
// the model and apply copies the same field from the model output, so the
// prompt and the merge cannot drift apart.
type editableField struct {
	name        string
	instruction string
	apply       func(dst, src *types.Resume)
}

var editableFields = []editableField{
	{
		name:        "job_target",
		instruction: "'job_target': Revise all fields (position_title, company, location, salary_desired) to reflect the job's requirements, using concise language.",
		apply: func(dst, src *types.Resume) {
			dst.JobTarget = src.JobTarget
		},
	},
	{
		name:        "personal_info.summary",
		instruction: "'personal_info': Update only the 'summary' field to incorporate key technical qualifications, responsibilities, and outcomes from the job posting, while preserving the original style.",
		apply: func(dst, src *types.Resume) {
			dst.PersonalInfo.Summary = src.PersonalInfo.Summary
		},
	},
	{
		name: "work_experience",
		instruction: "'work_experience': For each entry, update only the 'responsibilities', 'achievements', 'programs_managed', and 'technologies' fields if necessary. " +
			"Use technical terminology and quantifiable outcomes only where directly relevant to the job posting. Do not add excessive or repetitive language; preserve the original wording as much as possible.",
		apply: func(dst, src *types.Resume) {
			// Entries are matched by position; extra model entries are dropped
			// and missing ones keep the baseline lists.
			for i := range dst.WorkExperience {
				if i >= len(src.WorkExperience) {
					break
				}
				to, from := &dst.WorkExperience[i], src.WorkExperience[i]
				to.Responsibilities = nonNil(from.Responsibilities)
				to.Achievements = nonNil(from.Achievements)
				to.ProgramsManaged = nonNil(from.ProgramsManaged)
				to.Technologies = nonNil(from.Technologies)
			}
		},
	},
	{
		name:        "leadership_skills",
		instruction: "'leadership_skills': Update all entries to include any specific technical leadership aspects mentioned in the job posting, without altering the baseline language unnecessarily.",
		apply: func(dst, src *types.Resume) {
			dst.LeadershipSkills = nonNil(src.LeadershipSkills)
		},
	},
	{
		name:        "tools",
		instruction: "'tools': Update all entries to include relevant modern technical tools and platforms mentioned in the job posting, making minimal modifications.",
		apply: func(dst, src *types.Resume) {
			dst.Tools = nonNil(src.Tools)
		},
	},
}

// protectedFields are named in the prompt as examples of fields the model must not touch.
var protectedFields = []string{"education", "certifications", "online_profiles"}

// SystemPrompt renders the system instruction enumerating the editable fields.
func SystemPrompt() (string, error) {
	preamble, err := prompts.Get(prompts.TailoringFile, "system-preamble")
	if err != nil {
		return "", err
	}
	closing, err := prompts.Render(prompts.TailoringFile, "system-closing", map[string]string{
		"ProtectedFields": strings.Join(protectedFields, ", "),
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString("\n")
	for i, f := range editableFields {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, f.instruction)
	}
	sb.WriteString("\n")
	sb.WriteString(closing)
	return sb.String(), nil
}

// Merge returns a copy of baseline with only the editable fields taken from tailored.
// Fields the model changed outside the policy are restored and logged.
func Merge(baseline, tailored *types.Resume, logger *slog.Logger) *types.Resume {
	if logger == nil {
		logger = slog.Default()
	}

	out := baseline.Clone()
	for _, f := range editableFields {
		f.apply(out, tailored)
	}

	if got, want := len(tailored.WorkExperience), len(baseline.WorkExperience); got != want {
		logger.Warn("model changed the number of work experience entries, matching by position",
			"baseline", want, "tailored", got)
	}
	if restored := changedProtected(out, tailored); len(restored) > 0 {
		logger.Warn("model modified protected fields, baseline values kept", "fields", restored)
	}
	return out
}

// changedProtected lists the non-editable fields where tailored differs from merged.
func changedProtected(merged, tailored *types.Resume) []string {
	var changed []string
	if merged.PersonalInfo != tailored.PersonalInfo {
		changed = append(changed, "personal_info")
	}
	if !reflect.DeepEqual(merged.Education, tailored.Education) {
		changed = append(changed, "education")
	}
	if !reflect.DeepEqual(merged.Certifications, tailored.Certifications) {
		changed = append(changed, "certifications")
	}
	if merged.OnlineProfiles != tailored.OnlineProfiles {
		changed = append(changed, "online_profiles")
	}
	for i := range merged.WorkExperience {
		if i >= len(tailored.WorkExperience) {
			break
		}
		m, t := merged.WorkExperience[i], tailored.WorkExperience[i]
		if m.JobTitle != t.JobTitle || m.Company != t.Company || m.Location != t.Location ||
			m.StartDate != t.StartDate || m.EndDate != t.EndDate {
			changed = append(changed, fmt.Sprintf("work_experience[%d]", i))
		}
	}
	return changed
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
