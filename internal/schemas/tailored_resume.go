package schemas

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// TailoredResumeName is the schema name sent with structured-output requests.
const TailoredResumeName = "tailored_resume"

// TailoredResumeVersion identifies the shape of TailoredResume.
// Bump it whenever a field is added, removed, or renamed.
const TailoredResumeVersion = "v1"

// TailoredResume returns the JSON schema a tailoring response must satisfy.
// Every object is closed and every property is required, which is what
// strict structured outputs demand.
func TailoredResume() jsonschema.Definition {
	return closedObject(map[string]jsonschema.Definition{
		"resume": closedObject(map[string]jsonschema.Definition{
			"job_target": stringObject("position_title", "company", "location", "salary_desired"),
			"personal_info": stringObject("name", "email", "phone", "summary"),
			"work_experience": arrayOf(closedObject(map[string]jsonschema.Definition{
				"job_title":        str(),
				"company":          str(),
				"location":         str(),
				"start_date":       str(),
				"end_date":         str(),
				"responsibilities": stringArray(),
				"achievements":     stringArray(),
				"programs_managed": stringArray(),
				"technologies":     stringArray(),
			}, "job_title", "company", "location", "start_date", "end_date",
				"responsibilities", "achievements", "programs_managed", "technologies")),
			"education":         arrayOf(stringObject("institution", "degree", "location", "start_date", "end_date", "details")),
			"certifications":    arrayOf(stringObject("name", "specialization", "awarded_by", "year")),
			"leadership_skills": stringArray(),
			"tools":             stringArray(),
			"online_profiles":   stringObject("hugging_face", "github"),
		}, "job_target", "personal_info", "work_experience", "education",
			"certifications", "leadership_skills", "tools", "online_profiles"),
		"status":        str(),
		"last_modified": str(),
	}, "resume", "status", "last_modified")
}

// TailoredResumeJSON returns the indented JSON rendering of TailoredResume,
// used both in prompts and in diagnostic output.
func TailoredResumeJSON() []byte {
	def := TailoredResume()
	data, err := json.MarshalIndent(&def, "", "  ")
	if err != nil {
		// Definition only holds strings, slices and maps; marshaling cannot fail.
		panic(err)
	}
	return data
}

// Properties is always non-nil: Definition marshals nil properties as null
// when it is not reached through a pointer.
func str() jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Properties: map[string]jsonschema.Definition{}}
}

func stringArray() jsonschema.Definition {
	return arrayOf(str())
}

func arrayOf(item jsonschema.Definition) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Array, Items: &item, Properties: map[string]jsonschema.Definition{}}
}

func closedObject(props map[string]jsonschema.Definition, required ...string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}

// stringObject builds a closed object whose listed properties are all required strings.
func stringObject(fields ...string) jsonschema.Definition {
	props := make(map[string]jsonschema.Definition, len(fields))
	for _, f := range fields {
		props[f] = str()
	}
	return closedObject(props, fields...)
}
