// Package types provides type definitions for structured data used throughout the resume-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Resume is the canonical resume document collected from the user.
// Field order matches the on-disk JSON layout.
type Resume struct {
	JobTarget        JobTarget        `json:"job_target"`
	PersonalInfo     PersonalInfo     `json:"personal_info"`
	WorkExperience   []WorkExperience `json:"work_experience"`
	Education        []Education      `json:"education"`
	Certifications   []Certification  `json:"certifications"`
	LeadershipSkills []string         `json:"leadership_skills"`
	Tools            []string         `json:"tools"`
	OnlineProfiles   OnlineProfiles   `json:"online_profiles"`
}

// JobTarget describes the position the resume is aimed at
type JobTarget struct {
	PositionTitle string `json:"position_title"`
	Company       string `json:"company"`
	Location      string `json:"location"`
	SalaryDesired string `json:"salary_desired"`
}

// PersonalInfo holds contact details and the professional summary
type PersonalInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Summary string `json:"summary"`
}

// WorkExperience is a single employment entry
type WorkExperience struct {
	JobTitle         string   `json:"job_title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Responsibilities []string `json:"responsibilities"`
	Achievements     []string `json:"achievements"`
	ProgramsManaged  []string `json:"programs_managed"`
	Technologies     []string `json:"technologies"`
}

// Education is a single education entry
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Location    string `json:"location"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Details     string `json:"details"`
}

// Certification is a single certification entry
type Certification struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	AwardedBy      string `json:"awarded_by"`
	Year           string `json:"year"`
}

// OnlineProfiles holds public profile links
type OnlineProfiles struct {
	HuggingFace string `json:"hugging_face"`
	GitHub      string `json:"github"`
}

// Clone returns a deep copy of the resume.
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	out := *r
	out.WorkExperience = cloneSlice(r.WorkExperience)
	for i := range out.WorkExperience {
		w := &out.WorkExperience[i]
		w.Responsibilities = cloneSlice(w.Responsibilities)
		w.Achievements = cloneSlice(w.Achievements)
		w.ProgramsManaged = cloneSlice(w.ProgramsManaged)
		w.Technologies = cloneSlice(w.Technologies)
	}
	out.Education = cloneSlice(r.Education)
	out.Certifications = cloneSlice(r.Certifications)
	out.LeadershipSkills = cloneSlice(r.LeadershipSkills)
	out.Tools = cloneSlice(r.Tools)
	return &out
}

// cloneSlice copies s, keeping nil and empty slices distinct so JSON output is unchanged.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
