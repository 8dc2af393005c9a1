// Package collect runs the interactive questionnaire that builds a resume.
package collect

import (
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/console"
	"github.com/jonathan/resume-builder/internal/types"
)

// Prompter is the subset of the console used by the collector.
type Prompter interface {
	Println(a ...any)
	Heading(s string)
	Ask(prompt string) (string, error)
	AskDefault(prompt, def string) (string, error)
	Confirm(prompt string) (bool, error)
}

var _ Prompter = (*console.Console)(nil)

// Collector asks for every resume field in a fixed order.
type Collector struct {
	ui  Prompter
	now func() time.Time
}

// New creates a Collector. now defaults to time.Now.
func New(ui Prompter, now func() time.Time) *Collector {
	if now == nil {
		now = time.Now
	}
	return &Collector{ui: ui, now: now}
}

// Collect runs the full questionnaire and returns the resulting document.
// It stops at the first input error (for example a closed input stream).
func (c *Collector) Collect() (*types.Document, error) {
	r := &types.Resume{}
	var err error

	if r.JobTarget, err = c.jobTarget(); err != nil {
		return nil, err
	}
	if r.PersonalInfo, err = c.personalInfo(); err != nil {
		return nil, err
	}
	if r.WorkExperience, err = c.workExperience(); err != nil {
		return nil, err
	}
	if r.Education, err = c.education(); err != nil {
		return nil, err
	}
	if r.Certifications, err = c.certifications(); err != nil {
		return nil, err
	}
	if r.LeadershipSkills, err = c.list("Enter your leadership skills separated by commas (if any)", ","); err != nil {
		return nil, err
	}
	if r.Tools, err = c.list("Enter the tools you are proficient with, separated by commas (if any)", ","); err != nil {
		return nil, err
	}
	if r.OnlineProfiles, err = c.onlineProfiles(); err != nil {
		return nil, err
	}

	complete, err := c.ui.Confirm("Is this resume complete?")
	if err != nil {
		return nil, err
	}
	status := types.StatusInProgress
	if complete {
		status = types.StatusComplete
	}

	return &types.Document{
		Resume:       r,
		Status:       status,
		LastModified: types.Timestamp(c.now()),
	}, nil
}

func (c *Collector) jobTarget() (types.JobTarget, error) {
	var jt types.JobTarget
	c.ui.Heading("Job Target Information")
	err := c.askAll(
		field{"Desired Position Title", &jt.PositionTitle},
		field{"Desired Company", &jt.Company},
		field{"Desired Location", &jt.Location},
		field{"Desired Salary Range", &jt.SalaryDesired},
	)
	return jt, err
}

func (c *Collector) personalInfo() (types.PersonalInfo, error) {
	var pi types.PersonalInfo
	c.ui.Heading("Personal Information")
	if err := c.askAll(
		field{"Full Name", &pi.Name},
		field{"Email", &pi.Email},
		field{"Phone Number", &pi.Phone},
	); err != nil {
		return pi, err
	}
	summary, err := c.ui.AskDefault("Enter your professional summary (optional)", "")
	pi.Summary = summary
	return pi, err
}

func (c *Collector) workExperience() ([]types.WorkExperience, error) {
	experiences := []types.WorkExperience{}
	for {
		var we types.WorkExperience
		c.ui.Println()
		c.ui.Heading("Work Experience Entry")
		if err := c.askAll(
			field{"Job Title", &we.JobTitle},
			field{"Company", &we.Company},
			field{"Location", &we.Location},
			field{"Start Date (e.g., Jan 2020)", &we.StartDate},
			field{"End Date (e.g., Dec 2020 or Present)", &we.EndDate},
		); err != nil {
			return nil, err
		}

		var err error
		if we.Responsibilities, err = c.list("Enter responsibilities (separate each with a semicolon ';')", ";"); err != nil {
			return nil, err
		}
		if we.Achievements, err = c.list("Enter achievements (separate each with a semicolon ';')", ";"); err != nil {
			return nil, err
		}
		if we.ProgramsManaged, err = c.list("Enter programs managed (separate each with a semicolon ';')", ";"); err != nil {
			return nil, err
		}
		if we.Technologies, err = c.list("Enter technologies (separate each with a comma ',')", ","); err != nil {
			return nil, err
		}
		experiences = append(experiences, we)

		more, err := c.ui.Confirm("Would you like to add another job?")
		if err != nil {
			return nil, err
		}
		if !more {
			return experiences, nil
		}
	}
}

func (c *Collector) education() ([]types.Education, error) {
	educations := []types.Education{}
	for {
		var ed types.Education
		c.ui.Println()
		c.ui.Heading("Education Entry")
		if err := c.askAll(
			field{"Institution Name", &ed.Institution},
			field{"Degree / Certification", &ed.Degree},
			field{"Location", &ed.Location},
			field{"Start Date", &ed.StartDate},
			field{"End Date (or Graduation Year)", &ed.EndDate},
		); err != nil {
			return nil, err
		}
		details, err := c.ui.AskDefault("Enter details about your education (optional)", "")
		if err != nil {
			return nil, err
		}
		ed.Details = details
		educations = append(educations, ed)

		more, err := c.ui.Confirm("Would you like to add another education entry?")
		if err != nil {
			return nil, err
		}
		if !more {
			return educations, nil
		}
	}
}

func (c *Collector) certifications() ([]types.Certification, error) {
	certs := []types.Certification{}
	has, err := c.ui.Confirm("Do you have any certifications?")
	if err != nil || !has {
		return certs, err
	}
	for {
		var cert types.Certification
		c.ui.Heading("Certification Entry")
		if err := c.askAll(
			field{"Certification Name", &cert.Name},
			field{"Specialization", &cert.Specialization},
			field{"Awarded By", &cert.AwardedBy},
			field{"Year (or N/A)", &cert.Year},
		); err != nil {
			return nil, err
		}
		certs = append(certs, cert)

		more, err := c.ui.Confirm("Would you like to add another certification?")
		if err != nil {
			return nil, err
		}
		if !more {
			return certs, nil
		}
	}
}

func (c *Collector) onlineProfiles() (types.OnlineProfiles, error) {
	var op types.OnlineProfiles
	c.ui.Heading("Online Profiles")
	var err error
	if op.HuggingFace, err = c.ui.AskDefault("Enter your Hugging Face profile (if any)", ""); err != nil {
		return op, err
	}
	op.GitHub, err = c.ui.AskDefault("Enter your GitHub profile (if any)", "")
	return op, err
}

type field struct {
	prompt string
	dst    *string
}

func (c *Collector) askAll(fields ...field) error {
	for _, f := range fields {
		answer, err := c.ui.Ask(f.prompt)
		if err != nil {
			return err
		}
		*f.dst = answer
	}
	return nil
}

func (c *Collector) list(prompt, sep string) ([]string, error) {
	answer, err := c.ui.AskDefault(prompt, "")
	if err != nil {
		return nil, err
	}
	return SplitList(answer, sep), nil
}

// SplitList splits s on sep, trims each segment and drops empty ones.
// The result is never nil.
func SplitList(s, sep string) []string {
	items := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
