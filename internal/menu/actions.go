package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

func (m *Menu) createBaseline() error {
	m.ui.Accent("Creating/Editing Baseline Resume...")
	doc, err := m.collector.Collect()
	if err != nil {
		return err
	}

	if err := m.store.Save(store.DefaultBaselineName, doc); err != nil {
		m.ui.Error("Error saving resume: %v", err)
		return nil
	}
	m.ui.Success("Saved resume to %s", m.store.Path(store.DefaultBaselineName, store.ResumeFile))
	m.ui.Success("Baseline resume created/updated!")
	return nil
}

func (m *Menu) createTailored(ctx context.Context) error {
	name, err := m.ui.Ask("Enter a name for this tailored resume (no spaces)")
	if err != nil {
		return err
	}
	if err := store.ValidateName(name); err != nil {
		m.ui.Error("Invalid resume name: %v", err)
		return nil
	}

	_, names, ok := m.loadIndex("No resumes available. Please create a baseline resume first.")
	if !ok {
		return nil
	}
	m.ui.Accent("Available Baseline Resumes:")
	m.printNumbered(names)

	answer, err := m.ui.Ask("Enter the number or name of the resume to use as baseline")
	if err != nil {
		return err
	}
	baselineName, ok := pick(answer, names)
	if !ok {
		m.ui.Error("Invalid selection.")
		return nil
	}
	baseline, err := m.store.Load(baselineName)
	if err != nil {
		m.logger.Warn("failed to load baseline", "name", baselineName, "error", err)
		m.ui.Error("Failed to load the chosen baseline resume.")
		return nil
	}
	if baseline.IsPrePackage() {
		m.ui.Error("'%s' is an untailored pre-package and cannot be used as a baseline.", baselineName)
		return nil
	}

	input, err := m.ui.Ask("Enter the job posting details or URL (paste the text)")
	if err != nil {
		return err
	}
	posting := m.acquirer.Acquire(ctx, input)
	if posting.ScrapeErr != nil {
		m.ui.Warn("Could not scrape the job posting, continuing with the URL only: %v", posting.ScrapeErr)
	}
	m.ui.Heading("Scraped Job Posting Data (Display Version):")
	m.ui.Println(posting.Text)

	cleaned, err := m.acquirer.Clean(ctx, posting.AIText())
	if err != nil {
		m.ui.Warn("Could not clean the job posting, using the original text: %v", err)
	}
	m.ui.Heading("Cleaned Job Posting for AI:")
	m.ui.Println(cleaned)

	existed := m.store.Exists(name)
	if err := m.store.EnsureDir(name); err != nil {
		m.ui.Error("Error creating directory for '%s': %v", name, err)
		return nil
	}
	if !existed {
		m.ui.Success("Created directory '%s' for the tailored resume.", m.store.Dir(name))
	}

	if err := m.store.SaveJobPosting(name, cleaned); err != nil {
		m.ui.Error("Error saving AI job posting data: %v", err)
	} else {
		m.ui.Success("Saved cleaned AI job posting data to '%s'.", m.store.Path(name, store.JobPostingFile))
	}
	if err := m.store.SaveBaseline(name, baseline); err != nil {
		m.ui.Error("Error saving baseline resume: %v", err)
	} else {
		m.ui.Success("Saved baseline resume to '%s'.", m.store.Path(name, store.BaselineFile))
	}

	ready, err := m.ui.Confirm("Is this tailored pre-package (job posting + baseline) ready to send?")
	if err != nil {
		return err
	}
	resumePath := m.store.Path(name, store.ResumeFile)
	if !ready {
		prePackage := &types.Document{
			Baseline:     baseline,
			JobPosting:   posting.Text,
			Status:       types.StatusIncomplete,
			LastModified: types.Timestamp(m.now()),
		}
		if err := m.store.Save(name, prePackage); err != nil {
			m.ui.Error("Error saving pre-package: %v", err)
			return nil
		}
		m.ui.Success("Pre-package saved as incomplete to '%s'.", resumePath)
		return nil
	}

	tailored, err := m.tailorer.Tailor(ctx, baseline, cleaned)
	if err != nil {
		m.ui.Error("Tailoring failed: %v", err)
		return nil
	}
	if err := m.store.Save(name, tailored); err != nil {
		m.ui.Error("Error saving tailored resume: %v", err)
		return nil
	}
	m.ui.Success("Tailored resume saved to '%s'.", resumePath)
	return nil
}

func (m *Menu) listResumes() error {
	m.ui.Accent("Listing all resumes:")
	resumes, names, ok := m.loadIndex("No resumes found.")
	if !ok {
		return nil
	}
	for _, name := range names {
		doc := resumes[name]
		status := string(doc.Status)
		if status == "" {
			status = "unknown"
		}
		lastModified := doc.LastModified
		if lastModified == "" {
			lastModified = "N/A"
		}
		m.ui.Printf("%s - Status: %s | Last Modified: %s\n", m.ui.Label(name), status, lastModified)
	}
	return nil
}

func (m *Menu) viewResume() error {
	_, names, ok := m.loadIndex("No resumes available to load.")
	if !ok {
		return nil
	}
	m.ui.Accent("Available Resumes:")
	m.printNumbered(names)

	answer, err := m.ui.Ask("Enter the number or name of the resume you want to load")
	if err != nil {
		return err
	}
	name, ok := pick(answer, names)
	if !ok {
		m.ui.Error("Invalid selection.")
		return nil
	}
	doc, err := m.store.Load(name)
	if err != nil {
		m.ui.Error("Error loading resume %s: %v", name, err)
		return nil
	}

	data, err := displayJSON(doc)
	if err != nil {
		m.ui.Error("Error displaying resume %s: %v", name, err)
		return nil
	}
	m.ui.Success("Resume: %s", name)
	m.ui.Println(data)
	return nil
}

func (m *Menu) createCoverLetter(ctx context.Context) error {
	_, names, ok := m.loadIndex("No resumes available to load.")
	if !ok {
		return nil
	}

	m.ui.Accent("Available Tailored Resumes (must have job posting data):")
	var options []string
	for _, name := range names {
		if m.store.HasJobPosting(name) {
			options = append(options, name)
			m.ui.Println("- " + name)
		}
	}
	if len(options) == 0 {
		m.ui.Error("No tailored resumes with job posting data found.")
		return nil
	}

	answer, err := m.ui.Ask("Enter the name of the tailored resume to use")
	if err != nil {
		return err
	}
	name, ok := pick(answer, options)
	if !ok {
		m.ui.Error("Invalid selection.")
		return nil
	}

	doc, err := m.store.Load(name)
	if err != nil {
		m.logger.Warn("failed to load tailored resume", "name", name, "error", err)
		m.ui.Error("Failed to load the tailored resume.")
		return nil
	}
	if doc.IsPrePackage() {
		m.ui.Error("'%s' has not been tailored yet.", name)
		return nil
	}
	posting, err := m.store.LoadJobPosting(name)
	if err != nil {
		m.ui.Error("Error loading job posting data: %v", err)
		return nil
	}

	result, err := m.letters.Generate(ctx, doc, posting)
	if err != nil {
		m.ui.Error("%s", capitalize(err.Error()))
		return nil
	}
	if result.Warning {
		m.ui.Warn("Escape sequences remained after %d clean-up passes; the letter may contain \\u codes.", result.Passes)
	}

	if err := m.store.SaveCoverLetter(name, result.Letter); err != nil {
		m.ui.Error("Error saving cover letter: %v", err)
	} else {
		m.ui.Success("Cover letter saved to '%s'.", m.store.Path(name, store.CoverLetterFile))
	}
	m.ui.Heading("Generated Cover Letter:")
	m.ui.Println(string(result.Letter))
	return nil
}

// displayJSON renders a document the way it is shown on screen.
func displayJSON(doc *types.Document) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
