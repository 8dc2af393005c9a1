// Package store persists resumes as one directory per resume under a root folder.
//
// Layout:
//
//	<root>/<name>/resume.json           the Document envelope
//	<root>/<name>/baseline_resume.json  baseline used for tailoring (optional)
//	<root>/<name>/job_posting_ai.txt    cleaned job posting text (optional)
//	<root>/<name>/cover_letter.json     generated cover letter (optional)
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

// File names inside a resume directory
const (
	ResumeFile      = "resume.json"
	BaselineFile    = "baseline_resume.json"
	JobPostingFile  = "job_posting_ai.txt"
	CoverLetterFile = "cover_letter.json"
)

// DefaultBaselineName is the directory used by the create/edit baseline flow.
const DefaultBaselineName = "baseline"

var (
	// ErrNotFound is returned when a resume (or one of its side files) does not exist.
	ErrNotFound = errors.New("resume not found")
	// ErrMalformed is returned when a stored file cannot be parsed.
	ErrMalformed = errors.New("malformed resume file")
	// ErrInvalidName is returned for names that cannot be used as a directory.
	ErrInvalidName = errors.New("invalid resume name")
)

// Store reads and writes resumes below Root.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a Store rooted at root. The directory is created lazily.
func New(root string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: root, logger: logger}
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory of the named resume.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// Path returns the path of a file inside the named resume directory.
func (s *Store) Path(name, file string) string {
	return filepath.Join(s.root, name, file)
}

// ValidateName checks that name can be used as a resume directory.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	}
	return nil
}

// EnsureDir creates the directory of the named resume if needed.
func (s *Store) EnsureDir(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir(name), 0755); err != nil {
		return fmt.Errorf("failed to create resume directory: %w", err)
	}
	return nil
}

// Exists reports whether the named resume directory exists.
func (s *Store) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(s.Dir(name))
	return err == nil && info.IsDir()
}

// Save writes doc as <root>/<name>/resume.json.
func (s *Store) Save(name string, doc *types.Document) error {
	return s.writeJSON(name, ResumeFile, doc)
}

// SaveBaseline writes the baseline used for a tailored resume.
func (s *Store) SaveBaseline(name string, doc *types.Document) error {
	return s.writeJSON(name, BaselineFile, doc)
}

// SaveCoverLetter writes an already formatted cover letter.
// The bytes are stored as given so the key order chosen by the model survives.
func (s *Store) SaveCoverLetter(name string, letter json.RawMessage) error {
	if !json.Valid(letter) {
		return fmt.Errorf("cover letter is not valid JSON")
	}
	return s.write(name, CoverLetterFile, ensureNewline(letter))
}

// SaveJobPosting writes the cleaned job posting text.
func (s *Store) SaveJobPosting(name, text string) error {
	return s.write(name, JobPostingFile, []byte(text))
}

// LoadJobPosting reads the cleaned job posting text.
func (s *Store) LoadJobPosting(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	path := s.Path(name, JobPostingFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to read job posting %s: %w", path, err)
	}
	return string(data), nil
}

// HasJobPosting reports whether the named resume has job posting text.
func (s *Store) HasJobPosting(name string) bool {
	info, err := os.Stat(s.Path(name, JobPostingFile))
	return err == nil && !info.IsDir()
}

// Load reads <root>/<name>/resume.json.
func (s *Store) Load(name string) (*types.Document, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return s.loadFile(s.Path(name, ResumeFile))
}

// List returns every resume with a readable resume.json, keyed by name.
// A missing root yields an empty map. Unreadable entries are skipped.
func (s *Store) List() (map[string]*types.Document, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]*types.Document{}, nil
		}
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}

	resumes := make(map[string]*types.Document, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := s.Path(entry.Name(), ResumeFile)
		doc, err := s.loadFile(path)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.logger.Warn("skipping unreadable resume", "path", path, "error", err)
			}
			continue
		}
		resumes[entry.Name()] = doc
	}
	return resumes, nil
}

// Names returns the sorted names of all listed resumes.
func Names(resumes map[string]*types.Document) []string {
	names := make([]string, 0, len(resumes))
	for name := range resumes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) loadFile(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return &doc, nil
}

func (s *Store) writeJSON(name, file string, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", file, err)
	}
	return s.write(name, file, data)
}

// write replaces a file atomically via a temp file in the same directory.
func (s *Store) write(name, file string, data []byte) error {
	if err := s.EnsureDir(name); err != nil {
		return err
	}

	path := s.Path(name, file)
	tmp := filepath.Join(s.Dir(name), "."+file+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Debug("saved file", "path", path, "bytes", len(data))
	return nil
}

// encodeJSON renders v with 4-space indentation and without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ensureNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}
