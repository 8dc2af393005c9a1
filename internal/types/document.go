package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the lifecycle state stored in a resume document envelope
type Status string

// Status values accepted in resume.json
const (
	StatusInProgress Status = "in progress"
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
)

// TimestampLayout is the layout of last_modified values (local time).
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp formats t as a last_modified value.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a last_modified value in the local time zone.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}

// Document is the envelope persisted as resume.json.
// A regular document carries Resume. A pre-package (a baseline paired with
// job posting data that has not been sent for tailoring yet) carries Baseline
// and JobPosting instead.
type Document struct {
	Resume       *Resume   `json:"resume,omitempty" validate:"required_without=Baseline"`
	Baseline     *Document `json:"baseline,omitempty"`
	JobPosting   string    `json:"job_posting,omitempty"`
	Status       Status    `json:"status" validate:"required,resume_status"`
	LastModified string    `json:"last_modified" validate:"required"`
}

// IsPrePackage reports whether the document is an untailored pre-package.
func (d *Document) IsPrePackage() bool {
	return d != nil && d.Resume == nil && d.Baseline != nil
}

// Validate checks the envelope fields.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("invalid document: nil")
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("resume_status", func(fl validator.FieldLevel) bool {
		switch Status(fl.Field().String()) {
		case StatusInProgress, StatusComplete, StatusIncomplete:
			return true
		}
		return false
	})
	return v
}
