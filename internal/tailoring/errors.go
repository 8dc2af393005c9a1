// Package tailoring rewrites the job-specific fields of a baseline resume for a
// single job posting using a schema-constrained language model call.
package tailoring

import "fmt"

// Stage identifies where a tailoring call failed.
type Stage string

// Failure stages
const (
	StageAPI    Stage = "api"
	StageParse  Stage = "parse"
	StageSchema Stage = "schema"
)

// Error is returned for every failed tailoring call. Tailoring is never retried.
type Error struct {
	Stage   Stage
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
