package report

import "fmt"

// MalformedInputError reports structured input that is not a JSON array
// of report objects. The whole batch is rejected.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return e.Reason
}

// MissingFieldError reports a structured record lacking a required field.
// Index is 1-based.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("JSON report %d is missing required field: %s", e.Index, e.Field)
}

// InvalidSeverityError reports a severity that is not an integer in [1,5].
type InvalidSeverityError struct {
	Index int
}

func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("JSON report %d has invalid severity. Use a number between 1 and 5.", e.Index)
}

// InvalidConfidenceError reports a confidence outside [0,1].
type InvalidConfidenceError struct {
	Index int
}

func (e *InvalidConfidenceError) Error() string {
	return fmt.Sprintf("JSON report %d has invalid confidence. Use a number between 0 and 1.", e.Index)
}

// EmptyCorpusError is returned when every adapter ran and produced
// zero records. It is the only condition the pipeline itself treats
// as fatal.
type EmptyCorpusError struct{}

func (e *EmptyCorpusError) Error() string {
	return "Provide at least one JSON report, PDF, or URL."
}
