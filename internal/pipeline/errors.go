package pipeline

import "fmt"

// One error kind per pipeline stage. Acquisition, analysis and separation
// errors are contained at the URL loop boundary; persistence errors are
// contained per stem.

type AcquisitionError struct {
	URL string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquisition failed for %s: %v", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

type AnalysisError struct {
	Path string
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed for %s: %v", e.Path, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

type SeparationError struct {
	Path string
	Err  error
}

func (e *SeparationError) Error() string {
	return fmt.Sprintf("separation failed for %s: %v", e.Path, e.Err)
}

func (e *SeparationError) Unwrap() error { return e.Err }

type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed for %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
