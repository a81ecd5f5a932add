package analysis

import "fmt"

// AnalysisFailedError is returned when aggregation cannot complete. No
// partial result accompanies it.
type AnalysisFailedError struct {
	Cause error
}

func (e *AnalysisFailedError) Error() string {
	return fmt.Sprintf("analysis failed: %v", e.Cause)
}

func (e *AnalysisFailedError) Unwrap() error {
	return e.Cause
}
