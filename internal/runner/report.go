package runner

import "time"

// Outcome classifies how a test case ended.
type Outcome string

// Test case outcomes.
const (
	// OutcomePassed means the expected text was found in the output.
	OutcomePassed Outcome = "passed"
	// OutcomeFailed means the expected text was missing from the output.
	OutcomeFailed Outcome = "failed"
	// OutcomeCompleted means the case ran but declared no expectation.
	OutcomeCompleted Outcome = "completed"
	// OutcomeHTTPError means the execute endpoint answered non-2xx.
	OutcomeHTTPError Outcome = "http_error"
	// OutcomeError means a transport or decoding failure.
	OutcomeError Outcome = "error"
)

// CaseResult records the outcome of one test case.
type CaseResult struct {
	Name           string
	Outcome        Outcome
	Err            error
	SubTestsPassed int
	SubTestsFailed int
	Elapsed        time.Duration
}

// OK reports whether the case neither failed nor errored, including its
// server-side sub-tests.
func (c CaseResult) OK() bool {
	switch c.Outcome {
	case OutcomePassed, OutcomeCompleted:
		return c.SubTestsFailed == 0
	default:
		return false
	}
}

// Report summarises a run.
type Report struct {
	RunID   string
	Started time.Time
	Healthy bool
	Results []CaseResult
}

// Passed returns the number of cases that are OK.
func (r *Report) Passed() int {
	n := 0
	for _, c := range r.Results {
		if c.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of cases that are not OK.
func (r *Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// ExitCode returns the process exit status for the run. Without strict every
// completed run exits 0; with strict a failed health check or any failed case
// exits 1.
func (r *Report) ExitCode(strict bool) int {
	if !strict {
		return 0
	}
	if !r.Healthy || r.Failed() > 0 {
		return 1
	}
	return 0
}
