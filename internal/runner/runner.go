// Package runner drives a probe run against the code-execution API: a health
// gate followed by each test case in order.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/execprobe/internal/codeapi"
	"github.com/jmylchreest/execprobe/internal/observability"
	"github.com/jmylchreest/execprobe/internal/suite"
)

// API is the subset of the code-execution API a run needs.
type API interface {
	Health(ctx context.Context) (*codeapi.HealthStatus, error)
	Execute(ctx context.Context, payload codeapi.ExecuteRequest) (*codeapi.ExecutionResult, error)
}

// Options configures a Runner.
type Options struct {
	API     API
	Printer *Printer
	Logger  *slog.Logger
	Cases   []suite.TestCase
	// Language and Timeout are copied into every execute payload.
	Language string
	Timeout  int
}

// Runner executes test cases sequentially against an API.
type Runner struct {
	api      API
	printer  *Printer
	logger   *slog.Logger
	cases    []suite.TestCase
	language string
	timeout  int
}

// New creates a Runner.
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		api:      opts.API,
		printer:  opts.Printer,
		logger:   observability.WithComponent(logger, "runner"),
		cases:    opts.Cases,
		language: opts.Language,
		timeout:  opts.Timeout,
	}
}

// CheckHealth queries the health endpoint and prints the outcome.
// It reports whether the API is ready for test cases.
func (r *Runner) CheckHealth(ctx context.Context) bool {
	r.printer.CheckingHealth()

	health, err := r.api.Health(ctx)
	if err != nil {
		r.logger.Debug("health check failed", slog.String("error", err.Error()))
		var statusErr *codeapi.StatusError
		if errors.As(err, &statusErr) {
			r.printer.HealthHTTPFailure(statusErr.StatusCode)
		} else {
			r.printer.HealthError(err)
		}
		return false
	}

	r.printer.Healthy(health.Status, health.Docker.String())
	return true
}

// RunCase sends one test case and prints its results. Failures are recorded
// in the returned CaseResult, never returned as errors.
func (r *Runner) RunCase(ctx context.Context, tc suite.TestCase) CaseResult {
	r.printer.RunningCase(tc.Name)

	start := time.Now()
	res, err := r.api.Execute(ctx, tc.Request(r.language, r.timeout))
	result := CaseResult{Name: tc.Name, Elapsed: time.Since(start)}

	if err != nil {
		result.Err = err
		var statusErr *codeapi.StatusError
		if errors.As(err, &statusErr) {
			result.Outcome = OutcomeHTTPError
			r.printer.CaseHTTPFailure(statusErr.StatusCode, statusErr.Body)
		} else {
			result.Outcome = OutcomeError
			r.printer.CaseError(err)
		}
		r.logger.Debug("test case errored",
			slog.String("case", tc.Name),
			slog.String("outcome", string(result.Outcome)),
			slog.String("error", err.Error()),
		)
		return result
	}

	output := strings.TrimSpace(res.Output)
	r.printer.Results(output, res.Error, res.ExecutionTime)

	result.Outcome = OutcomeCompleted
	if tc.HasExpectation() {
		if strings.Contains(output, *tc.Expected) {
			result.Outcome = OutcomePassed
		} else {
			result.Outcome = OutcomeFailed
		}
		r.printer.Verdict(result.Outcome == OutcomePassed, *tc.Expected)
	}

	if len(res.TestResults) > 0 {
		r.printer.SubTestsHeading()
		for i, st := range res.TestResults {
			r.printer.SubTest(i+1, st.Passed, st.Message)
			if st.Passed {
				result.SubTestsPassed++
			} else {
				result.SubTestsFailed++
			}
		}
	}

	r.logger.Debug("test case finished",
		slog.String("case", tc.Name),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("subtests_passed", result.SubTestsPassed),
		slog.Int("subtests_failed", result.SubTestsFailed),
		slog.Duration("elapsed", result.Elapsed),
	)
	return result
}

// Run performs the health gate and then every case in declaration order.
// It returns an error only when ctx is cancelled; the report then holds the
// cases that completed before cancellation.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: ulid.Make().String(), Started: time.Now()}
	logger := observability.WithRunID(r.logger, report.RunID)
	logger.Info("starting run", slog.Int("cases", len(r.cases)))

	r.printer.Start()

	report.Healthy = r.CheckHealth(ctx)
	if !report.Healthy {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r.printer.SkippingTests()
		logger.Info("health check failed, skipping test cases")
		return report, nil
	}

	for _, tc := range r.cases {
		if err := ctx.Err(); err != nil {
			logger.Warn("run interrupted", slog.Int("completed", len(report.Results)))
			return report, err
		}
		report.Results = append(report.Results, r.RunCase(ctx, tc))
	}

	r.printer.Done()
	logger.Info("run finished",
		slog.Int("passed", report.Passed()),
		slog.Int("failed", report.Failed()),
		slog.Duration("elapsed", time.Since(report.Started)),
	)
	return report, nil
}
