package codeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SubTestCase is a server-evaluated assertion submitted alongside the code.
type SubTestCase struct {
	Input          string `json:"input" yaml:"input" toml:"input"`
	ExpectedOutput string `json:"expected_output" yaml:"expected_output" toml:"expected_output"`
	Code           string `json:"code" yaml:"code" toml:"code"`
}

// ExecuteRequest is the body of POST /execute.
type ExecuteRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	// Timeout is the server-side execution limit in seconds.
	Timeout   int           `json:"timeout"`
	TestCases []SubTestCase `json:"test_cases,omitempty"`
}

// SubTestResult is the server's verdict on one SubTestCase.
type SubTestResult struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// ExecutionResult is the decoded body of a successful POST /execute.
type ExecutionResult struct {
	Output        string
	Error         string
	ExecutionTime float64
	TestResults   []SubTestResult
}

// executionResultWire mirrors the response body; pointers mark required fields.
type executionResultWire struct {
	Output        *string         `json:"output"`
	Error         *string         `json:"error"`
	ExecutionTime *float64        `json:"execution_time"`
	TestResults   []SubTestResult `json:"test_results"`
}

func decodeExecutionResult(body []byte) (*ExecutionResult, error) {
	var wire executionResultWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if wire.Output == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedResponse, "output")
	}
	if wire.ExecutionTime == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedResponse, "execution_time")
	}

	res := &ExecutionResult{
		Output:        *wire.Output,
		ExecutionTime: *wire.ExecutionTime,
		TestResults:   wire.TestResults,
	}
	if wire.Error != nil {
		res.Error = *wire.Error
	}
	return res, nil
}

// BackendStatus holds the health endpoint's backend flag, which servers
// report either as a JSON bool or as a string.
type BackendStatus struct {
	raw json.RawMessage
}

// UnmarshalJSON keeps the raw value for later rendering.
func (b *BackendStatus) UnmarshalJSON(data []byte) error {
	b.raw = append(b.raw[:0], data...)
	return nil
}

// String renders the flag as the server sent it: true/false for bools, the
// bare text for strings.
func (b BackendStatus) String() string {
	raw := bytes.TrimSpace(b.raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "unknown"
	}
	if raw[0] == '"' {
		if s, err := strconv.Unquote(string(raw)); err == nil {
			return s
		}
	}
	return string(raw)
}

// Present reports whether the field appeared in the response.
func (b BackendStatus) Present() bool {
	return len(b.raw) > 0
}

// HealthStatus is the decoded body of GET /health.
type HealthStatus struct {
	Status string        `json:"status"`
	Docker BackendStatus `json:"docker"`
}

func decodeHealthStatus(body []byte) (*HealthStatus, error) {
	var wire struct {
		Status *string       `json:"status"`
		Docker BackendStatus `json:"docker"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if wire.Status == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedResponse, "status")
	}
	if !wire.Docker.Present() {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedResponse, "docker")
	}
	return &HealthStatus{Status: *wire.Status, Docker: wire.Docker}, nil
}
