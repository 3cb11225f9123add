// Package suite defines the test cases sent to the code-execution API.
package suite

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/execprobe/internal/codeapi"
)

// TestCase is one payload sent to the execute endpoint.
type TestCase struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Code string `json:"code" yaml:"code" toml:"code"`
	// Expected, when non-nil, must appear in the trimmed output.
	// An empty string is a declared expectation and always matches.
	Expected  *string               `json:"expected,omitempty" yaml:"expected,omitempty" toml:"expected,omitempty"`
	TestCases []codeapi.SubTestCase `json:"test_cases,omitempty" yaml:"test_cases,omitempty" toml:"test_cases,omitempty"`
}

// HasExpectation reports whether the case declares an expected output.
func (tc TestCase) HasExpectation() bool {
	return tc.Expected != nil
}

// Request builds the execute payload for the case.
func (tc TestCase) Request(language string, timeout int) codeapi.ExecuteRequest {
	return codeapi.ExecuteRequest{
		Code:      tc.Code,
		Language:  language,
		Timeout:   timeout,
		TestCases: tc.TestCases,
	}
}

// Validate checks that the case can be sent.
func (tc TestCase) Validate() error {
	if tc.Name == "" {
		return errors.New("name is required")
	}
	if tc.Code == "" {
		return fmt.Errorf("case %q: code is required", tc.Name)
	}
	for i, st := range tc.TestCases {
		if st.Code == "" {
			return fmt.Errorf("case %q: test_cases[%d]: code is required", tc.Name, i)
		}
	}
	return nil
}

// Expect returns a pointer to s, for declaring TestCase.Expected inline.
func Expect(s string) *string {
	return &s
}

// DefaultCases returns the built-in cases in run order.
func DefaultCases() []TestCase {
	return []TestCase{
		{
			Name:     "Basic Hello World",
			Code:     `print("Hello, World!")`,
			Expected: Expect("Hello, World!"),
		},
		{
			Name:     "Simple Calculation",
			Code:     "result = 5 * 7\nprint(f\"5 x 7 = {result}\")",
			Expected: Expect("5 x 7 = 35"),
		},
		{
			Name:     "Function Test",
			Code:     "def add(a, b):\n    return a + b\n\nprint(f\"2 + 3 = {add(2, 3)}\")",
			Expected: Expect("2 + 3 = 5"),
		},
		{
			Name: "Test with Test Cases",
			Code: "def multiply(a, b):\n    return a * b",
			TestCases: []codeapi.SubTestCase{
				{
					Input:          "multiply(3, 4)",
					ExpectedOutput: "12",
					Code:           "result = multiply(3, 4)\nprint(result)",
				},
				{
					Input:          "multiply(5, 0)",
					ExpectedOutput: "0",
					Code:           "result = multiply(5, 0)\nprint(result)",
				},
			},
		},
	}
}
