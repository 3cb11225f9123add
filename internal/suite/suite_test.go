package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/execprobe/internal/codeapi"
)

func TestDefaultCases(t *testing.T) {
	cases := DefaultCases()
	require.Len(t, cases, 4)

	names := make([]string, len(cases))
	for i, tc := range cases {
		names[i] = tc.Name
		assert.NoError(t, tc.Validate())
	}
	assert.Equal(t, []string{
		"Basic Hello World",
		"Simple Calculation",
		"Function Test",
		"Test with Test Cases",
	}, names)

	assert.Equal(t, "Hello, World!", *cases[0].Expected)
	assert.Equal(t, "5 x 7 = 35", *cases[1].Expected)
	assert.Equal(t, "2 + 3 = 5", *cases[2].Expected)

	assert.False(t, cases[3].HasExpectation())
	require.Len(t, cases[3].TestCases, 2)
	assert.Equal(t, "12", cases[3].TestCases[0].ExpectedOutput)
	assert.Equal(t, "0", cases[3].TestCases[1].ExpectedOutput)
}

func TestDefaultCases_ReturnsFreshCopies(t *testing.T) {
	a := DefaultCases()
	*a[0].Expected = "changed"
	a[3].TestCases[0].Code = "changed"

	b := DefaultCases()
	assert.Equal(t, "Hello, World!", *b[0].Expected)
	assert.Equal(t, "result = multiply(3, 4)\nprint(result)", b[3].TestCases[0].Code)
}

func TestTestCase_Request(t *testing.T) {
	tc := DefaultCases()[3]
	req := tc.Request("python", 5)

	assert.Equal(t, codeapi.ExecuteRequest{
		Code:      "def multiply(a, b):\n    return a * b",
		Language:  "python",
		Timeout:   5,
		TestCases: tc.TestCases,
	}, req)

	assert.Nil(t, DefaultCases()[0].Request("python", 5).TestCases)
}

func TestTestCase_HasExpectation(t *testing.T) {
	assert.False(t, TestCase{Name: "n", Code: "c"}.HasExpectation())
	assert.True(t, TestCase{Name: "n", Code: "c", Expected: Expect("")}.HasExpectation())
}

func TestTestCase_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tc      TestCase
		wantErr string
	}{
		{"valid", TestCase{Name: "n", Code: "c"}, ""},
		{"missing name", TestCase{Code: "c"}, "name is required"},
		{"missing code", TestCase{Name: "n"}, "code is required"},
		{
			"sub-test without code",
			TestCase{Name: "n", Code: "c", TestCases: []codeapi.SubTestCase{{Input: "x"}}},
			"test_cases[0]: code is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tc.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
