package runner

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/execprobe/internal/config"
)

func TestPrinter_ColorModes(t *testing.T) {
	var plain, colored bytes.Buffer

	NewPrinter(&plain, config.ColorNever).Verdict(true, "")
	NewPrinter(&colored, config.ColorAlways).Verdict(true, "")

	assert.Equal(t, "✅ Test passed!\n", plain.String())
	assert.Contains(t, colored.String(), "\x1b[")
	assert.Contains(t, colored.String(), "✅ Test passed!")
}

func TestPrinter_Lines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, config.ColorNever)

	p.HealthHTTPFailure(502)
	p.HealthError(errors.New("dial tcp: connection refused"))
	p.CaseHTTPFailure(401, `{"detail":"Invalid API key"}`)
	p.CaseError(errors.New("EOF"))
	p.Results("", "", 1.23456)
	p.Verdict(false, `say "hi"`)

	assert.Equal(t, "❌ Health check failed: HTTP 502\n"+
		"❌ Health check error: dial tcp: connection refused\n"+
		"❌ Test failed: HTTP 401 - {\"detail\":\"Invalid API key\"}\n"+
		"❌ Error running test: EOF\n"+
		"📋 Results:\n"+
		"Output: \n"+
		"⏱️ Execution time: 1.235s\n"+
		"❌ Test failed! Expected: \"say \"hi\"\"\n", buf.String())
}
