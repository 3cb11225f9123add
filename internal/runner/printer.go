package runner

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/jmylchreest/execprobe/internal/config"
)

// Printer writes the console verdict lines of a run.
type Printer struct {
	w       io.Writer
	good    *color.Color
	bad     *color.Color
	heading *color.Color
	banner  *color.Color
}

// NewPrinter creates a Printer writing to w. mode is one of the
// config.Color* values; auto defers to fatih/color's terminal detection.
func NewPrinter(w io.Writer, mode string) *Printer {
	p := &Printer{
		w:       w,
		good:    color.New(color.FgGreen),
		bad:     color.New(color.FgRed),
		heading: color.New(color.FgCyan),
		banner:  color.New(color.Bold),
	}

	for _, c := range []*color.Color{p.good, p.bad, p.heading, p.banner} {
		switch mode {
		case config.ColorAlways:
			c.EnableColor()
		case config.ColorNever:
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) line(c *color.Color, format string, args ...any) {
	if c == nil {
		fmt.Fprintf(p.w, format+"\n", args...)
		return
	}
	c.Fprintf(p.w, format, args...)
	fmt.Fprintln(p.w)
}

// Start prints the run banner.
func (p *Printer) Start() {
	p.line(p.banner, "🚀 Starting API tests...")
}

// CheckingHealth prints the health check heading.
func (p *Printer) CheckingHealth() {
	fmt.Fprintln(p.w)
	p.line(p.heading, "🏥 Checking API health...")
}

// Healthy prints the backend status reported by the health endpoint.
func (p *Printer) Healthy(status, docker string) {
	p.line(p.good, "✅ API is %s, Docker: %s", status, docker)
}

// HealthHTTPFailure prints a non-2xx health response.
func (p *Printer) HealthHTTPFailure(code int) {
	p.line(p.bad, "❌ Health check failed: HTTP %d", code)
}

// HealthError prints a transport or decoding failure of the health check.
func (p *Printer) HealthError(err error) {
	p.line(p.bad, "❌ Health check error: %s", err)
}

// SkippingTests prints the abort line after a failed health check.
func (p *Printer) SkippingTests() {
	p.line(p.bad, "❌ API health check failed. Skipping tests.")
}

// RunningCase prints the heading of a test case.
func (p *Printer) RunningCase(name string) {
	fmt.Fprintln(p.w)
	p.line(p.heading, "🧪 Running test: %s", name)
}

// CaseHTTPFailure prints a non-2xx execute response with its raw body.
func (p *Printer) CaseHTTPFailure(code int, body string) {
	p.line(p.bad, "❌ Test failed: HTTP %d - %s", code, body)
}

// CaseError prints a transport or decoding failure of a test case.
func (p *Printer) CaseError(err error) {
	p.line(p.bad, "❌ Error running test: %s", err)
}

// Results prints the execution result block. output must already be trimmed.
func (p *Printer) Results(output, errText string, seconds float64) {
	p.line(p.heading, "📋 Results:")
	p.line(nil, "Output: %s", output)
	if errText != "" {
		p.line(nil, "Error: %s", errText)
	}
	p.line(nil, "⏱️ Execution time: %.3fs", seconds)
}

// Verdict prints the outcome of the expected-output check.
func (p *Printer) Verdict(passed bool, expected string) {
	if passed {
		p.line(p.good, "✅ Test passed!")
		return
	}
	p.line(p.bad, "❌ Test failed! Expected: \"%s\"", expected)
}

// SubTestsHeading prints the heading before server-side sub-test results.
func (p *Printer) SubTestsHeading() {
	fmt.Fprintln(p.w)
	p.line(p.heading, "🔍 Test Case Results:")
}

// SubTest prints one server-side sub-test result; index is 1-based.
func (p *Printer) SubTest(index int, passed bool, message string) {
	if passed {
		p.line(p.good, "  ✅ Test %d: %s", index, message)
		return
	}
	p.line(p.bad, "  ❌ Test %d: %s", index, message)
}

// Done prints the completion banner.
func (p *Printer) Done() {
	fmt.Fprintln(p.w)
	p.line(p.banner, "🏁 All tests completed!")
}
