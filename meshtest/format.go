package meshtest

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const banner = `
    ╔══════════════════════════════════════════════════════════╗
    ║   LiteLLM Model Mesh - Test Suite                       ║
    ╚══════════════════════════════════════════════════════════╝
    `

var tips = []string{
	"Use 'gpt-3.5-turbo' for fast local routing",
	"Use 'best' for highest quality (cloud)",
	"Use 'code' for code generation",
	"Use 'research' for web-connected queries",
}

// Printer writes the human-readable report. Nothing it prints is meant
// to be parsed.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	color  bool
}

func NewPrinter(out, errOut io.Writer, color bool) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{out: out, errOut: errOut, color: color}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Banner(baseURL, maskedKey string) {
	p.printf("%s\n", banner)
	p.printf("🌐 Base URL: %s\n", baseURL)
	p.printf("🔑 API Key: %s\n", maskedKey)
}

func (p *Printer) Section(title string) {
	rule := strings.Repeat("=", 60)
	p.printf("\n%s\n  %s\n%s\n\n", rule, p.colorize(title, "1;36"), rule)
}

func (p *Printer) ChatStart(c Case) {
	p.printf("🧪 Testing: %s\n", c.Description)
	p.printf("   Model: %s\n", c.Model)
	p.printf("   Prompt: %s...\n", Truncate(c.Prompt, PromptPreviewChars))
}

func (p *Printer) ChatOK(d time.Duration, text string) {
	p.printf("   ✅ Response (%s): %s...\n\n", formatSeconds(d), Truncate(text, ChatPreviewChars))
}

func (p *Printer) ChatError(err error) {
	p.printf("   ❌ Error: %v\n\n", err)
}

func (p *Printer) EscalationStep(label, model string) {
	p.printf("%s\n", label)
	p.printf("   Model: %s\n", model)
}

func (p *Printer) EscalationResult(d time.Duration, text string) {
	p.printf("   ⏱️  Time: %s\n", formatSeconds(d))
	p.printf("   📝 Response: %s...\n\n", Truncate(text, EscalationPreviewChars))
}

func (p *Printer) EmbeddingStart(model string) {
	p.printf("📊 Testing: %s\n", model)
}

func (p *Printer) EmbeddingOK(dim, count int) {
	p.printf("   ✅ Dimension: %d\n", dim)
	p.printf("   📦 Embeddings: %d vectors\n\n", count)
}

func (p *Printer) EmbeddingError(err error) {
	p.printf("   ❌ Error: %v\n\n", err)
}

func (p *Printer) DemoFailed(name string, err error) {
	p.printf("❌ %s test failed: %v\n", name, err)
}

func (p *Printer) Summary(o Outcome) {
	total := len(o.Results)
	p.printf("✅ Passed: %d/%d\n", o.Passed, total)
	p.printf("❌ Failed: %d/%d\n", o.Failed, total)
	for _, r := range o.Results {
		if !r.Success {
			p.printf("   - %s (%s): %s\n", r.Description, r.Model, r.Err)
		}
	}
	p.printf("\n")

	if o.Passed == total {
		p.printf("%s\n", p.colorize("🎉 All tests passed! Your model mesh is working perfectly.", "1;32"))
	} else {
		p.printf("%s\n", p.colorize("⚠️  Some tests failed. Check the logs above for details.", "1;33"))
	}
}

func (p *Printer) Tips() {
	p.printf("\n💡 Tips:\n")
	for _, tip := range tips {
		p.printf("   - %s\n", tip)
	}
	p.printf("\n")
}

func (p *Printer) Interrupted() {
	p.printf("\n\n⏹️  Test interrupted by user\n")
}

// Fatal prints the error on the report stream and the trace on errOut.
func (p *Printer) Fatal(err error, trace string) {
	p.printf("\n\n❌ Fatal error: %v\n", err)
	if trace != "" {
		fmt.Fprintln(p.errOut, trace)
	}
}

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func (p *Printer) colorize(v, code string) string {
	if !p.color || strings.TrimSpace(v) == "" {
		return v
	}
	return "\033[" + code + "m" + v + "\033[0m"
}

// ColorEnabled reports whether ANSI colors suit the current terminal.
func ColorEnabled(noColor bool) bool {
	if noColor || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	term := strings.TrimSpace(os.Getenv("TERM"))
	return term != "" && term != "dumb"
}
