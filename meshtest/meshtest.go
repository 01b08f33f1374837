// Package meshtest drives a fixed sequence of chat and embedding calls
// against a model mesh and reports each outcome on the console.
package meshtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lyricat/goutils/structs"

	"github.com/quailyquaily/meshcheck"
)

const (
	DefaultMaxTokens           = 100
	DefaultEscalationMaxTokens = 150
	DefaultEscalationPrompt    = "Explain quantum entanglement in detail"
	DefaultFastModel           = "fast/general"
	DefaultBestModel           = "cloud/claude-opus"

	// Display limits for response bodies.
	ChatPreviewChars       = 100
	EscalationPreviewChars = 200
	PromptPreviewChars     = 60
)

// Service is the subset of *meshcheck.Client the runner needs.
type Service interface {
	Chat(ctx context.Context, opts ...meshcheck.ChatOption) (*meshcheck.ChatResult, error)
	Embedding(ctx context.Context, opts ...meshcheck.EmbeddingOption) (*meshcheck.EmbeddingResult, error)
}

// Case is one chat call against a model alias. System, when set, is sent
// as a system message ahead of the prompt.
type Case struct {
	Model       string          `yaml:"model"`
	Prompt      string          `yaml:"prompt"`
	Description string          `yaml:"description"`
	System      string          `yaml:"system,omitempty"`
	MaxTokens   int             `yaml:"max_tokens,omitempty"`
	Temperature *float64        `yaml:"temperature,omitempty"`
	TopP        *float64        `yaml:"top_p,omitempty"`
	Stop        []string        `yaml:"stop,omitempty"`
	User        string          `yaml:"user,omitempty"`
	Options     structs.JSONMap `yaml:"options,omitempty"`
}

func (c Case) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model alias is required")
	}
	if strings.TrimSpace(c.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", *c.Temperature)
	}
	if c.TopP != nil && (*c.TopP <= 0 || *c.TopP > 1) {
		return fmt.Errorf("top_p must be in (0, 1], got %g", *c.TopP)
	}
	for i, stop := range c.Stop {
		if stop == "" {
			return fmt.Errorf("stop[%d] is empty", i)
		}
	}
	return nil
}

func (c Case) chatOptions() []meshcheck.ChatOption {
	var msgs []meshcheck.Message
	if strings.TrimSpace(c.System) != "" {
		msgs = append(msgs, meshcheck.System(c.System))
	}
	msgs = append(msgs, meshcheck.User(c.Prompt))

	opts := []meshcheck.ChatOption{
		meshcheck.WithModel(c.Model),
		meshcheck.WithMessages(msgs...),
		meshcheck.WithMaxTokens(c.maxTokens()),
		meshcheck.WithOpenAIOptions(c.Options),
	}
	if c.Temperature != nil {
		opts = append(opts, meshcheck.WithTemperature(*c.Temperature))
	}
	if c.TopP != nil {
		opts = append(opts, meshcheck.WithTopP(*c.TopP))
	}
	if len(c.Stop) > 0 {
		opts = append(opts, meshcheck.WithStop(c.Stop...))
	}
	if strings.TrimSpace(c.User) != "" {
		opts = append(opts, meshcheck.WithUser(c.User))
	}
	return opts
}

func (c Case) maxTokens() int {
	if c.MaxTokens == 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

// EscalationPlan calls a fast alias and then a premium alias with the same
// prompt. Both calls always run; nothing decides whether to escalate.
type EscalationPlan struct {
	Prompt    string `yaml:"prompt"`
	Fast      string `yaml:"fast"`
	Best      string `yaml:"best"`
	MaxTokens int    `yaml:"max_tokens,omitempty"`
}

func (p EscalationPlan) withDefaults() EscalationPlan {
	if strings.TrimSpace(p.Prompt) == "" {
		p.Prompt = DefaultEscalationPrompt
	}
	if strings.TrimSpace(p.Fast) == "" {
		p.Fast = DefaultFastModel
	}
	if strings.TrimSpace(p.Best) == "" {
		p.Best = DefaultBestModel
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = DefaultEscalationMaxTokens
	}
	return p
}

// EmbeddingPlan sends all texts to each model alias in one request.
// Dimensions of 0 lets each model use its native size.
type EmbeddingPlan struct {
	Texts      []string `yaml:"texts"`
	Models     []string `yaml:"models"`
	Dimensions int      `yaml:"dimensions,omitempty"`
	User       string   `yaml:"user,omitempty"`
}

func (p EmbeddingPlan) withDefaults() EmbeddingPlan {
	if len(p.Texts) == 0 {
		p.Texts = []string{
			"The quick brown fox jumps over the lazy dog",
			"Machine learning is a subset of artificial intelligence",
		}
	}
	if len(p.Models) == 0 {
		p.Models = []string{"embeddings/fast", "embeddings/large"}
	}
	return p
}

func (p EmbeddingPlan) options(model string) []meshcheck.EmbeddingOption {
	opts := []meshcheck.EmbeddingOption{meshcheck.Embedding(model, p.Texts...)}
	if p.Dimensions > 0 {
		opts = append(opts, meshcheck.WithDimensions(p.Dimensions))
	}
	if strings.TrimSpace(p.User) != "" {
		opts = append(opts, meshcheck.WithEmbeddingUser(p.User))
	}
	return opts
}

// Plan is the ordered catalogue for one run.
type Plan struct {
	Routing    []Case         `yaml:"routing"`
	Specific   []Case         `yaml:"specific"`
	Escalation EscalationPlan `yaml:"escalation"`
	Embedding  EmbeddingPlan  `yaml:"embedding"`
}

// Total is the number of chat cases that are tallied in the summary.
func (p Plan) Total() int {
	return len(p.Routing) + len(p.Specific)
}

// DefaultPlan returns the built-in catalogue.
func DefaultPlan() Plan {
	return Plan{
		Routing: []Case{
			{Model: "gpt-3.5-turbo", Prompt: "Hello! How are you?", Description: "Simple chat (auto-routes to fast)"},
			{Model: "code", Prompt: "Write a quicksort in Python", Description: "Code generation"},
			{Model: "vision", Prompt: "Describe what you see", Description: "Vision task (requires image)"},
			{Model: "fast", Prompt: "What is 2+2?", Description: "Ultra-fast query"},
			{Model: "balanced", Prompt: "Explain neural networks", Description: "Balanced quality/speed"},
		},
		Specific: []Case{
			{Model: "ultrafast/chat", Prompt: "Hi there!", Description: "Ultra-fast local"},
			{Model: "heavy/code", Prompt: "Implement binary search in Rust", Description: "Heavy code model"},
			{Model: "cloud/claude-sonnet", Prompt: "Explain relativity", Description: "Cloud Claude"},
			{Model: "cloud/gpt-4o-mini", Prompt: "Quick question", Description: "Cloud GPT fast"},
		},
		Escalation: EscalationPlan{}.withDefaults(),
		Embedding:  EmbeddingPlan{}.withDefaults(),
	}
}

// TestResult is the tallied outcome of one Case.
type TestResult struct {
	Description string
	Model       string
	Success     bool
	Duration    time.Duration
	Err         string
}

// Outcome is everything a run produced. The caller maps it to an exit status.
type Outcome struct {
	Results     []TestResult
	Passed      int
	Failed      int
	Interrupted bool
	Fatal       error
	FatalTrace  string
}

func (o Outcome) AllPassed() bool {
	return o.Fatal == nil && !o.Interrupted && o.Failed == 0
}

// Summarize counts passed and failed results.
func Summarize(results []TestResult) (passed, failed int) {
	for _, r := range results {
		if r.Success {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
