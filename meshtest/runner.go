package meshtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quailyquaily/meshcheck"
)

type Config struct {
	BaseURL string
	// APIKey is masked before it is printed.
	APIKey string
	Out    io.Writer
	ErrOut io.Writer
	Color  bool
	// Trace logs each chat request and response payload at trace level,
	// tagged with the case description.
	Trace bool
}

type Runner struct {
	svc Service
	cfg Config
	p   *Printer
}

func New(svc Service, cfg Config) *Runner {
	return &Runner{
		svc: svc,
		cfg: cfg,
		p:   NewPrinter(cfg.Out, cfg.ErrOut, cfg.Color),
	}
}

// RunChatTest sends c once and reports the outcome. Failures are printed
// and returned as an unsuccessful result, never as an error.
func (r *Runner) RunChatTest(ctx context.Context, c Case) TestResult {
	result := TestResult{Description: c.Description, Model: c.Model}
	r.p.ChatStart(c)

	if err := c.Validate(); err != nil {
		result.Err = err.Error()
		r.p.ChatError(err)
		return result
	}

	start := time.Now()
	opts := c.chatOptions()
	if r.cfg.Trace {
		opts = append(opts, meshcheck.WithDebugFn(tracePayload(c.Description)))
	}
	resp, err := r.svc.Chat(ctx, opts...)
	result.Duration = time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.Err = ctxErr.Error()
		return result
	}
	if err == nil && resp == nil {
		err = fmt.Errorf("%w: empty chat result", meshcheck.ErrMalformedResponse)
	}
	if err != nil {
		result.Err = err.Error()
		log.Debug().Str("model", c.Model).Dur("elapsed", result.Duration).Err(err).Msg("chat test failed")
		r.p.ChatError(err)
		return result
	}

	result.Success = true
	log.Debug().Str("model", c.Model).Str("served_by", resp.Model).Dur("elapsed", result.Duration).Msg("chat test passed")
	r.p.ChatOK(result.Duration, resp.Text)
	return result
}

// RunEscalationDemo calls the fast alias and then the best alias. The first
// error is returned as is and the remaining step is skipped.
func (r *Runner) RunEscalationDemo(ctx context.Context, plan EscalationPlan) error {
	plan = plan.withDefaults()
	r.p.Section("USER ESCALATION PATTERN")

	steps := []struct {
		label string
		model string
	}{
		{"🚀 Step 1: Try fast model first", plan.Fast},
		{"⬆️  Step 2: Escalate to best model", plan.Best},
	}
	for _, step := range steps {
		r.p.EscalationStep(step.label, step.model)

		start := time.Now()
		resp, err := r.svc.Chat(ctx,
			meshcheck.WithModel(step.model),
			meshcheck.WithMessages(meshcheck.User(plan.Prompt)),
			meshcheck.WithMaxTokens(plan.MaxTokens),
		)
		elapsed := time.Since(start)
		if err != nil {
			return err
		}
		if resp == nil {
			return fmt.Errorf("%w: empty chat result", meshcheck.ErrMalformedResponse)
		}
		r.p.EscalationResult(elapsed, resp.Text)
	}
	return nil
}

// RunEmbeddingDemo embeds all texts with each model alias. Empty texts or
// models fall back to the defaults. A failing alias is reported and the
// loop moves on; only cancellation stops it early.
func (r *Runner) RunEmbeddingDemo(ctx context.Context, plan EmbeddingPlan) error {
	plan = plan.withDefaults()
	r.p.Section("EMBEDDINGS")

	for _, model := range plan.Models {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.p.EmbeddingStart(model)

		resp, err := r.svc.Embedding(ctx, plan.options(model)...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Debug().Str("model", model).Err(err).Msg("embedding failed")
			r.p.EmbeddingError(err)
			continue
		}
		if resp.Count() == 0 {
			r.p.EmbeddingError(fmt.Errorf("%w: no vectors returned", meshcheck.ErrMalformedResponse))
			continue
		}
		r.p.EmbeddingOK(resp.Dimension(), resp.Count())
	}
	return nil
}

// Run executes plan in order and returns the collected outcome. A panic
// inside the run is recovered into Outcome.Fatal.
func (r *Runner) Run(ctx context.Context, plan Plan) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out.Fatal = fmt.Errorf("%v", rec)
			out.FatalTrace = string(debug.Stack())
			out.Passed, out.Failed = Summarize(out.Results)
			log.Error().Interface("panic", rec).Msg("run aborted")
			r.p.Fatal(out.Fatal, out.FatalTrace)
		}
	}()

	r.p.Banner(r.cfg.BaseURL, meshcheck.MaskSecret(r.cfg.APIKey, meshcheck.MaskedKeyChars))

	sections := []struct {
		title string
		cases []Case
	}{
		{"AUTOMATIC ROUTING TESTS", plan.Routing},
		{"SPECIFIC MODEL TESTS", plan.Specific},
	}
	out.Results = make([]TestResult, 0, plan.Total())
	for _, section := range sections {
		r.p.Section(section.title)
		for _, c := range section.cases {
			result := r.RunChatTest(ctx, c)
			if ctx.Err() != nil {
				return r.interrupted(out)
			}
			out.Results = append(out.Results, result)
		}
	}

	if err := r.RunEscalationDemo(ctx, plan.Escalation); err != nil {
		if isInterrupt(ctx, err) {
			return r.interrupted(out)
		}
		r.p.DemoFailed("Escalation", err)
	}

	if err := r.RunEmbeddingDemo(ctx, plan.Embedding); err != nil {
		if isInterrupt(ctx, err) {
			return r.interrupted(out)
		}
		r.p.DemoFailed("Embedding", err)
	}

	out.Passed, out.Failed = Summarize(out.Results)
	r.p.Section("TEST SUMMARY")
	r.p.Summary(out)
	r.p.Tips()

	log.Info().Int("passed", out.Passed).Int("failed", out.Failed).Msg("run finished")
	return out
}

func (r *Runner) interrupted(out Outcome) Outcome {
	out.Interrupted = true
	out.Passed, out.Failed = Summarize(out.Results)
	r.p.Interrupted()
	return out
}

func tracePayload(description string) meshcheck.DebugFn {
	return func(label, payload string) {
		log.Trace().Str("case", description).Str("label", label).Str("payload", payload).Msg("chat payload")
	}
}

func isInterrupt(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
