package meshtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quailyquaily/meshcheck"
	"github.com/quailyquaily/meshcheck/chat"
	"github.com/quailyquaily/meshcheck/embedding"
)

type fakeService struct {
	chatFn  func(ctx context.Context, req *chat.Request) (*chat.Result, error)
	embedFn func(ctx context.Context, req *embedding.Request) (*embedding.Result, error)

	chatModels  []string
	embedModels []string
	maxTokens   []int
}

func (f *fakeService) Chat(ctx context.Context, opts ...meshcheck.ChatOption) (*meshcheck.ChatResult, error) {
	req, err := chat.BuildRequest(opts...)
	if err != nil {
		return nil, err
	}
	f.chatModels = append(f.chatModels, req.Model)
	if req.Options.MaxTokens != nil {
		f.maxTokens = append(f.maxTokens, *req.Options.MaxTokens)
	}
	if f.chatFn == nil {
		return &chat.Result{Text: "reply from " + req.Model, Model: req.Model}, nil
	}
	return f.chatFn(ctx, req)
}

func (f *fakeService) Embedding(ctx context.Context, opts ...meshcheck.EmbeddingOption) (*meshcheck.EmbeddingResult, error) {
	req, err := embedding.BuildRequest(opts...)
	if err != nil {
		return nil, err
	}
	f.embedModels = append(f.embedModels, req.Model)
	if f.embedFn == nil {
		return vectors(len(req.Input), 8), nil
	}
	return f.embedFn(ctx, req)
}

func vectors(n, dim int) *embedding.Result {
	out := &embedding.Result{}
	for i := 0; i < n; i++ {
		out.Data = append(out.Data, embedding.Data{Index: i, Embedding: make([]float64, dim)})
	}
	return out
}

func newTestRunner(svc Service) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r := New(svc, Config{
		BaseURL: "http://localhost:4000",
		APIKey:  "sk-akshat-homelab-key-change-this",
		Out:     &out,
		ErrOut:  &errOut,
	})
	return r, &out, &errOut
}

func TestRunAllPass(t *testing.T) {
	svc := &fakeService{}
	r, out, _ := newTestRunner(svc)
	plan := DefaultPlan()

	outcome := r.Run(context.Background(), plan)

	require.Len(t, outcome.Results, plan.Total())
	assert.Equal(t, plan.Total(), outcome.Passed)
	assert.Equal(t, 0, outcome.Failed)
	assert.True(t, outcome.AllPassed())
	assert.False(t, outcome.Interrupted)
	assert.NoError(t, outcome.Fatal)

	text := out.String()
	assert.Contains(t, text, "🌐 Base URL: http://localhost:4000")
	assert.Contains(t, text, "🔑 API Key: sk-akshat-homelab-ke...")
	assert.Contains(t, text, "AUTOMATIC ROUTING TESTS")
	assert.Contains(t, text, "SPECIFIC MODEL TESTS")
	assert.Contains(t, text, "USER ESCALATION PATTERN")
	assert.Contains(t, text, "EMBEDDINGS")
	assert.Contains(t, text, fmt.Sprintf("✅ Passed: %d/%d", plan.Total(), plan.Total()))
	assert.Contains(t, text, "❌ Failed: 0/9")
	assert.Contains(t, text, "🎉 All tests passed! Your model mesh is working perfectly.")
	assert.Contains(t, text, "💡 Tips:")
	assert.NotContains(t, text, "Some tests failed")

	wantModels := []string{
		"gpt-3.5-turbo", "code", "vision", "fast", "balanced",
		"ultrafast/chat", "heavy/code", "cloud/claude-sonnet", "cloud/gpt-4o-mini",
		"fast/general", "cloud/claude-opus",
	}
	assert.Equal(t, wantModels, svc.chatModels)
	assert.Equal(t, []string{"embeddings/fast", "embeddings/large"}, svc.embedModels)
	assert.Equal(t, DefaultMaxTokens, svc.maxTokens[0])
	assert.Equal(t, DefaultEscalationMaxTokens, svc.maxTokens[len(svc.maxTokens)-1])
}

func TestRunOneAliasFails(t *testing.T) {
	svc := &fakeService{
		chatFn: func(_ context.Context, req *chat.Request) (*chat.Result, error) {
			if req.Model == "vision" {
				return nil, errors.New("Invalid model name passed in model=vision")
			}
			return &chat.Result{Text: "ok"}, nil
		},
	}
	r, out, _ := newTestRunner(svc)
	plan := DefaultPlan()

	outcome := r.Run(context.Background(), plan)

	assert.Equal(t, plan.Total()-1, outcome.Passed)
	assert.Equal(t, 1, outcome.Failed)
	assert.False(t, outcome.AllPassed())

	var failed []TestResult
	for _, res := range outcome.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "Vision task (requires image)", failed[0].Description)

	text := out.String()
	assert.Contains(t, text, "🧪 Testing: Vision task (requires image)\n   Model: vision\n   Prompt: Describe what you see...\n   ❌ Error: Invalid model name passed in model=vision")
	assert.Contains(t, text, "   - Vision task (requires image) (vision): Invalid model name passed in model=vision")
	assert.Contains(t, text, "❌ Failed: 1/9")
	assert.Contains(t, text, "⚠️  Some tests failed. Check the logs above for details.")
}

func TestRunChatTestTruncatesResponse(t *testing.T) {
	long := strings.Repeat("a", 100) + strings.Repeat("b", 400)
	svc := &fakeService{
		chatFn: func(context.Context, *chat.Request) (*chat.Result, error) {
			return &chat.Result{Text: long}, nil
		},
	}
	r, out, _ := newTestRunner(svc)

	res := r.RunChatTest(context.Background(), Case{Model: "fast", Prompt: "What is 2+2?", Description: "Ultra-fast query"})
	require.True(t, res.Success)

	text := out.String()
	assert.Contains(t, text, "): "+strings.Repeat("a", 100)+"...\n")
	assert.NotContains(t, text, strings.Repeat("a", 100)+"b")
}

func TestRunChatTestShortResponse(t *testing.T) {
	svc := &fakeService{
		chatFn: func(context.Context, *chat.Request) (*chat.Result, error) {
			return &chat.Result{Text: "4"}, nil
		},
	}
	r, out, _ := newTestRunner(svc)

	res := r.RunChatTest(context.Background(), Case{Model: "fast", Prompt: "What is 2+2?", Description: "Ultra-fast query"})
	require.True(t, res.Success)
	assert.Contains(t, out.String(), "): 4...\n")
	assert.Contains(t, out.String(), "   ✅ Response (")
}

func TestRunChatTestTreatsEmptyTextAsPass(t *testing.T) {
	svc := &fakeService{
		chatFn: func(context.Context, *chat.Request) (*chat.Result, error) {
			return &chat.Result{}, nil
		},
	}
	r, _, _ := newTestRunner(svc)

	res := r.RunChatTest(context.Background(), Case{Model: "fast", Prompt: "hi", Description: "d"})
	assert.True(t, res.Success)
}

func TestRunChatTestNilResultIsMalformed(t *testing.T) {
	svc := &fakeService{
		chatFn: func(context.Context, *chat.Request) (*chat.Result, error) {
			return nil, nil
		},
	}
	r, out, _ := newTestRunner(svc)

	res := r.RunChatTest(context.Background(), Case{Model: "fast", Prompt: "hi", Description: "d"})
	assert.False(t, res.Success)
	assert.Contains(t, out.String(), "malformed response")
}

func TestRunChatTestValidatesCase(t *testing.T) {
	cases := []Case{
		{Model: "", Prompt: "hi", Description: "no model"},
		{Model: "fast", Prompt: " ", Description: "no prompt"},
		{Model: "fast", Prompt: "hi", Description: "negative", MaxTokens: -1},
	}
	for _, c := range cases {
		t.Run(c.Description, func(t *testing.T) {
			svc := &fakeService{}
			r, out, _ := newTestRunner(svc)

			res := r.RunChatTest(context.Background(), c)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Err)
			assert.Empty(t, svc.chatModels, "service must not be called")
			assert.Contains(t, out.String(), "❌ Error:")
		})
	}
}

func TestRunChatTestPassesCaseOptions(t *testing.T) {
	var got *chat.Request
	svc := &fakeService{
		chatFn: func(_ context.Context, req *chat.Request) (*chat.Result, error) {
			got = req
			return &chat.Result{Text: "ok"}, nil
		},
	}
	r, _, _ := newTestRunner(svc)

	c := Case{Model: "fast", Prompt: "hi", Description: "d", MaxTokens: 32, Options: map[string]any{"seed": 1}}
	res := r.RunChatTest(context.Background(), c)
	require.True(t, res.Success)
	require.NotNil(t, got)
	assert.Equal(t, 32, *got.Options.MaxTokens)
	assert.Equal(t, 1, got.Options.OpenAI["seed"])
	require.Len(t, got.Messages, 1)
	assert.Equal(t, chat.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[0].Content)
}

func TestRunEscalationDemo(t *testing.T) {
	long := strings.Repeat("x", 200) + strings.Repeat("y", 50)
	svc := &fakeService{
		chatFn: func(context.Context, *chat.Request) (*chat.Result, error) {
			return &chat.Result{Text: long}, nil
		},
	}
	r, out, _ := newTestRunner(svc)

	err := r.RunEscalationDemo(context.Background(), EscalationPlan{})
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultFastModel, DefaultBestModel}, svc.chatModels)

	text := out.String()
	assert.Contains(t, text, "🚀 Step 1: Try fast model first\n   Model: fast/general")
	assert.Contains(t, text, "⬆️  Step 2: Escalate to best model\n   Model: cloud/claude-opus")
	assert.Equal(t, 2, strings.Count(text, "   📝 Response: "+strings.Repeat("x", 200)+"...\n"))
	assert.Equal(t, 2, strings.Count(text, "   ⏱️  Time: "))
	assert.NotContains(t, text, strings.Repeat("x", 200)+"y")
}

func TestRunEscalationDemoStopsOnFirstError(t *testing.T) {
	boom := errors.New("fast tier unavailable")
	svc := &fakeService{
		chatFn: func(context.Context, *chat.Request) (*chat.Result, error) {
			return nil, boom
		},
	}
	r, out, _ := newTestRunner(svc)

	err := r.RunEscalationDemo(context.Background(), EscalationPlan{})
	assert.Same(t, boom, err)
	assert.Equal(t, []string{DefaultFastModel}, svc.chatModels)
	assert.NotContains(t, out.String(), "Step 2")
}

func TestRunContinuesAfterEscalationFailure(t *testing.T) {
	svc := &fakeService{
		chatFn: func(_ context.Context, req *chat.Request) (*chat.Result, error) {
			if req.Model == DefaultFastModel {
				return nil, errors.New("fast tier unavailable")
			}
			return &chat.Result{Text: "ok"}, nil
		},
	}
	r, out, _ := newTestRunner(svc)

	outcome := r.Run(context.Background(), DefaultPlan())

	assert.True(t, outcome.AllPassed(), "demo failures are not tallied")
	text := out.String()
	assert.Contains(t, text, "❌ Escalation test failed: fast tier unavailable")
	assert.Contains(t, text, "EMBEDDINGS")
	assert.Contains(t, text, "TEST SUMMARY")
	assert.Len(t, svc.embedModels, 2)
}

func TestRunEmbeddingDemoReportsDimensionAndCount(t *testing.T) {
	svc := &fakeService{
		embedFn: func(_ context.Context, req *embedding.Request) (*embedding.Result, error) {
			return vectors(len(req.Input), 768), nil
		},
	}
	r, out, _ := newTestRunner(svc)

	plan := EmbeddingPlan{Texts: []string{"a", "b", "c"}, Models: []string{"embeddings/fast"}}
	require.NoError(t, r.RunEmbeddingDemo(context.Background(), plan))

	text := out.String()
	assert.Contains(t, text, "📊 Testing: embeddings/fast\n   ✅ Dimension: 768\n   📦 Embeddings: 3 vectors\n")
}

func TestRunEmbeddingDemoIsolatesFailures(t *testing.T) {
	svc := &fakeService{
		embedFn: func(_ context.Context, req *embedding.Request) (*embedding.Result, error) {
			if req.Model == "embeddings/fast" {
				return nil, errors.New("embedding backend down")
			}
			return vectors(len(req.Input), 1024), nil
		},
	}
	r, out, _ := newTestRunner(svc)

	require.NoError(t, r.RunEmbeddingDemo(context.Background(), EmbeddingPlan{}))
	assert.Equal(t, []string{"embeddings/fast", "embeddings/large"}, svc.embedModels)

	text := out.String()
	assert.Contains(t, text, "📊 Testing: embeddings/fast\n   ❌ Error: embedding backend down")
	assert.Contains(t, text, "📊 Testing: embeddings/large\n   ✅ Dimension: 1024\n   📦 Embeddings: 2 vectors")
}

func TestRunEmbeddingDemoEmptyResult(t *testing.T) {
	svc := &fakeService{
		embedFn: func(context.Context, *embedding.Request) (*embedding.Result, error) {
			return &embedding.Result{}, nil
		},
	}
	r, out, _ := newTestRunner(svc)

	require.NoError(t, r.RunEmbeddingDemo(context.Background(), EmbeddingPlan{Models: []string{"embeddings/fast"}}))
	assert.Contains(t, out.String(), "malformed response")
}

func TestRunInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &fakeService{
		chatFn: func(ctx context.Context, req *chat.Request) (*chat.Result, error) {
			if req.Model == "vision" {
				cancel()
				return nil, ctx.Err()
			}
			return &chat.Result{Text: "ok"}, nil
		},
	}
	r, out, errOut := newTestRunner(svc)

	outcome := r.Run(ctx, DefaultPlan())

	assert.True(t, outcome.Interrupted)
	assert.NoError(t, outcome.Fatal)
	assert.Len(t, outcome.Results, 2)
	assert.False(t, outcome.AllPassed())
	assert.Empty(t, svc.embedModels)

	text := out.String()
	assert.Contains(t, text, "⏹️  Test interrupted by user")
	assert.NotContains(t, text, "Fatal error")
	assert.NotContains(t, text, "TEST SUMMARY")
	assert.NotContains(t, text, "Vision task (requires image)\n   Model: vision\n   Prompt: Describe what you see...\n   ❌")
	assert.Empty(t, errOut.String())
}

func TestRunInterruptedDuringEmbeddings(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &fakeService{
		embedFn: func(ctx context.Context, req *embedding.Request) (*embedding.Result, error) {
			cancel()
			return nil, ctx.Err()
		},
	}
	r, out, _ := newTestRunner(svc)

	outcome := r.Run(ctx, DefaultPlan())

	assert.True(t, outcome.Interrupted)
	assert.Len(t, outcome.Results, 9)
	assert.Equal(t, []string{"embeddings/fast"}, svc.embedModels)
	assert.Contains(t, out.String(), "⏹️  Test interrupted by user")
	assert.NotContains(t, out.String(), "Embedding test failed")
}

func TestRunRecoversPanic(t *testing.T) {
	svc := &fakeService{
		chatFn: func(_ context.Context, req *chat.Request) (*chat.Result, error) {
			if req.Model == "code" {
				panic("unexpected response shape")
			}
			return &chat.Result{Text: "ok"}, nil
		},
	}
	r, out, errOut := newTestRunner(svc)

	outcome := r.Run(context.Background(), DefaultPlan())

	require.Error(t, outcome.Fatal)
	assert.Contains(t, outcome.Fatal.Error(), "unexpected response shape")
	assert.Contains(t, outcome.FatalTrace, "goroutine")
	assert.False(t, outcome.Interrupted)
	assert.Len(t, outcome.Results, 1)
	assert.False(t, outcome.AllPassed())

	assert.Contains(t, out.String(), "❌ Fatal error: unexpected response shape")
	assert.NotContains(t, out.String(), "interrupted")
	assert.Contains(t, errOut.String(), "goroutine")
}

func TestRunAgainstMeshServer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			var req goopenai.ChatCompletionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if req.Model == "heavy/code" {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "model heavy/code not found", "type": "invalid_request_error"},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(goopenai.ChatCompletionResponse{
				Model: "local/" + req.Model,
				Choices: []goopenai.ChatCompletionChoice{{
					Message:      goopenai.ChatCompletionMessage{Role: "assistant", Content: "served " + req.Model},
					FinishReason: goopenai.FinishReasonStop,
				}},
			})
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			var req goopenai.EmbeddingRequestStrings
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			resp := goopenai.EmbeddingResponse{Object: "list"}
			for i := range req.Input {
				resp.Data = append(resp.Data, goopenai.Embedding{Object: "embedding", Index: i, Embedding: make([]float32, 384)})
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client, err := meshcheck.New(meshcheck.Config{BaseURL: ts.URL, APIKey: "sk-test", MaxRetries: 0})
	require.NoError(t, err)

	var out bytes.Buffer
	r := New(client, Config{BaseURL: ts.URL, APIKey: "sk-test", Out: &out, ErrOut: &bytes.Buffer{}})
	plan := DefaultPlan()

	outcome := r.Run(context.Background(), plan)

	assert.Equal(t, plan.Total()-1, outcome.Passed)
	assert.Equal(t, 1, outcome.Failed)
	text := out.String()
	assert.Contains(t, text, "🧪 Testing: Heavy code model")
	assert.Contains(t, text, "model heavy/code not found")
	assert.Contains(t, text, "served cloud/claude-opus")
	assert.Contains(t, text, "✅ Dimension: 384")
	assert.Contains(t, text, "📦 Embeddings: 2 vectors")
}

func TestRunChatTestSendsSamplingOptions(t *testing.T) {
	var got *chat.Request
	svc := &fakeService{
		chatFn: func(_ context.Context, req *chat.Request) (*chat.Result, error) {
			got = req
			return &chat.Result{Text: "ok"}, nil
		},
	}
	r, _, _ := newTestRunner(svc)

	temp, topP := 0.3, 0.8
	c := Case{
		Model:       "balanced",
		Prompt:      "Explain neural networks",
		Description: "Balanced quality/speed",
		System:      "Answer in one sentence.",
		Temperature: &temp,
		TopP:        &topP,
		Stop:        []string{"END"},
		User:        "meshcheck",
	}
	res := r.RunChatTest(context.Background(), c)
	require.True(t, res.Success, res.Err)
	require.NotNil(t, got)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, chat.RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "Answer in one sentence.", got.Messages[0].Content)
	assert.Equal(t, chat.RoleUser, got.Messages[1].Role)
	require.NotNil(t, got.Options.Temperature)
	assert.Equal(t, 0.3, *got.Options.Temperature)
	require.NotNil(t, got.Options.TopP)
	assert.Equal(t, 0.8, *got.Options.TopP)
	assert.Equal(t, []string{"END"}, got.Options.Stop)
	require.NotNil(t, got.Options.User)
	assert.Equal(t, "meshcheck", *got.Options.User)
	assert.Nil(t, got.Options.DebugFn)
}

func TestRunChatTestRejectsBadSampling(t *testing.T) {
	hot, zero := 2.5, 0.0
	cases := []Case{
		{Model: "fast", Prompt: "hi", Description: "hot", Temperature: &hot},
		{Model: "fast", Prompt: "hi", Description: "zero top_p", TopP: &zero},
		{Model: "fast", Prompt: "hi", Description: "blank stop", Stop: []string{""}},
	}
	for _, c := range cases {
		t.Run(c.Description, func(t *testing.T) {
			svc := &fakeService{}
			r, _, _ := newTestRunner(svc)

			res := r.RunChatTest(context.Background(), c)
			assert.False(t, res.Success)
			assert.Empty(t, svc.chatModels)
		})
	}
}

func TestRunEmbeddingDemoSendsDimensionsAndUser(t *testing.T) {
	var got []*embedding.Request
	svc := &fakeService{
		embedFn: func(_ context.Context, req *embedding.Request) (*embedding.Result, error) {
			got = append(got, req)
			return vectors(len(req.Input), *req.Dimensions), nil
		},
	}
	r, out, _ := newTestRunner(svc)

	plan := EmbeddingPlan{Models: []string{"embeddings/large"}, Dimensions: 256, User: "meshcheck"}
	require.NoError(t, r.RunEmbeddingDemo(context.Background(), plan))

	require.Len(t, got, 1)
	require.NotNil(t, got[0].Dimensions)
	assert.Equal(t, 256, *got[0].Dimensions)
	assert.Equal(t, "meshcheck", got[0].User)
	assert.Len(t, got[0].Input, 2)
	assert.Contains(t, out.String(), "✅ Dimension: 256")
}

func TestRunEmbeddingDemoOmitsDimensionsByDefault(t *testing.T) {
	var got *embedding.Request
	svc := &fakeService{
		embedFn: func(_ context.Context, req *embedding.Request) (*embedding.Result, error) {
			got = req
			return vectors(len(req.Input), 8), nil
		},
	}
	r, _, _ := newTestRunner(svc)

	require.NoError(t, r.RunEmbeddingDemo(context.Background(), EmbeddingPlan{Models: []string{"embeddings/fast"}}))
	require.NotNil(t, got)
	assert.Nil(t, got.Dimensions)
	assert.Empty(t, got.User)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func TestRunChatTestTraceTagsPayloads(t *testing.T) {
	logs := captureLogs(t)
	svc := &fakeService{
		chatFn: func(_ context.Context, req *chat.Request) (*chat.Result, error) {
			require.NotNil(t, req.Options.DebugFn)
			req.Options.DebugFn("openai.chat.request", `{"model":"fast"}`)
			return &chat.Result{Text: "4"}, nil
		},
	}
	var out bytes.Buffer
	r := New(svc, Config{Out: &out, ErrOut: &bytes.Buffer{}, Trace: true})

	res := r.RunChatTest(context.Background(), Case{Model: "fast", Prompt: "What is 2+2?", Description: "Ultra-fast query"})
	require.True(t, res.Success)

	text := logs.String()
	assert.Contains(t, text, `"case":"Ultra-fast query"`)
	assert.Contains(t, text, `"label":"openai.chat.request"`)
	assert.Contains(t, text, `"message":"chat payload"`)
}

func TestRunChatTestTraceThroughClient(t *testing.T) {
	logs := captureLogs(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(goopenai.ChatCompletionResponse{
			Choices: []goopenai.ChatCompletionChoice{{
				Message: goopenai.ChatCompletionMessage{Role: "assistant", Content: "Hi!"},
			}},
		})
	}))
	defer ts.Close()

	client, err := meshcheck.New(meshcheck.Config{BaseURL: ts.URL, APIKey: "sk-test"})
	require.NoError(t, err)
	r := New(client, Config{Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}, Trace: true})

	res := r.RunChatTest(context.Background(), Case{Model: "ultrafast/chat", Prompt: "Hi there!", Description: "Ultra-fast local"})
	require.True(t, res.Success, res.Err)

	text := logs.String()
	assert.Contains(t, text, `"label":"openai.chat.request"`)
	assert.Contains(t, text, `"label":"openai.chat.response"`)
	assert.Equal(t, 2, strings.Count(text, `"case":"Ultra-fast local"`))
}

func TestRunEmbeddingDemoEmptyPlanUsesDefaults(t *testing.T) {
	var inputs [][]string
	svc := &fakeService{
		embedFn: func(_ context.Context, req *embedding.Request) (*embedding.Result, error) {
			inputs = append(inputs, req.Input)
			return vectors(len(req.Input), 4), nil
		},
	}
	r, _, _ := newTestRunner(svc)

	require.NoError(t, r.RunEmbeddingDemo(context.Background(), EmbeddingPlan{}))
	assert.Equal(t, []string{"embeddings/fast", "embeddings/large"}, svc.embedModels)
	require.Len(t, inputs, 2)
	assert.Equal(t, "The quick brown fox jumps over the lazy dog", inputs[0][0])
}
