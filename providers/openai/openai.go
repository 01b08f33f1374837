package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/quailyquaily/meshcheck/chat"
	"github.com/quailyquaily/meshcheck/embedding"
	"github.com/quailyquaily/meshcheck/internal/diag"
	"github.com/quailyquaily/meshcheck/internal/oaicompat"
	"github.com/tidwall/gjson"
)

// ErrMalformedResponse reports a 2xx response that lacks a field the caller
// depends on.
var ErrMalformedResponse = errors.New("malformed response")

type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// MaxRetries < 0 keeps the SDK default.
	MaxRetries int
	Debug      bool
}

type Provider struct {
	client openai.Client
	debug  bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	return &Provider{
		client: openai.NewClient(opts...),
		debug:  cfg.Debug,
	}, nil
}

func (p *Provider) Chat(ctx context.Context, req *chat.Request) (*chat.Result, error) {
	debugFn := req.Options.DebugFn
	params, err := buildParams(req)
	if err != nil {
		return nil, err
	}
	diag.LogJSON(p.debug, debugFn, "openai.chat.request", params)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		diag.LogError(p.debug, debugFn, "openai.chat.response", err)
		return nil, err
	}
	raw := resp.RawJSON()
	diag.LogText(p.debug, debugFn, "openai.chat.response", raw)

	if err := validateChatResponse(raw); err != nil {
		return nil, fmt.Errorf("model %q: %w", params.Model, err)
	}
	return toResult(resp), nil
}

func (p *Provider) Embed(ctx context.Context, req *embedding.Request) (*embedding.Result, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(req.Model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: append([]string{}, req.Input...),
		},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if req.Dimensions != nil {
		params.Dimensions = openai.Int(int64(*req.Dimensions))
	}
	if req.User != "" {
		params.User = openai.String(req.User)
	}
	diag.LogJSON(p.debug, nil, "openai.embedding.request", params)

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		diag.LogError(p.debug, nil, "openai.embedding.response", err)
		return nil, err
	}
	raw := resp.RawJSON()
	diag.LogText(p.debug, nil, "openai.embedding.response", raw)

	if err := validateEmbeddingResponse(raw); err != nil {
		return nil, fmt.Errorf("model %q: %w", req.Model, err)
	}
	return toEmbeddingResult(resp), nil
}

func buildParams(req *chat.Request) (openai.ChatCompletionNewParams, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("model is required")
	}

	messages, err := oaicompat.ToMessages(req.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("openai provider model %q: %w", model, err)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}

	if req.Options.Temperature != nil {
		params.Temperature = openai.Float(*req.Options.Temperature)
	}
	if req.Options.TopP != nil {
		params.TopP = openai.Float(*req.Options.TopP)
	}
	// Aliases are resolved by the router, so model-name heuristics for
	// max_completion_tokens do not apply here.
	if req.Options.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*req.Options.MaxTokens))
	}
	if len(req.Options.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: append([]string{}, req.Options.Stop...),
		}
	}
	if req.Options.User != nil {
		params.User = openai.String(*req.Options.User)
	}

	oaicompat.ApplyOptions(&params, req.Options.OpenAI)

	return params, nil
}

func validateChatResponse(raw string) error {
	if !gjson.Valid(raw) {
		return fmt.Errorf("%w: body is not valid JSON", ErrMalformedResponse)
	}
	choices := gjson.Get(raw, "choices")
	if !choices.IsArray() || len(choices.Array()) == 0 {
		return fmt.Errorf("%w: missing choices", ErrMalformedResponse)
	}
	content := gjson.Get(raw, "choices.0.message.content")
	if content.Type != gjson.String {
		return fmt.Errorf("%w: choices[0].message.content is not a string", ErrMalformedResponse)
	}
	return nil
}

func validateEmbeddingResponse(raw string) error {
	if !gjson.Valid(raw) {
		return fmt.Errorf("%w: body is not valid JSON", ErrMalformedResponse)
	}
	data := gjson.Get(raw, "data")
	if !data.IsArray() || len(data.Array()) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	for i, item := range data.Array() {
		vec := item.Get("embedding")
		if !vec.IsArray() || len(vec.Array()) == 0 {
			return fmt.Errorf("%w: data[%d].embedding is not a non-empty array", ErrMalformedResponse, i)
		}
	}
	return nil
}

func toResult(resp *openai.ChatCompletion) *chat.Result {
	if resp == nil {
		return &chat.Result{Warnings: []string{"openai response is nil"}}
	}
	out := &chat.Result{
		Model: resp.Model,
		Usage: chat.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
		Raw: resp,
	}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	if len(resp.Choices) > 1 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%d choices returned, using the first", len(resp.Choices)))
	}
	return out
}

func toEmbeddingResult(resp *openai.CreateEmbeddingResponse) *embedding.Result {
	out := &embedding.Result{
		Model: resp.Model,
		Data:  make([]embedding.Data, 0, len(resp.Data)),
		Usage: embedding.Usage{
			PromptTokens: int(resp.Usage.PromptTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}
	for _, d := range resp.Data {
		out.Data = append(out.Data, embedding.Data{
			Index:     int(d.Index),
			Embedding: append([]float64{}, d.Embedding...),
		})
	}
	return out
}
