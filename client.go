package meshcheck

import (
	"context"
	"fmt"

	"github.com/quailyquaily/meshcheck/chat"
	"github.com/quailyquaily/meshcheck/embedding"
	"github.com/quailyquaily/meshcheck/internal/httputil"
	"github.com/quailyquaily/meshcheck/providers/openai"
)

// ErrMalformedResponse is returned when a successful response lacks a
// required field.
var ErrMalformedResponse = openai.ErrMalformedResponse

// Client talks to an OpenAI-compatible model mesh.
type Client struct {
	cfg      Config
	provider *openai.Provider
}

func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := openai.New(openai.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		HTTPClient: httputil.NewClient(cfg.Timeout),
		MaxRetries: cfg.MaxRetries,
		Debug:      cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &Client{cfg: cfg, provider: p}, nil
}

func (c *Client) Chat(ctx context.Context, opts ...chat.Option) (*chat.Result, error) {
	req, err := chat.BuildRequest(opts...)
	if err != nil {
		return nil, err
	}
	return c.provider.Chat(ctx, req)
}

func (c *Client) Embedding(ctx context.Context, opts ...embedding.Option) (*embedding.Result, error) {
	req, err := embedding.BuildRequest(opts...)
	if err != nil {
		return nil, err
	}
	return c.provider.Embed(ctx, req)
}
