package embedding

import (
	"fmt"
	"strings"
)

type Request struct {
	Model      string   `json:"model,omitempty"`
	Input      []string `json:"input"`
	Dimensions *int     `json:"dimensions,omitempty"`
	User       string   `json:"user,omitempty"`
}

type Data struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type Result struct {
	Model string `json:"model"`
	Data  []Data `json:"data"`
	Usage Usage  `json:"usage"`
}

// Dimension is the length of the first returned vector, or 0 when empty.
func (r *Result) Dimension() int {
	if r == nil || len(r.Data) == 0 {
		return 0
	}
	return len(r.Data[0].Embedding)
}

// Count is the number of returned vectors.
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Data)
}

type Option func(*Request)

func BuildRequest(opts ...Option) (*Request, error) {
	req := &Request{}
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(req.Input) == 0 {
		return nil, fmt.Errorf("input is required")
	}
	for i, in := range req.Input {
		if strings.TrimSpace(in) == "" {
			return nil, fmt.Errorf("input[%d] is empty", i)
		}
	}
	if req.Dimensions != nil && *req.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", *req.Dimensions)
	}
	return req, nil
}

func Embedding(model string, texts ...string) Option {
	return func(r *Request) {
		r.Model = model
		r.Input = append(r.Input, texts...)
	}
}

func WithDimensions(n int) Option {
	return func(r *Request) { r.Dimensions = &n }
}

func WithUser(user string) Option {
	return func(r *Request) { r.User = user }
}
