package chat

import (
	"fmt"
	"strings"

	"github.com/lyricat/goutils/structs"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Name    string `json:"name,omitempty"`
}

type DebugFn func(label string, payload string)

type Options struct {
	Temperature *float64        `json:"temperature,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
	Stop        []string        `json:"stop,omitempty"`
	User        *string         `json:"user,omitempty"`
	OpenAI      structs.JSONMap `json:"openai_options,omitempty"`
	DebugFn     DebugFn         `json:"-"`
}

type Request struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
	Options  Options   `json:"options,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type Result struct {
	Text         string   `json:"text"`
	Model        string   `json:"model,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
	Usage        Usage    `json:"usage,omitempty"`
	Raw          any      `json:"raw,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

type Option func(*Request)

// BuildRequest applies opts and validates the resulting request.
// The model is checked by the provider, which may fall back to a default.
func BuildRequest(opts ...Option) (*Request, error) {
	req := &Request{}
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}
	for i, msg := range req.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			return nil, fmt.Errorf("message[%d]: content is required", i)
		}
		switch msg.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return nil, fmt.Errorf("message[%d]: unsupported role %q", i, msg.Role)
		}
	}
	if req.Options.MaxTokens != nil && *req.Options.MaxTokens <= 0 {
		return nil, fmt.Errorf("max_tokens must be positive, got %d", *req.Options.MaxTokens)
	}
	return req, nil
}

func WithModel(model string) Option {
	return func(r *Request) { r.Model = model }
}

func WithMessages(msgs ...Message) Option {
	return func(r *Request) { r.Messages = append(r.Messages, msgs...) }
}

func WithTemperature(v float64) Option {
	return func(r *Request) { r.Options.Temperature = &v }
}

func WithTopP(v float64) Option {
	return func(r *Request) { r.Options.TopP = &v }
}

func WithMaxTokens(v int) Option {
	return func(r *Request) { r.Options.MaxTokens = &v }
}

func WithStop(stop ...string) Option {
	return func(r *Request) { r.Options.Stop = append([]string{}, stop...) }
}

func WithUser(user string) Option {
	return func(r *Request) { r.Options.User = &user }
}

func WithOpenAIOptions(opts structs.JSONMap) Option {
	return func(r *Request) { r.Options.OpenAI = opts }
}

func WithDebugFn(fn DebugFn) Option {
	return func(r *Request) { r.Options.DebugFn = fn }
}

func System(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

func User(text string) Message {
	return Message{Role: RoleUser, Content: text}
}
