package meshcheck

import (
	"github.com/lyricat/goutils/structs"
	"github.com/quailyquaily/meshcheck/chat"
	"github.com/quailyquaily/meshcheck/embedding"
)

// Chat re-exports
type (
	ChatOption  = chat.Option
	ChatRequest = chat.Request
	ChatResult  = chat.Result
	ChatOptions = chat.Options
	Message     = chat.Message
	DebugFn     = chat.DebugFn
)

const (
	RoleSystem    = chat.RoleSystem
	RoleUser      = chat.RoleUser
	RoleAssistant = chat.RoleAssistant
)

func WithModel(model string) ChatOption       { return chat.WithModel(model) }
func WithMessages(msgs ...Message) ChatOption { return chat.WithMessages(msgs...) }
func WithTemperature(v float64) ChatOption    { return chat.WithTemperature(v) }
func WithTopP(v float64) ChatOption           { return chat.WithTopP(v) }
func WithMaxTokens(v int) ChatOption          { return chat.WithMaxTokens(v) }
func WithStop(stop ...string) ChatOption      { return chat.WithStop(stop...) }
func WithUser(user string) ChatOption         { return chat.WithUser(user) }
func WithDebugFn(fn DebugFn) ChatOption       { return chat.WithDebugFn(fn) }
func WithOpenAIOptions(opts structs.JSONMap) ChatOption {
	return chat.WithOpenAIOptions(opts)
}

func System(text string) Message { return chat.System(text) }
func User(text string) Message   { return chat.User(text) }

// Embedding re-exports
type (
	EmbeddingOption  = embedding.Option
	EmbeddingRequest = embedding.Request
	EmbeddingResult  = embedding.Result
)

func Embedding(model string, texts ...string) EmbeddingOption {
	return embedding.Embedding(model, texts...)
}
func WithDimensions(n int) EmbeddingOption          { return embedding.WithDimensions(n) }
func WithEmbeddingUser(user string) EmbeddingOption { return embedding.WithUser(user) }
