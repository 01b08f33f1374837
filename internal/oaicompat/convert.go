// Package oaicompat maps chat requests onto the OpenAI SDK params used by
// OpenAI-compatible endpoints.
package oaicompat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lyricat/goutils/structs"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
	"github.com/quailyquaily/meshcheck/chat"
)

// ToMessages converts chat.Message slice to OpenAI SDK message params.
func ToMessages(input []chat.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(input))
	for i, m := range input {
		switch m.Role {
		case chat.RoleSystem:
			msg := openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{OfString: openai.String(m.Content)},
			}
			if m.Name != "" {
				msg.Name = openai.String(m.Name)
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfSystem: &msg})
		case chat.RoleUser:
			msg := openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{OfString: openai.String(m.Content)},
			}
			if m.Name != "" {
				msg.Name = openai.String(m.Name)
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfUser: &msg})
		case chat.RoleAssistant:
			msg := openai.ChatCompletionAssistantMessageParam{
				Content: openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(m.Content)},
			}
			if m.Name != "" {
				msg.Name = openai.String(m.Name)
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &msg})
		default:
			return nil, fmt.Errorf("message[%d]: unsupported role %q", i, m.Role)
		}
	}
	return out, nil
}

// ApplyOptions copies recognised extra request fields onto params.
// Unknown keys are ignored.
func ApplyOptions(params *openai.ChatCompletionNewParams, opts structs.JSONMap) {
	if params == nil || len(opts) == 0 {
		return
	}
	opt := &opts
	if opt.HasKey("n") {
		if n, ok := ToInt64((*opt)["n"]); ok && n > 0 {
			params.N = openai.Int(n)
		}
	}
	if opt.HasKey("seed") {
		if seed, ok := ToInt64((*opt)["seed"]); ok {
			params.Seed = openai.Int(seed)
		}
	}
	if opt.HasKey("store") {
		params.Store = openai.Bool(opt.GetBool("store"))
	}
	if opt.HasKey("reasoning_effort") {
		if val := strings.TrimSpace(opt.GetString("reasoning_effort")); val != "" {
			params.ReasoningEffort = shared.ReasoningEffort(val)
		}
	}
	if opt.HasKey("service_tier") {
		if val := strings.TrimSpace(opt.GetString("service_tier")); val != "" {
			params.ServiceTier = openai.ChatCompletionNewParamsServiceTier(val)
		}
	}
	if opt.HasKey("metadata") {
		if meta := ParseStringMap((*opt)["metadata"]); len(meta) > 0 {
			params.Metadata = shared.Metadata(meta)
		}
	}
}

// ParseStringMap extracts a map[string]string from a raw option value.
func ParseStringMap(value any) map[string]string {
	out := map[string]string{}
	switch m := value.(type) {
	case map[string]any:
		for k, v := range m {
			out[k] = fmt.Sprint(v)
		}
	case map[string]string:
		for k, v := range m {
			out[k] = v
		}
	case structs.JSONMap:
		for k, v := range m {
			out[k] = fmt.Sprint(v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ToInt64 converts various numeric types to int64.
func ToInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		if val, err := v.Int64(); err == nil {
			return val, true
		}
	case string:
		if val, err := strconv.ParseInt(v, 10, 64); err == nil {
			return val, true
		}
	}
	return 0, false
}
