// Package diag traces request and response payloads for troubleshooting.
// Payloads go to an optional callback and, when enabled, to the debug log.
package diag

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

type rawJSONer interface {
	RawJSON() string
}

func LogJSON(enabled bool, fn func(label, payload string), label string, value any) {
	if !enabled && fn == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		LogText(enabled, fn, label, "<marshal error: "+err.Error()+">")
		return
	}
	LogText(enabled, fn, label, string(data))
}

func LogText(enabled bool, fn func(label, payload string), label string, text string) {
	if fn != nil {
		fn(label, text)
	}
	if !enabled {
		return
	}
	log.Debug().Str("label", label).Msg(text)
}

// LogError prefers the raw response body carried by API errors over the
// formatted message.
func LogError(enabled bool, fn func(label, payload string), label string, err error) {
	if err == nil {
		return
	}
	payload := err.Error()
	var raw rawJSONer
	if errors.As(err, &raw) {
		if body := strings.TrimSpace(raw.RawJSON()); body != "" {
			payload = body
		}
	}
	LogText(enabled, fn, label, payload)
}
