package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging sends logs to w, which is stderr in production; stdout
// carries the report.
func setupLogging(w io.Writer, level string, debug, noColor bool) {
	zerolog.SetGlobalLevel(parseLevel(level, debug))

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: noColor}).
		With().
		Timestamp().
		Logger()
}

// parseLevel maps LITELLM_LOG_LEVEL to a zerolog level; debug forces
// at least debug, so "trace" survives it.
func parseLevel(level string, debug bool) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if debug && lvl > zerolog.DebugLevel {
		return zerolog.DebugLevel
	}
	return lvl
}
