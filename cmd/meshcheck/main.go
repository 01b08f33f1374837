// Command meshcheck runs the model mesh diagnostic suite against a
// LiteLLM-compatible proxy and exits with a status describing the run.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quailyquaily/meshcheck"
	"github.com/quailyquaily/meshcheck/meshtest"
)

const (
	exitOK          = 0
	exitFailed      = 1
	exitFatal       = 2
	exitInterrupted = 130

	dotEnvPath = ".env"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr))
}

func run(stdout, stderr io.Writer) int {
	setupLogging(stderr, meshcheck.DefaultLogLevel, false, false)
	setupFailed := func(msg string, err error) int {
		log.Error().Err(err).Msg(msg)
		meshtest.NewPrinter(stdout, stderr, false).Fatal(err, "")
		return exitFatal
	}

	if err := loadDotEnv(dotEnvPath); err != nil {
		return setupFailed("cannot load environment file", err)
	}

	cfg, err := meshcheck.LoadConfig()
	if err != nil {
		return setupFailed("invalid configuration", err)
	}
	setupLogging(stderr, cfg.LogLevel, cfg.Debug, cfg.NoColor)

	plan := meshtest.DefaultPlan()
	if cfg.PlanFile != "" {
		plan, err = meshtest.LoadPlan(cfg.PlanFile)
		if err != nil {
			return setupFailed("cannot load test plan", err)
		}
		log.Info().Str("plan", cfg.PlanFile).Int("cases", plan.Total()).Msg("loaded test plan")
	}

	client, err := meshcheck.New(cfg)
	if err != nil {
		return setupFailed("cannot create client", err)
	}
	log.Debug().Interface("client", client.GetConfig()).Msg("client ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := meshtest.New(client, meshtest.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Out:     stdout,
		ErrOut:  stderr,
		Color:   meshtest.ColorEnabled(cfg.NoColor),
		Trace:   parseLevel(cfg.LogLevel, cfg.Debug) == zerolog.TraceLevel,
	})
	return exitCode(runner.Run(ctx, plan))
}

// loadDotEnv applies path to the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func exitCode(o meshtest.Outcome) int {
	switch {
	case o.Fatal != nil:
		return exitFatal
	case o.Interrupted:
		return exitInterrupted
	case o.Failed > 0:
		return exitFailed
	default:
		return exitOK
	}
}
