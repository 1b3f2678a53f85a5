/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the planbench CLI: a two-phase pipeline that fans
// floor-plan images out to remote generation models and then scores each
// persisted render with remote judge models.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"chainguard.dev/planbench/pipeline/provider"
)

var rootCmd = &cobra.Command{
	Use:   "planbench",
	Short: "Benchmark 2D-to-3D floor plan conversion across image models",
	Long: `planbench drives a two-phase benchmark over the OpenRouter API.

The generate phase submits every input floor plan to every generation model
and persists whichever render each model returns. The evaluate phase
re-submits each render, paired with its source plan, to judge models that
score the conversion against a fixed rubric.

Both phases are idempotent: work whose artifact already exists on disk is
skipped, so an interrupted run can simply be re-run.

Credentials come from the environment:
  OPENROUTER_API_KEY   API key (required)
  OPENROUTER_REFERER   optional attribution referer header
  OPENROUTER_TITLE     optional attribution title header`,
	SilenceUsage: true,
}

// providerEnv is the process-start provider configuration. The key is
// injected from the environment, never stored in source.
type providerEnv struct {
	APIKey  string `env:"OPENROUTER_API_KEY,required"`
	Referer string `env:"OPENROUTER_REFERER"`
	Title   string `env:"OPENROUTER_TITLE"`
}

func newProviderClient(ctx context.Context) (*provider.Client, error) {
	var env providerEnv
	if err := envconfig.Process(ctx, &env); err != nil {
		return nil, err
	}
	return provider.New(provider.Config{
		APIKey:  env.APIKey,
		Referer: env.Referer,
		Title:   env.Title,
	})
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		clog.FatalContextf(ctx, "%v", err)
	}
}
