/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package generate drives the generation phase: every input image is
// submitted to every generation model, and whichever render each model
// returns is persisted under its deterministic artifact path.
package generate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/chainguard-dev/clog"

	"chainguard.dev/planbench/pipeline/imaging"
	"chainguard.dev/planbench/pipeline/normalize"
	"chainguard.dev/planbench/pipeline/prompts"
	"chainguard.dev/planbench/pipeline/provider"
	"chainguard.dev/planbench/pipeline/scheduler"
	"chainguard.dev/planbench/pipeline/store"
	"chainguard.dev/planbench/pipeline/task"
)

// DefaultWorkers is the generation pool width. Wider than evaluation because
// each task issues a single call.
const DefaultWorkers = 5

// Config carries the generation phase settings.
type Config struct {
	// InputDir holds the source floor-plan images.
	InputDir string
	// OutputDir receives one render per (input, model) pair.
	OutputDir string
	// Models are the generation model identifiers to fan out over.
	Models []string
	// Workers bounds concurrent provider calls. Defaults to DefaultWorkers.
	Workers int
}

// Metadata is the run record written next to each generated render.
type Metadata struct {
	Model            string  `json:"model"`
	InputFile        string  `json:"input_file"`
	LatencySeconds   float64 `json:"latency_seconds"`
	PromptTokens     int64   `json:"prompt_tokens,omitempty"`
	CompletionTokens int64   `json:"completion_tokens,omitempty"`
}

// Runner executes the generation phase.
type Runner struct {
	client *provider.Client
	cfg    Config
}

// New builds a Runner.
func New(client *provider.Client, cfg Config) (*Runner, error) {
	if len(cfg.Models) == 0 {
		return nil, errors.New("generate: at least one model is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Runner{client: client, cfg: cfg}, nil
}

// Run enumerates and executes all generation tasks, returning the final
// tally. Individual task failures never abort the run.
func (r *Runner) Run(ctx context.Context) (scheduler.Outcome, error) {
	log := clog.FromContext(ctx)

	inputs, err := store.ListImages(r.cfg.InputDir)
	if err != nil {
		return scheduler.Outcome{}, fmt.Errorf("listing inputs: %w", err)
	}

	tasks := task.EnumerateGeneration(inputs, r.cfg.Models)
	log.With("inputs", len(inputs)).
		With("models", len(r.cfg.Models)).
		With("tasks", len(tasks)).
		Info("Starting generation run")

	out := scheduler.Run(ctx, r.cfg.Workers, tasks, r.process)

	log.With("succeeded", out.Succeeded).
		With("failed", out.Failed).
		Info("Generation run complete")
	return out, nil
}

// process handles one task end to end. All failures are reduced to an error
// at this boundary; the scheduler only tallies them.
func (r *Runner) process(ctx context.Context, t task.Task) error {
	artifact := task.GenerationArtifact(r.cfg.OutputDir, t.InputFile, t.Model)
	log := clog.FromContext(ctx).With("artifact", filepath.Base(artifact))

	if store.Exists(artifact) {
		log.Info("Skipping, artifact already exists")
		return nil
	}

	input, err := imaging.ForGeneration(filepath.Join(r.cfg.InputDir, t.InputFile))
	if err != nil {
		log.With("error", err).Error("Failed to encode input image")
		return err
	}

	ex, err := r.client.Generate(ctx, t.Model, prompts.Generation, input)
	if err != nil {
		log.With("error", err).Error("Generation call failed")
		return err
	}

	payload, err := normalize.LocateImage(ex.Raw)
	if err != nil {
		// A missing image is the provider's content decision, not a
		// transient fault; it is reported and never retried.
		log.With("error", err).Warn("No image in provider response")
		return err
	}

	data := payload.Inline
	if payload.URL != "" {
		if data, err = r.client.FetchImage(ctx, payload.URL); err != nil {
			log.With("error", err).Error("Failed to download render")
			return err
		}
	}

	if err := store.WriteBytes(artifact, data); err != nil {
		log.With("error", err).Error("Failed to persist render")
		return err
	}
	if err := store.WriteJSON(task.MetadataSidecar(artifact), Metadata{
		Model:            t.Model,
		InputFile:        t.InputFile,
		LatencySeconds:   ex.Latency.Seconds(),
		PromptTokens:     ex.PromptTokens,
		CompletionTokens: ex.CompletionTokens,
	}); err != nil {
		log.With("error", err).Error("Failed to persist run metadata")
		return err
	}

	log.With("latency", ex.Latency).Info("Render persisted")
	return nil
}
