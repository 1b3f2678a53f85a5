/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package evaluate drives the evaluation phase: every recognized render is
// re-submitted, paired with its source plan, to each judge model, and the
// judge's rubric verdict is persisted as a JSON record.
package evaluate

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
	"chainguard.dev/planbench/pipeline/retry"
	"chainguard.dev/planbench/pipeline/scheduler"
	"chainguard.dev/planbench/pipeline/store"
	"chainguard.dev/planbench/pipeline/task"
)

// DefaultWorkers is the evaluation pool width. Narrower than generation:
// each render multiplies into one call per judge, and judge calls carry two
// images each.
const DefaultWorkers = 3

// Config carries the evaluation phase settings.
type Config struct {
	// InputDir holds the source floor-plan images.
	InputDir string
	// RendersDir holds the generation phase's output.
	RendersDir string
	// OutputDir receives verdict records, grouped per evaluated model.
	OutputDir string
	// Judges are the judge model identifiers.
	Judges []string
	// Workers bounds concurrent judge calls. Defaults to DefaultWorkers.
	Workers int
}

// Runner executes the evaluation phase.
type Runner struct {
	client *provider.Client
	cfg    Config
}

// New builds a Runner.
func New(client *provider.Client, cfg Config) (*Runner, error) {
	if len(cfg.Judges) == 0 {
		return nil, errors.New("evaluate: at least one judge is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Runner{client: client, cfg: cfg}, nil
}

// Run enumerates and executes all evaluation tasks, returning the final
// tally. Individual task failures never abort the run.
func (r *Runner) Run(ctx context.Context) (scheduler.Outcome, error) {
	log := clog.FromContext(ctx)

	inputs, err := store.ListImages(r.cfg.InputDir)
	if err != nil {
		return scheduler.Outcome{}, fmt.Errorf("listing inputs: %w", err)
	}
	renders, err := store.ListRenders(r.cfg.RendersDir)
	if err != nil {
		return scheduler.Outcome{}, fmt.Errorf("listing renders: %w", err)
	}

	tasks := task.EnumerateEvaluation(inputs, renders, r.cfg.Judges)
	log.With("renders", len(renders)).
		With("judges", len(r.cfg.Judges)).
		With("tasks", len(tasks)).
		Info("Starting evaluation run")

	out := scheduler.Run(ctx, r.cfg.Workers, tasks, r.process)

	log.With("succeeded", out.Succeeded).
		With("failed", out.Failed).
		Info("Evaluation run complete")
	return out, nil
}

// process handles one judge task. The retry loop spans the exchange plus
// verdict parsing: a malformed judge reply consumes an attempt just like a
// rate limit does, because the call has to be reissued either way.
func (r *Runner) process(ctx context.Context, t task.Task) error {
	artifact := task.EvaluationArtifact(r.cfg.OutputDir, t.Model, t.InputFile, t.Judge)
	log := clog.FromContext(ctx).With("artifact", filepath.Base(artifact)).
		With("judge", t.Judge).
		With("model", t.Model)

	if store.Exists(artifact) {
		log.Info("Skipping, verdict already exists")
		return nil
	}

	input, err := imaging.ForEvaluation(filepath.Join(r.cfg.InputDir, t.InputFile))
	if err != nil {
		log.With("error", err).Error("Failed to encode input image")
		return err
	}
	render, err := imaging.ForEvaluation(filepath.Join(r.cfg.RendersDir, t.GeneratedFile))
	if err != nil {
		log.With("error", err).Error("Failed to encode render")
		return err
	}

	_, err = retry.Do(ctx, r.client.Retry(), "evaluate_"+t.Judge, provider.RetryableForEvaluation,
		func() (*normalize.Verdict, error) {
			return r.judgeOnce(ctx, t, artifact, input, render)
		})
	if err != nil {
		log.With("error", err).Error("Evaluation failed")
		return err
	}

	log.Info("Verdict persisted")
	return nil
}

// judgeOnce performs a single judge exchange and persists its outcome: the
// verdict record on success, or the raw reply as a diagnostic sidecar when
// the reply does not parse. A successful re-parse on a later attempt removes
// the stale sidecar.
func (r *Runner) judgeOnce(ctx context.Context, t task.Task, artifact string, input, render imaging.Encoded) (*normalize.Verdict, error) {
	log := clog.FromContext(ctx)

	ex, err := r.client.Evaluate(ctx, t.Judge, prompts.EvalRubric, input, render)
	if err != nil {
		return nil, err
	}

	text, err := normalize.MessageText(ex.Raw)
	if err != nil {
		return nil, err
	}

	v, err := normalize.ParseVerdict(text)
	if err != nil {
		var malformed *normalize.MalformedVerdictError
		if errors.As(err, &malformed) {
			if werr := store.WriteSidecar(artifact, malformed.Raw); werr != nil {
				log.With("error", werr).Warn("Failed to persist diagnostic sidecar")
			}
		}
		return nil, err
	}

	v.EvaluatorModel = t.Judge
	v.EvaluatedModel = t.Model
	v.InputFile = t.InputFile

	if err := store.WriteJSON(artifact, v); err != nil {
		return nil, err
	}
	store.RemoveSidecar(artifact)
	return v, nil
}
