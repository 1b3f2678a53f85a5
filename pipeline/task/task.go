/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package task defines the unit of pipeline work and the deterministic
// artifact naming that serves as the idempotence key for the on-disk cache.
//
// Everything here is pure: enumeration and path derivation perform no I/O,
// so the same inputs always yield the same tasks and the same paths. Whether
// a task's artifact already exists is checked later, at execution time.
package task

import (
	"path/filepath"
	"strings"
)

// Mode selects which phase a task belongs to.
type Mode string

const (
	// ModeGenerate submits an input image to a generation model.
	ModeGenerate Mode = "generate"
	// ModeEvaluate submits an input/render pair to a judge model.
	ModeEvaluate Mode = "evaluate"
)

// Task is one unit of work. It is immutable once enumerated and consumed
// exactly once by a worker. Identity is (InputFile, Model, Judge); no two
// tasks in a run target the same artifact path.
type Task struct {
	// InputFile is the base name of the source image, e.g. "floor_plan.jpg".
	InputFile string

	// Model is the generation model identifier, e.g.
	// "black-forest-labs/flux.2-pro". For evaluation tasks this is the model
	// that produced the render under judgment.
	Model string

	// Mode is the phase this task belongs to.
	Mode Mode

	// Judge is the judge model identifier. Set only for evaluation tasks.
	Judge string

	// GeneratedFile is the base name of the render under judgment.
	// Set only for evaluation tasks.
	GeneratedFile string
}

// SanitizeModel replaces path separators in a model identifier with
// underscores so that model names like "openai/gpt-5-image" map into a flat,
// collision-free filename namespace.
func SanitizeModel(model string) string {
	return strings.ReplaceAll(model, "/", "_")
}

// BaseName returns a filename without its extension.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// GenerationArtifact returns the deterministic output path for a generation
// task: {dir}/{input_base}_{sanitized_model}.png.
func GenerationArtifact(dir, inputFile, model string) string {
	return filepath.Join(dir, BaseName(inputFile)+"_"+SanitizeModel(model)+".png")
}

// EvaluationArtifact returns the deterministic output path for an evaluation
// task: {dir}/{evaluated_model}/{input_base}_eval_by_{sanitized_judge}.json.
// Records are grouped in one subdirectory per evaluated model.
func EvaluationArtifact(dir, evaluatedModel, inputFile, judge string) string {
	name := BaseName(inputFile) + "_eval_by_" + SanitizeModel(judge) + ".json"
	return filepath.Join(dir, evaluatedModel, name)
}

// MetadataSidecar returns the path of the run-metadata record written next to
// a generated artifact.
func MetadataSidecar(artifactPath string) string {
	return artifactPath + ".meta.json"
}
