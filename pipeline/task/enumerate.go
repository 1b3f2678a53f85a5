/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package task

import "strings"

// EnumerateGeneration expands the cross-product of input images and
// generation models into independent tasks, one per (input, model) pair.
func EnumerateGeneration(inputs, models []string) []Task {
	tasks := make([]Task, 0, len(inputs)*len(models))
	for _, in := range inputs {
		for _, m := range models {
			tasks = append(tasks, Task{
				InputFile: in,
				Model:     m,
				Mode:      ModeGenerate,
			})
		}
	}
	return tasks
}

// EnumerateEvaluation expands every recognized generated render into one task
// per judge model. A render is recognized when its filename starts with the
// base name of a known input followed by "_"; the remainder is the sanitized
// identifier of the model that produced it. Renders matching no known input
// are silently excluded: they were not produced by this pipeline's naming
// rule, so there is nothing to pair them with.
func EnumerateEvaluation(inputs, generated, judges []string) []Task {
	tasks := make([]Task, 0, len(generated)*len(judges))
	for _, gen := range generated {
		for _, in := range inputs {
			prefix := BaseName(in) + "_"
			if !strings.HasPrefix(gen, prefix) {
				continue
			}
			model := strings.TrimPrefix(BaseName(gen), prefix)
			for _, judge := range judges {
				tasks = append(tasks, Task{
					InputFile:     in,
					Model:         model,
					Mode:          ModeEvaluate,
					Judge:         judge,
					GeneratedFile: gen,
				})
			}
			break
		}
	}
	return tasks
}
