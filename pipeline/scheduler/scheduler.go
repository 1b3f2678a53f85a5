/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package scheduler runs independent tasks under a bounded concurrency
// limit. The task list is static and pre-enumerated: no dynamic submission,
// no requeueing, no ordering guarantee between completions. Each worker
// reports its outcome through its own result slot, so there is no shared
// mutable state beyond the filesystem the tasks themselves write to.
package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome tallies task results after all tasks complete.
type Outcome struct {
	Succeeded int
	Failed    int
}

// Run executes fn for every task with at most workers in flight. A task
// failure never aborts the run; failures are counted and the run proceeds to
// the remaining tasks. Run returns once every task has completed.
func Run[T any](ctx context.Context, workers int, tasks []T, fn func(context.Context, T) error) Outcome {
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	results := make([]bool, len(tasks))
	for i, t := range tasks {
		g.Go(func() error {
			results[i] = fn(ctx, t) == nil
			return nil
		})
	}
	g.Wait()

	var out Outcome
	for _, ok := range results {
		if ok {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	return out
}
