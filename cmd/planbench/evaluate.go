/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"github.com/spf13/cobra"

	"chainguard.dev/planbench/pipeline/evaluate"
)

// defaultJudges is the benchmark's judge roster.
var defaultJudges = []string{
	"google/gemini-3-flash-preview",
	"openai/gpt-5.2",
}

var evaluateFlags struct {
	inputDir   string
	rendersDir string
	outputDir  string
	judges     []string
	workers    int
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score every persisted render with every judge model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		client, err := newProviderClient(ctx)
		if err != nil {
			return err
		}
		runner, err := evaluate.New(client, evaluate.Config{
			InputDir:   evaluateFlags.inputDir,
			RendersDir: evaluateFlags.rendersDir,
			OutputDir:  evaluateFlags.outputDir,
			Judges:     evaluateFlags.judges,
			Workers:    evaluateFlags.workers,
		})
		if err != nil {
			return err
		}

		_, err = runner.Run(ctx)
		return err
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateFlags.inputDir, "input", "input", "directory of input floor-plan images")
	evaluateCmd.Flags().StringVar(&evaluateFlags.rendersDir, "renders", "batch_outputs", "directory of generated renders")
	evaluateCmd.Flags().StringVar(&evaluateFlags.outputDir, "output", "evaluation_outputs", "directory for verdict records")
	evaluateCmd.Flags().StringSliceVar(&evaluateFlags.judges, "judges", defaultJudges, "judge model identifiers")
	evaluateCmd.Flags().IntVar(&evaluateFlags.workers, "workers", evaluate.DefaultWorkers, "concurrent judge calls")
	rootCmd.AddCommand(evaluateCmd)
}
