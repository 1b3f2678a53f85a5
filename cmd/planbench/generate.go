/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"github.com/spf13/cobra"

	"chainguard.dev/planbench/pipeline/generate"
)

// defaultModels is the benchmark's generation roster.
var defaultModels = []string{
	"sourceful/riverflow-v2-pro",
	"sourceful/riverflow-v2-fast",
	"black-forest-labs/flux.2-klein-4b",
	"bytedance-seed/seedream-4.5",
	"black-forest-labs/flux.2-max",
	"sourceful/riverflow-v2-max-preview",
	"sourceful/riverflow-v2-standard-preview",
	"sourceful/riverflow-v2-fast-preview",
	"black-forest-labs/flux.2-flex",
	"black-forest-labs/flux.2-pro",
	"google/gemini-3-pro-image-preview",
	"openai/gpt-5-image-mini",
	"openai/gpt-5-image",
	"google/gemini-2.5-flash-image",
}

var generateFlags struct {
	inputDir  string
	outputDir string
	models    []string
	workers   int
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Submit every input plan to every generation model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		client, err := newProviderClient(ctx)
		if err != nil {
			return err
		}
		runner, err := generate.New(client, generate.Config{
			InputDir:  generateFlags.inputDir,
			OutputDir: generateFlags.outputDir,
			Models:    generateFlags.models,
			Workers:   generateFlags.workers,
		})
		if err != nil {
			return err
		}

		_, err = runner.Run(ctx)
		return err
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateFlags.inputDir, "input", "input", "directory of input floor-plan images")
	generateCmd.Flags().StringVar(&generateFlags.outputDir, "output", "batch_outputs", "directory for generated renders")
	generateCmd.Flags().StringSliceVar(&generateFlags.models, "models", defaultModels, "generation model identifiers")
	generateCmd.Flags().IntVar(&generateFlags.workers, "workers", generate.DefaultWorkers, "concurrent provider calls")
	rootCmd.AddCommand(generateCmd)
}
