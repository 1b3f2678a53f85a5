/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package generate_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/planbench/pipeline/generate"
	"chainguard.dev/planbench/pipeline/provider"
	"chainguard.dev/planbench/pipeline/retry"
	"chainguard.dev/planbench/pipeline/task"
)

// writePlan writes a small decodable floor-plan image into dir.
func writePlan(t *testing.T, dir, name string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			img.Set(x, y, color.RGBA{R: 240, G: 240, B: 240, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func newRunner(t *testing.T, baseURL string, cfg generate.Config) *generate.Runner {
	t.Helper()

	client, err := provider.New(provider.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Retry:   retry.Config{MaxRetries: 3, Delay: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("provider.New() = %v", err)
	}
	r, err := generate.New(client, cfg)
	if err != nil {
		t.Fatalf("generate.New() = %v", err)
	}
	return r
}

func TestRunPersistsInlineRender(t *testing.T) {
	t.Parallel()

	inputDir, outputDir := t.TempDir(), t.TempDir()
	writePlan(t, inputDir, "plan.jpg")

	renderBytes := []byte("fake-png-render")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"choices":[{"message":{"content":[{"type":"output_image","b64_json":%q}]}}],
			"usage":{"prompt_tokens":5,"completion_tokens":9}
		}`, base64.StdEncoding.EncodeToString(renderBytes))
	}))
	defer srv.Close()

	r := newRunner(t, srv.URL, generate.Config{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Models:    []string{"m1"},
	})
	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if out.Succeeded != 1 || out.Failed != 0 {
		t.Fatalf("Outcome = %+v, want 1 succeeded", out)
	}

	artifact := filepath.Join(outputDir, "plan_m1.png")
	got, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatalf("reading render: %v", err)
	}
	if string(got) != string(renderBytes) {
		t.Fatalf("render = %q, want %q", got, renderBytes)
	}

	metaRaw, err := os.ReadFile(task.MetadataSidecar(artifact))
	if err != nil {
		t.Fatalf("reading metadata: %v", err)
	}
	var meta generate.Metadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if meta.Model != "m1" || meta.InputFile != "plan.jpg" {
		t.Fatalf("metadata = %+v", meta)
	}
	if meta.PromptTokens != 5 || meta.CompletionTokens != 9 {
		t.Fatalf("metadata tokens = %d/%d, want 5/9", meta.PromptTokens, meta.CompletionTokens)
	}
	if meta.LatencySeconds <= 0 {
		t.Fatal("metadata latency not recorded")
	}
}

func TestRunFetchesURLRender(t *testing.T) {
	t.Parallel()

	inputDir, outputDir := t.TempDir(), t.TempDir()
	writePlan(t, inputDir, "plan.jpg")

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/render.png" {
			w.Write([]byte("url-render-bytes"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":"here: ![x](%s/render.png)"}}]}`, srv.URL)
	}))
	defer srv.Close()

	r := newRunner(t, srv.URL, generate.Config{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Models:    []string{"m1"},
	})
	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if out.Succeeded != 1 {
		t.Fatalf("Outcome = %+v, want 1 succeeded", out)
	}

	got, err := os.ReadFile(filepath.Join(outputDir, "plan_m1.png"))
	if err != nil {
		t.Fatalf("reading render: %v", err)
	}
	if string(got) != "url-render-bytes" {
		t.Fatalf("render = %q", got)
	}
}

func TestRunSkipsExistingArtifacts(t *testing.T) {
	t.Parallel()

	inputDir, outputDir := t.TempDir(), t.TempDir()
	writePlan(t, inputDir, "plan.jpg")

	// m1's artifact is already done; only m2 may reach the provider.
	existing := []byte("existing-render")
	if err := os.WriteFile(filepath.Join(outputDir, "plan_m1.png"), existing, 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body struct {
			Model string `json:"model"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		models = append(models, body.Model)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":[{"type":"output_image","b64_json":%q}]}}]}`,
			base64.StdEncoding.EncodeToString([]byte("new-render")))
	}))
	defer srv.Close()

	r := newRunner(t, srv.URL, generate.Config{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Models:    []string{"m1", "m2"},
		Workers:   1,
	})
	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if out.Succeeded != 2 {
		t.Fatalf("Outcome = %+v, want 2 succeeded", out)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
	if len(models) != 1 || models[0] != "m2" {
		t.Fatalf("provider called for %v, want [m2]", models)
	}

	got, err := os.ReadFile(filepath.Join(outputDir, "plan_m1.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(existing) {
		t.Fatal("existing artifact was modified")
	}
}

func TestRunReportsContentMiss(t *testing.T) {
	t.Parallel()

	inputDir, outputDir := t.TempDir(), t.TempDir()
	writePlan(t, inputDir, "plan.jpg")

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"I cannot generate images."}}]}`))
	}))
	defer srv.Close()

	r := newRunner(t, srv.URL, generate.Config{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Models:    []string{"m1"},
	})
	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if out.Failed != 1 {
		t.Fatalf("Outcome = %+v, want 1 failed", out)
	}

	// A content miss is not retried.
	if got := calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "plan_m1.png")); !os.IsNotExist(err) {
		t.Fatal("no artifact may be left behind on failure")
	}
}

func TestRunFailureDoesNotAbortRemainingTasks(t *testing.T) {
	t.Parallel()

	inputDir, outputDir := t.TempDir(), t.TempDir()
	writePlan(t, inputDir, "plan.jpg")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body.Model == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"no such model"}}`))
			return
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"content":[{"type":"output_image","b64_json":%q}]}}]}`,
			base64.StdEncoding.EncodeToString([]byte("ok")))
	}))
	defer srv.Close()

	r := newRunner(t, srv.URL, generate.Config{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Models:    []string{"bad", "good"},
	})
	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if out.Succeeded != 1 || out.Failed != 1 {
		t.Fatalf("Outcome = %+v, want 1/1", out)
	}
}

func TestNewRequiresModels(t *testing.T) {
	t.Parallel()

	client, err := provider.New(provider.Config{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := generate.New(client, generate.Config{}); err == nil {
		t.Fatal("expected error without models")
	}
}
