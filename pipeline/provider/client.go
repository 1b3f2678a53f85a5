/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package provider issues single request/response exchanges against the
// OpenRouter chat-completions endpoint, for both generation and judge
// models. It owns the retry policy for transient failures and the bounded
// fetch used when a provider returns an image by URL instead of inline.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"chainguard.dev/planbench/pipeline/imaging"
	"chainguard.dev/planbench/pipeline/metrics"
	"chainguard.dev/planbench/pipeline/retry"
)

const (
	// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// callTimeout bounds one chat-completions exchange.
	callTimeout = 120 * time.Second
	// fetchTimeout bounds the download of an image returned by URL.
	fetchTimeout = 30 * time.Second

	// Frozen sampling parameters for generation requests.
	generationTemperature = 0.2
	generationTopP        = 1.0

	// evaluationMaxTokens caps the judge's reply.
	evaluationMaxTokens = 4000
)

// Config carries the injected provider settings. The API key comes from
// process configuration at startup; it is never stored in source.
type Config struct {
	// APIKey authenticates against OpenRouter. Required.
	APIKey string
	// BaseURL overrides the endpoint, for tests. Defaults to DefaultBaseURL.
	BaseURL string
	// Referer and Title are OpenRouter's optional attribution headers.
	Referer string
	Title   string
	// Retry overrides the retry policy. Zero value means ProviderDefaults.
	Retry retry.Config
}

// Client issues provider exchanges. Safe for concurrent use.
type Client struct {
	oa      openai.Client
	fetcher *http.Client
	genai   *metrics.GenAI
	retries retry.Config
}

// Exchange is the outcome of one successful provider call: the raw decoded
// body for the normalizer, plus run metadata.
type Exchange struct {
	// Raw is the response body as the provider returned it. Its shape varies
	// across providers; normalization happens downstream.
	Raw []byte
	// Latency is the wall-clock duration of the exchange.
	Latency time.Duration
	// PromptTokens and CompletionTokens are zero when the provider did not
	// report usage.
	PromptTokens     int64
	CompletionTokens int64
}

// New builds a Client from injected configuration.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider: API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(callTimeout),
		option.WithMaxRetries(0), // retry policy lives in pipeline/retry
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	retries := cfg.Retry
	if retries == (retry.Config{}) {
		retries = retry.ProviderDefaults()
	}
	if err := retries.Validate(); err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	return &Client{
		oa:      openai.NewClient(opts...),
		fetcher: &http.Client{Timeout: fetchTimeout},
		genai:   metrics.NewGenAI("planbench"),
		retries: retries,
	}, nil
}

// Retry exposes the client's retry policy for callers that drive their own
// retry loop around an exchange plus its downstream parsing.
func (c *Client) Retry() retry.Config {
	return c.retries
}

// Generate submits the instruction and one inline input image to a
// generation model. Rate-limit responses are retried on a fixed delay up to
// the attempt budget; every other failure is surfaced immediately.
func (c *Client) Generate(ctx context.Context, model, prompt string, input imaging.Encoded) (*Exchange, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: input.DataURI(),
				}),
			}),
		},
		Temperature: openai.Float(generationTemperature),
		TopP:        openai.Float(generationTopP),
	}

	return retry.Do(ctx, c.retries, "generate_"+model, RetryableForGeneration, func() (*Exchange, error) {
		return c.call(ctx, model, "generate", params)
	})
}

// Evaluate submits the rubric and two inline images (original input, then
// generated render) to a judge model, forcing a structured JSON reply. The
// call itself is not retried here: the evaluation phase owns a wider retry
// loop that also covers malformed judge output, so internal retries would
// multiply the attempt budget.
func (c *Client) Evaluate(ctx context.Context, judge, rubric string, input, render imaging.Encoded) (*Exchange, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(judge),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(rubric),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: input.DataURI(),
				}),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: render.DataURI(),
				}),
			}),
		},
		MaxTokens: openai.Int(evaluationMaxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	return c.call(ctx, judge, "evaluate", params)
}

func (c *Client) call(ctx context.Context, model, phase string, params openai.ChatCompletionNewParams) (*Exchange, error) {
	start := time.Now()
	resp, err := c.oa.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", model, err)
	}

	ex := &Exchange{
		Raw:              []byte(resp.RawJSON()),
		Latency:          latency,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	c.genai.RecordCall(ctx, model, phase, latency, ex.PromptTokens, ex.CompletionTokens)

	clog.FromContext(ctx).With("model", model).
		With("phase", phase).
		With("latency", latency).
		Debug("Provider exchange complete")
	return ex, nil
}

// FetchImage downloads image bytes from a URL a provider returned instead of
// inline data. The fetch has its own bounded timeout and is never retried.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building image fetch for %s: %w", url, err)
	}
	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching image %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", url, err)
	}
	return data, nil
}
