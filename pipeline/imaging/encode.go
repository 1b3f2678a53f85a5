/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package imaging re-encodes input images before transmission to a provider.
//
// Every image is flattened to RGB, downscaled so neither dimension exceeds a
// phase-specific ceiling, and re-compressed as JPEG at a fixed quality. This
// is a size/fidelity trade-off to keep request payloads under provider
// limits, not a quality feature.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// GenerationMaxDim caps image dimensions for generation requests.
	GenerationMaxDim = 2048
	// EvaluationMaxDim caps image dimensions for evaluation requests. Tighter
	// than generation because each judge call carries two images.
	EvaluationMaxDim = 1024

	// GenerationQuality is the JPEG quality for generation payloads.
	GenerationQuality = 85
	// EvaluationQuality is the JPEG quality for evaluation payloads.
	EvaluationQuality = 80
)

// Encoded is a re-encoded image ready for inline transmission.
type Encoded struct {
	// Base64 is the standard-encoded JPEG payload.
	Base64 string
}

// DataURI returns the payload as an inline data URI.
func (e Encoded) DataURI() string {
	return "data:image/jpeg;base64," + e.Base64
}

// ForGeneration re-encodes the image at path under the generation ceiling.
func ForGeneration(path string) (Encoded, error) {
	return encode(path, GenerationMaxDim, GenerationQuality)
}

// ForEvaluation re-encodes the image at path under the evaluation ceiling.
func ForEvaluation(path string) (Encoded, error) {
	return encode(path, EvaluationMaxDim, EvaluationQuality)
}

func encode(path string, maxDim, quality int) (Encoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return Encoded{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return Encoded{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	img := downscale(src, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return Encoded{}, fmt.Errorf("encoding %s: %w", path, err)
	}

	return Encoded{Base64: base64.StdEncoding.EncodeToString(buf.Bytes())}, nil
}

// downscale fits src within maxDim x maxDim, preserving aspect ratio. Images
// already under the ceiling are returned unchanged.
func downscale(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
