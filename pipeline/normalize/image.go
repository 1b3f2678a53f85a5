/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package normalize locates the authoritative payload inside a provider
// response of unpredictable shape.
//
// Providers behind the same chat-completions endpoint disagree on where the
// result lives: some attach an images list to the message, some return typed
// content blocks, some embed a URL in prose, and some use a top-level data
// array. The extractors here try each known shape in a fixed priority order,
// independent of provider identity. Each matcher is pure and returns
// no-match rather than failing, so the chain composes and each shape is
// testable on its own.
package normalize

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoImage reports that a successful provider response carried no locatable
// image. The provider chose not to return one, so the condition is a content
// miss, not a transient fault, and is never retried.
var ErrNoImage = errors.New("no image located in provider response")

// ImagePayload is the authoritative image found in a response: either bytes
// decoded from inline base64 data, or a URL that still has to be fetched.
// Exactly one of the two fields is set.
type ImagePayload struct {
	// Inline holds decoded image bytes when the response embedded the image.
	Inline []byte
	// URL points at the image when the response referenced it instead.
	URL string
}

var (
	markdownImageRE = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
	bareURLRE       = regexp.MustCompile(`https?://[^\s"]+`)
)

// chatResponse is the loose decoding of a provider response body. Only the
// fields the extractors probe are declared; content is kept raw because it
// may be a string or a list of typed blocks.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
			Images  []contentBlock  `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// contentBlock is one entry of a message images list or content-block list.
// image_url may be a bare string or a nested {"url": ...} object.
type contentBlock struct {
	Type     string          `json:"type"`
	ImageURL json.RawMessage `json:"image_url"`
	B64JSON  string          `json:"b64_json"`
}

// located is the intermediate result of a shape matcher: a URL or an inline
// base64 datum, whichever the shape carried.
type located struct {
	url string
	b64 string
}

func (l located) found() bool { return l.url != "" || l.b64 != "" }

// LocateImage extracts the one authoritative image from a raw decoded
// response body, trying each known response shape in priority order. A
// data: URI is decoded in place; a fetchable URL is returned for the caller
// to download. If no shape matches, ErrNoImage is returned.
func LocateImage(raw []byte) (ImagePayload, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ImagePayload{}, fmt.Errorf("decoding provider response: %w", err)
	}

	loc := matchImagesList(resp)
	if !loc.found() {
		loc = matchContentBlocks(resp)
	}
	if !loc.found() {
		loc = matchTextContent(resp)
	}
	if !loc.found() {
		loc = matchDataArray(resp)
	}

	// Inline data dressed up as a URL is decoded in place.
	if strings.HasPrefix(loc.url, "data:image") {
		if _, b64, ok := strings.Cut(loc.url, ","); ok {
			loc.b64 = b64
			loc.url = ""
		}
	}

	switch {
	case loc.b64 != "":
		data, err := base64.StdEncoding.DecodeString(loc.b64)
		if err != nil {
			return ImagePayload{}, fmt.Errorf("decoding inline image data: %w", err)
		}
		return ImagePayload{Inline: data}, nil
	case loc.url != "":
		return ImagePayload{URL: loc.url}, nil
	default:
		return ImagePayload{}, ErrNoImage
	}
}

// matchImagesList probes the nested images list on the message, where an
// entry carries either a direct URL string or a nested URL object.
func matchImagesList(resp chatResponse) located {
	for _, choice := range resp.Choices {
		for _, img := range choice.Message.Images {
			if img.Type != "image_url" {
				continue
			}
			if url := urlFrom(img.ImageURL); url != "" {
				return located{url: url}
			}
		}
	}
	return located{}
}

// matchContentBlocks probes a content list of typed blocks: an image-URL
// block, an "image" block, or an "output_image" block with inline data.
func matchContentBlocks(resp chatResponse) located {
	for _, choice := range resp.Choices {
		var blocks []contentBlock
		if err := json.Unmarshal(choice.Message.Content, &blocks); err != nil {
			continue
		}
		for _, block := range blocks {
			switch block.Type {
			case "image_url", "image":
				if url := urlFrom(block.ImageURL); url != "" {
					return located{url: url}
				}
			case "output_image":
				if block.B64JSON != "" {
					return located{b64: block.B64JSON}
				}
			}
		}
	}
	return located{}
}

// matchTextContent probes plain-text content for a markdown image reference
// first, then for any bare URL.
func matchTextContent(resp chatResponse) located {
	for _, choice := range resp.Choices {
		var text string
		if err := json.Unmarshal(choice.Message.Content, &text); err != nil {
			continue
		}
		if m := markdownImageRE.FindStringSubmatch(text); m != nil {
			return located{url: m[1]}
		}
		if m := bareURLRE.FindString(text); m != "" {
			return located{url: m}
		}
	}
	return located{}
}

// matchDataArray probes the top-level data list, a response convention
// distinct from the chat-message one, whose entries carry inline data.
func matchDataArray(resp chatResponse) located {
	for _, item := range resp.Data {
		if item.B64JSON != "" {
			return located{b64: item.B64JSON}
		}
	}
	return located{}
}

// urlFrom resolves an image_url field that is either a bare string or a
// nested {"url": ...} object.
func urlFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var nested struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return nested.URL
	}
	return ""
}

// MessageText returns the plain-text content of the first choice, for
// responses where the payload is text rather than an image.
func MessageText(raw []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decoding provider response: %w", err)
	}
	for _, choice := range resp.Choices {
		var text string
		if err := json.Unmarshal(choice.Message.Content, &text); err == nil && text != "" {
			return text, nil
		}
	}
	return "", errors.New("no text content in provider response")
}
