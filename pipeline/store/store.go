/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package store is the filesystem-backed idempotent artifact cache.
//
// Artifact existence is the single source of truth for "already done": the
// pipeline never re-derives completion from any other signal. To keep that
// signal trustworthy, every write lands in a same-directory temp file and is
// renamed into place only after a successful flush and close, so a visible
// artifact path never holds a partial write, even when a run is killed.
//
// Writes for distinct paths are safe to run concurrently; path uniqueness is
// guaranteed upstream by task identity, so no cross-task coordination is
// needed beyond the rename's own atomicity.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions are the input formats the pipeline accepts.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".avif": true,
}

// Exists reports whether an artifact is already present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteBytes atomically persists data at path, creating parent directories as
// needed. On any error the destination is left untouched.
func WriteBytes(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// WriteJSON atomically persists v as indented JSON at path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	return WriteBytes(path, append(data, '\n'))
}

// SidecarPath returns the diagnostic sidecar path for an artifact. The
// sidecar holds the raw text of a judge reply that failed to parse.
func SidecarPath(artifactPath string) string {
	return artifactPath + ".err.txt"
}

// WriteSidecar persists raw diagnostic text next to the artifact path.
func WriteSidecar(artifactPath, raw string) error {
	return WriteBytes(SidecarPath(artifactPath), []byte(raw))
}

// RemoveSidecar deletes a stale diagnostic sidecar after a later attempt
// parsed successfully. A missing sidecar is not an error.
func RemoveSidecar(artifactPath string) {
	os.Remove(SidecarPath(artifactPath))
}

// ListImages returns the base names of all input images in dir, sorted.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListRenders returns the base names of all generated renders in dir, sorted.
// A missing directory yields an empty list: no renders have been produced.
func ListRenders(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
