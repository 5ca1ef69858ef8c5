//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package reader extracts plain text from documents so they can be
// imported into a canvas as content nodes.
package reader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Reader extracts plain text from one document format.
type Reader interface {
	// ReadFromReader extracts text from an in-memory document. name is
	// used for diagnostics only.
	ReadFromReader(name string, r io.Reader) (string, error)
	// ReadFromFile extracts text from a file on disk.
	ReadFromFile(path string) (string, error)
}

// Registry maps file extensions to readers.
type Registry struct {
	byExt map[string]Reader
}

// NewRegistry creates a registry with the given extension mapping.
// Extensions are matched case-insensitively and include the dot.
func NewRegistry(byExt map[string]Reader) *Registry {
	normalized := make(map[string]Reader, len(byExt))
	for ext, r := range byExt {
		normalized[strings.ToLower(ext)] = r
	}
	return &Registry{byExt: normalized}
}

// ForFile returns the reader responsible for the file's extension.
func (r *Registry) ForFile(name string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(name))
	reader, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("no reader for %q files", ext)
	}
	return reader, nil
}
