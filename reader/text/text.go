//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package text reads plain-text documents verbatim.
package text

import (
	"io"
	"os"
	"strings"
)

// Reader reads plain-text documents.
type Reader struct{}

// New creates a plain-text reader.
func New() *Reader {
	return &Reader{}
}

// ReadFromReader implements reader.Reader.
func (r *Reader) ReadFromReader(name string, src io.Reader) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadFromFile implements reader.Reader.
func (r *Reader) ReadFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
