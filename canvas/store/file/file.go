//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package file provides a DocumentStore backed by the local filesystem.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"trpc.group/trpc-go/trpc-canvas-go/canvas"
	"trpc.group/trpc-go/trpc-canvas-go/canvas/store"
	"trpc.group/trpc-go/trpc-canvas-go/log"
)

// Store keeps one file per canvas document under a base directory.
type Store struct {
	baseDir string
}

// Option configures the Store.
type Option func(*Store)

// New creates a file-backed document store rooted at baseDir.
func New(baseDir string, opts ...Option) *Store {
	s := &Store{baseDir: baseDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read implements store.DocumentStore.
func (s *Store) Read(ctx context.Context, ref store.DocumentRef) (*canvas.Graph, error) {
	data, err := os.ReadFile(s.path(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read canvas document %q: %w", ref, err)
	}
	graph, err := store.Decode(data)
	if err != nil {
		log.Warnf("canvas document %q is malformed, treating as absent: %v", ref, err)
		return nil, store.ErrNotFound
	}
	return graph, nil
}

// Write implements store.DocumentStore. The document is written to a
// temporary file in the same directory and renamed into place, so readers
// never observe a partial write.
func (s *Store) Write(ctx context.Context, ref store.DocumentRef, graph *canvas.Graph) error {
	data, err := store.Encode(graph)
	if err != nil {
		return err
	}
	path := s.path(ref)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("write canvas document %q: %w", ref, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".canvas-*")
	if err != nil {
		return fmt.Errorf("write canvas document %q: %w", ref, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write canvas document %q: %w", ref, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write canvas document %q: %w", ref, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write canvas document %q: %w", ref, err)
	}
	return nil
}

func (s *Store) path(ref store.DocumentRef) string {
	return filepath.Join(s.baseDir, filepath.Clean("/"+ref))
}
