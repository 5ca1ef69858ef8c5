//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory DocumentStore, mainly for tests
// and examples.
package inmemory

import (
	"context"
	"sync"

	"trpc.group/trpc-go/trpc-canvas-go/canvas"
	"trpc.group/trpc-go/trpc-canvas-go/canvas/store"
)

// Store keeps the serialized form of each document in memory. Documents
// round-trip through the same encoding as durable backends so tests
// exercise the real serialization path.
type Store struct {
	mu   sync.RWMutex
	docs map[store.DocumentRef][]byte
}

// New creates an empty in-memory document store.
func New() *Store {
	return &Store{docs: make(map[store.DocumentRef][]byte)}
}

// Read implements store.DocumentStore.
func (s *Store) Read(ctx context.Context, ref store.DocumentRef) (*canvas.Graph, error) {
	s.mu.RLock()
	data, ok := s.docs[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	graph, err := store.Decode(data)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return graph, nil
}

// Write implements store.DocumentStore.
func (s *Store) Write(ctx context.Context, ref store.DocumentRef, graph *canvas.Graph) error {
	data, err := store.Encode(graph)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[ref] = data
	s.mu.Unlock()
	return nil
}

// Raw returns the stored bytes for a document, for tests that assert on
// the serialized form.
func (s *Store) Raw(ref store.DocumentRef) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[ref]
	return data, ok
}
