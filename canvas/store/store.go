//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package store defines durable storage for canvas documents.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-canvas-go/canvas"
)

// ErrNotFound is returned by Read when the document does not exist or its
// content is structurally invalid. Callers must treat it as "no graph",
// not as an empty graph.
var ErrNotFound = errors.New("canvas document not found")

// DocumentRef names one canvas document within a store. For the file
// backend it is a path relative to the base directory; for object-storage
// backends it is an object key.
type DocumentRef = string

// DocumentStore is the only way canvas documents reach durable storage.
// Write persists the full graph; partial writes are never observable.
type DocumentStore interface {
	// Read loads and deserializes the document. It returns ErrNotFound
	// when the document is absent or malformed.
	Read(ctx context.Context, ref DocumentRef) (*canvas.Graph, error)
	// Write serializes the full graph and replaces the document
	// atomically. Failures are returned, never swallowed.
	Write(ctx context.Context, ref DocumentRef, graph *canvas.Graph) error
}

// Encode serializes a graph deterministically: same graph, same bytes.
func Encode(graph *canvas.Graph) ([]byte, error) {
	data, err := json.MarshalIndent(graph, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encode canvas document: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode deserializes a graph, requiring both top-level collections to be
// present. Structurally invalid content is an error; backends convert it
// to ErrNotFound after logging a diagnostic.
func Decode(data []byte) (*canvas.Graph, error) {
	var probe struct {
		Nodes *json.RawMessage `json:"nodes"`
		Edges *json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode canvas document: %w", err)
	}
	if probe.Nodes == nil || probe.Edges == nil {
		return nil, errors.New("decode canvas document: missing nodes or edges collection")
	}
	graph := canvas.New()
	if err := json.Unmarshal(data, graph); err != nil {
		return nil, fmt.Errorf("decode canvas document: %w", err)
	}
	return graph, nil
}
