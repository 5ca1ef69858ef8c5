//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package runner

import (
	"context"
	"errors"

	"trpc.group/trpc-go/trpc-canvas-go/canvas"
	"trpc.group/trpc-go/trpc-canvas-go/canvas/store"
)

// Graph-level entry points for hosts. Each mutation is serialized against
// runs on the same document and followed by one durable write.

// Graph loads the current graph of a document.
func (r *Runner) Graph(ctx context.Context, ref store.DocumentRef) (*canvas.Graph, error) {
	unlock := r.locks.lock(ref)
	defer unlock()
	return r.store.Read(ctx, ref)
}

// CreateDocument writes an empty graph for a document that does not exist
// yet. Existing documents are left untouched.
func (r *Runner) CreateDocument(ctx context.Context, ref store.DocumentRef) error {
	unlock := r.locks.lock(ref)
	defer unlock()
	if _, err := r.store.Read(ctx, ref); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return r.store.Write(ctx, ref, canvas.New())
}

// CreateNode adds a node to the document. When nearNodeID is non-empty
// the node is placed next to it via the insertion-point heuristic.
func (r *Runner) CreateNode(ctx context.Context, ref store.DocumentRef, node *canvas.Node, nearNodeID string) (string, error) {
	unlock := r.locks.lock(ref)
	defer unlock()

	graph, err := r.store.Read(ctx, ref)
	if err != nil {
		return "", err
	}
	if node.Width == 0 {
		node.Width = outputNodeWidth
	}
	if node.Height == 0 {
		node.Height = outputNodeHeight
	}
	if nearNodeID != "" {
		node.X, node.Y = graph.InsertionPoint(nearNodeID)
	}
	id := graph.CreateNode(node)
	if err := r.store.Write(ctx, ref, graph); err != nil {
		return "", err
	}
	return id, nil
}

// CreateEdge connects two existing nodes of the document.
func (r *Runner) CreateEdge(ctx context.Context, ref store.DocumentRef, from, to string, attrs *canvas.Edge) (string, error) {
	unlock := r.locks.lock(ref)
	defer unlock()

	graph, err := r.store.Read(ctx, ref)
	if err != nil {
		return "", err
	}
	id, err := graph.CreateEdge(from, to, attrs)
	if err != nil {
		return "", err
	}
	if err := r.store.Write(ctx, ref, graph); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateNode merges a partial update into a node of the document.
func (r *Runner) UpdateNode(ctx context.Context, ref store.DocumentRef, nodeID string, update canvas.NodeUpdate) error {
	unlock := r.locks.lock(ref)
	defer unlock()

	graph, err := r.store.Read(ctx, ref)
	if err != nil {
		return err
	}
	if err := graph.UpdateNode(nodeID, update); err != nil {
		return err
	}
	return r.store.Write(ctx, ref, graph)
}

// DeleteNode removes a node and every edge touching it.
func (r *Runner) DeleteNode(ctx context.Context, ref store.DocumentRef, nodeID string) error {
	unlock := r.locks.lock(ref)
	defer unlock()

	graph, err := r.store.Read(ctx, ref)
	if err != nil {
		return err
	}
	if err := graph.DeleteNode(nodeID); err != nil {
		return err
	}
	return r.store.Write(ctx, ref, graph)
}
