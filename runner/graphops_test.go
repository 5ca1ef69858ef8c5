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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-canvas-go/canvas"
	"trpc.group/trpc-go/trpc-canvas-go/canvas/store"
	"trpc.group/trpc-go/trpc-canvas-go/canvas/store/inmemory"
)

func TestRunner_CreateDocumentIsIdempotent(t *testing.T) {
	s := inmemory.New()
	r := New(s, newTestRegistry(t), &stubProvider{})
	ctx := context.Background()

	_, err := r.Graph(ctx, "doc.canvas")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, r.CreateDocument(ctx, "doc.canvas"))
	id, err := r.CreateNode(ctx, "doc.canvas", &canvas.Node{Type: canvas.NodeTypeText, Text: "keep me"}, "")
	require.NoError(t, err)

	// Creating an existing document must not wipe its content.
	require.NoError(t, r.CreateDocument(ctx, "doc.canvas"))
	graph, err := r.Graph(ctx, "doc.canvas")
	require.NoError(t, err)
	_, ok := graph.Node(id)
	assert.True(t, ok)
}

func TestRunner_CreateNodeDefaultsAndPlacement(t *testing.T) {
	r, _, sourceID, _ := newTestRunner(t, &stubProvider{})
	ctx := context.Background()

	id, err := r.CreateNode(ctx, "doc.canvas", &canvas.Node{Type: canvas.NodeTypeText, Text: "x"}, sourceID)
	require.NoError(t, err)

	graph, err := r.Graph(ctx, "doc.canvas")
	require.NoError(t, err)
	node, ok := graph.Node(id)
	require.True(t, ok)
	assert.Equal(t, 400.0, node.Width)
	assert.Equal(t, 400.0, node.Height)

	source, _ := graph.Node(sourceID)
	assert.Equal(t, source.X+source.Width+60, node.X)
	assert.Equal(t, source.Y, node.Y)
}

func TestRunner_UpdateAndDeleteNode(t *testing.T) {
	r, _, sourceID, blockID := newTestRunner(t, &stubProvider{})
	ctx := context.Background()

	text := "rewritten"
	require.NoError(t, r.UpdateNode(ctx, "doc.canvas", sourceID, canvas.NodeUpdate{Text: &text}))
	require.ErrorIs(t, r.UpdateNode(ctx, "doc.canvas", "node-99", canvas.NodeUpdate{}), canvas.ErrNodeNotFound)

	graph, err := r.Graph(ctx, "doc.canvas")
	require.NoError(t, err)
	source, _ := graph.Node(sourceID)
	assert.Equal(t, "rewritten", source.Text)

	require.NoError(t, r.DeleteNode(ctx, "doc.canvas", sourceID))
	graph, err = r.Graph(ctx, "doc.canvas")
	require.NoError(t, err)
	_, ok := graph.Node(sourceID)
	assert.False(t, ok)
	// The edge into the block node went with its endpoint.
	assert.Empty(t, graph.Edges)
	_, ok = graph.Node(blockID)
	assert.True(t, ok)
}

func TestRunner_CreateEdgeUnknownEndpoint(t *testing.T) {
	r, _, sourceID, _ := newTestRunner(t, &stubProvider{})
	_, err := r.CreateEdge(context.Background(), "doc.canvas", sourceID, "node-99", nil)
	require.ErrorIs(t, err, canvas.ErrEdgeEndpoint)
}
