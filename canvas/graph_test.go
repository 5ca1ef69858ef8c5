//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_CreateNodeAssignsFreshIDs(t *testing.T) {
	g := New()
	first := g.CreateNode(&Node{Type: NodeTypeText})
	second := g.CreateNode(&Node{Type: NodeTypeText})

	assert.Equal(t, "node-1", first)
	assert.Equal(t, "node-2", second)
	assert.Len(t, g.Nodes, 2)
}

func TestGraph_CreateNodeSkipsExistingIDs(t *testing.T) {
	g := New()
	g.Nodes = append(g.Nodes, &Node{ID: "node-7", Type: NodeTypeText})

	id := g.CreateNode(&Node{Type: NodeTypeText})
	assert.Equal(t, "node-8", id)

	// Non-numeric suffixes do not confuse the counter.
	g.Nodes = append(g.Nodes, &Node{ID: "node-abc", Type: NodeTypeText})
	assert.Equal(t, "node-9", g.CreateNode(&Node{Type: NodeTypeText}))
}

func TestGraph_CreateEdge(t *testing.T) {
	g := New()
	a := g.CreateNode(&Node{Type: NodeTypeText})
	b := g.CreateNode(&Node{Type: NodeTypeText})

	id, err := g.CreateEdge(a, b, &Edge{Label: "feeds"})
	require.NoError(t, err)
	assert.Equal(t, "edge-1", id)

	e, ok := g.Edge(id)
	require.True(t, ok)
	assert.Equal(t, a, e.From)
	assert.Equal(t, b, e.To)
	assert.Equal(t, "feeds", e.Label)
}

func TestGraph_CreateEdgeRejectsMissingEndpoints(t *testing.T) {
	g := New()
	a := g.CreateNode(&Node{Type: NodeTypeText})

	_, err := g.CreateEdge(a, "node-99", nil)
	require.ErrorIs(t, err, ErrEdgeEndpoint)
	_, err = g.CreateEdge("node-99", a, nil)
	require.ErrorIs(t, err, ErrEdgeEndpoint)
	assert.Empty(t, g.Edges)
}

func TestGraph_DeleteNodeCascadesEdges(t *testing.T) {
	g := New()
	a := g.CreateNode(&Node{Type: NodeTypeText})
	b := g.CreateNode(&Node{Type: NodeTypeText})
	c := g.CreateNode(&Node{Type: NodeTypeText})
	_, err := g.CreateEdge(a, b, nil)
	require.NoError(t, err)
	_, err = g.CreateEdge(b, c, nil)
	require.NoError(t, err)
	keep, err := g.CreateEdge(a, c, nil)
	require.NoError(t, err)

	require.NoError(t, g.DeleteNode(b))

	_, ok := g.Node(b)
	assert.False(t, ok)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, keep, g.Edges[0].ID)
}

func TestGraph_DeleteNodeNotFound(t *testing.T) {
	g := New()
	err := g.DeleteNode("node-1")
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGraph_UpdateNodeMergesFields(t *testing.T) {
	g := New()
	id := g.CreateNode(&Node{Type: NodeTypeText, Text: "before", X: 1, Y: 2})

	text := "after"
	x := 50.0
	require.NoError(t, g.UpdateNode(id, NodeUpdate{Text: &text, X: &x}))

	n, ok := g.Node(id)
	require.True(t, ok)
	assert.Equal(t, "after", n.Text)
	assert.Equal(t, 50.0, n.X)
	assert.Equal(t, 2.0, n.Y)

	require.ErrorIs(t, g.UpdateNode("node-99", NodeUpdate{}), ErrNodeNotFound)
}

func TestGraph_UpstreamNodesInEdgeOrder(t *testing.T) {
	g := New()
	a := g.CreateNode(&Node{Type: NodeTypeText, Text: "a"})
	b := g.CreateNode(&Node{Type: NodeTypeText, Text: "b"})
	target := g.CreateNode(&Node{Type: NodeTypeText})
	_, err := g.CreateEdge(b, target, nil)
	require.NoError(t, err)
	_, err = g.CreateEdge(a, target, nil)
	require.NoError(t, err)

	upstream := g.UpstreamNodes(target)
	require.Len(t, upstream, 2)
	assert.Equal(t, "b", upstream[0].Text)
	assert.Equal(t, "a", upstream[1].Text)
}

func TestGraph_InsertionPoint(t *testing.T) {
	g := New()
	x, y := g.InsertionPoint("")
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)

	g.Nodes = append(g.Nodes,
		&Node{ID: "node-1", X: 0, Y: 0, Width: 400, Height: 400},
		&Node{ID: "node-2", X: 900, Y: 120, Width: 300, Height: 200},
	)

	// Relative to a reference node.
	x, y = g.InsertionPoint("node-1")
	assert.Equal(t, 460.0, x)
	assert.Equal(t, 0.0, y)

	// No reference: to the right of the rightmost node.
	x, y = g.InsertionPoint("")
	assert.Equal(t, 1260.0, x)
	assert.Equal(t, 120.0, y)

	// Unknown reference falls back to the rightmost node.
	x, _ = g.InsertionPoint("node-99")
	assert.Equal(t, 1260.0, x)
}
