//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-canvas-go/canvas"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	g := canvas.New()
	a := g.CreateNode(&canvas.Node{Type: canvas.NodeTypeText, Text: "one"})
	b := g.CreateNode(&canvas.Node{Type: canvas.NodeTypeText, Text: "two"})
	_, err := g.CreateEdge(a, b, nil)
	require.NoError(t, err)

	data, err := Encode(g)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Len(t, decoded.Nodes, 2)
	assert.Len(t, decoded.Edges, 1)

	// Re-encoding the decoded graph yields the same bytes.
	again, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestDecode_RequiresBothCollections(t *testing.T) {
	for name, content := range map[string]string{
		"not json":      "{oops",
		"missing edges": `{"nodes":[]}`,
		"missing nodes": `{"edges":[]}`,
		"wrong shape":   `"just a string"`,
	} {
		_, err := Decode([]byte(content))
		assert.Error(t, err, name)
	}
}
