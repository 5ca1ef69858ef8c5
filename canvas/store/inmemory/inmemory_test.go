//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-canvas-go/canvas"
	"trpc.group/trpc-go/trpc-canvas-go/canvas/store"
)

func TestStore_ReadWrite(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Read(ctx, "doc.canvas")
	require.ErrorIs(t, err, store.ErrNotFound)

	g := canvas.New()
	g.CreateNode(&canvas.Node{Type: canvas.NodeTypeText, Text: "hi"})
	require.NoError(t, s.Write(ctx, "doc.canvas", g))

	got, err := s.Read(ctx, "doc.canvas")
	require.NoError(t, err)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "hi", got.Nodes[0].Text)

	// Documents round-trip through the serialized form, so later graph
	// mutations are not visible until written.
	g.CreateNode(&canvas.Node{Type: canvas.NodeTypeText})
	again, err := s.Read(ctx, "doc.canvas")
	require.NoError(t, err)
	assert.Len(t, again.Nodes, 1)

	raw, ok := s.Raw("doc.canvas")
	require.True(t, ok)
	assert.NotEmpty(t, raw)
}
