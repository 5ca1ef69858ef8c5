//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package reader_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-canvas-go/reader"
	"trpc.group/trpc-go/trpc-canvas-go/reader/markdown"
	"trpc.group/trpc-go/trpc-canvas-go/reader/text"
)

func TestRegistry_ForFile(t *testing.T) {
	r := reader.NewRegistry(map[string]reader.Reader{
		".md":  markdown.New(),
		".TXT": text.New(),
	})

	got, err := r.ForFile("notes.md")
	require.NoError(t, err)
	assert.NotNil(t, got)

	// Extensions match case-insensitively in both directions.
	got, err = r.ForFile("README.MD")
	require.NoError(t, err)
	assert.NotNil(t, got)
	got, err = r.ForFile("plain.txt")
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = r.ForFile("image.png")
	assert.Error(t, err)
}

func TestTextReader(t *testing.T) {
	got, err := text.New().ReadFromReader("plain.txt", strings.NewReader("  raw text \n"))
	require.NoError(t, err)
	assert.Equal(t, "raw text", got)
}
