//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package block

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBlock lays out <root>/<category>/<name>/block.json plus a template
// artifact, the same shape a scan expects on disk.
func writeBlock(t *testing.T, root, category, name, id string) {
	t.Helper()
	dir := filepath.Join(root, category, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	manifest := fmt.Sprintf(`{
	"id": %q,
	"name": %q,
	"description": "test block",
	"author": "tester",
	"version": "1.0.0"
}`, id, name)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompt.tmpl"), []byte("{{.Text}}"), 0644))
}

func TestRegistry_Scan(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "core", "summarizer", "core/summarizer")
	writeBlock(t, root, "community", "haiku", "community/haiku")

	r := New(root)
	require.NoError(t, r.Scan())

	def, ok := r.Get("core/summarizer")
	require.True(t, ok)
	assert.Equal(t, "core", def.Category)
	assert.Equal(t, filepath.Join(root, "core", "summarizer"), def.Dir)

	assert.Len(t, r.List(), 2)
	assert.Len(t, r.List("community"), 1)
	assert.Empty(t, r.List("plugins"))
	assert.Empty(t, r.Diagnostics())
}

func TestRegistry_ScanSkipsBrokenBlocks(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "core", "good", "core/good")

	// Invalid manifest JSON.
	badDir := filepath.Join(root, "core", "bad-json")
	require.NoError(t, os.MkdirAll(badDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(badDir, ManifestName), []byte("{oops"), 0644))

	// Valid manifest but missing logic artifact.
	noLogic := filepath.Join(root, "core", "no-logic")
	require.NoError(t, os.MkdirAll(noLogic, 0755))
	manifest := `{"id":"core/no-logic","name":"x","description":"x","author":"x","version":"1.0.0"}`
	require.NoError(t, os.WriteFile(filepath.Join(noLogic, ManifestName), []byte(manifest), 0644))

	r := New(root)
	require.NoError(t, r.Scan())

	assert.Len(t, r.List(), 1)
	_, ok := r.Get("core/good")
	assert.True(t, ok)
	assert.Len(t, r.Diagnostics(), 2)
}

func TestRegistry_DuplicateIDLastWins(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "community", "aaa-first", "community/echo")
	writeBlock(t, root, "community", "zzz-second", "community/echo")

	r := New(root)
	require.NoError(t, r.Scan())

	require.Len(t, r.List(), 1)
	def, ok := r.Get("community/echo")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "community", "zzz-second"), def.Dir)
}

func TestRegistry_ReloadPicksUpChanges(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "core", "keep", "core/keep")
	writeBlock(t, root, "core", "drop", "core/drop")

	r := New(root)
	require.NoError(t, r.Scan())
	require.Len(t, r.List(), 2)

	held, ok := r.Get("core/drop")
	require.True(t, ok)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "core", "drop")))
	writeBlock(t, root, "core", "added", "core/added")
	require.NoError(t, r.Reload())

	_, ok = r.Get("core/drop")
	assert.False(t, ok)
	_, ok = r.Get("core/added")
	assert.True(t, ok)

	// A definition handed out before the reload stays usable.
	assert.Equal(t, "core/drop", held.ID)
}

func TestRegistry_IgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "core", "wanted", "core/wanted")
	writeBlock(t, root, "core", "draft-x", "core/draft-x")

	r := New(root, WithIgnorePatterns("*/draft-*"))
	require.NoError(t, r.Scan())

	require.Len(t, r.List(), 1)
	_, ok := r.Get("core/wanted")
	assert.True(t, ok)
}

func TestRegistry_ScanEmptyRoot(t *testing.T) {
	r := New(t.TempDir())
	require.NoError(t, r.Scan())
	assert.Empty(t, r.List())
}
