//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package local

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-canvas-go/block"
	"trpc.group/trpc-go/trpc-canvas-go/runtime"
)

// defWithScript materializes a block directory containing the given shell
// script as its logic artifact.
func defWithScript(t *testing.T, script string) *block.Definition {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transform.sh"), []byte(script), 0755))
	return &block.Definition{
		ID:   "community/test",
		Name: "Test", Description: "x", Author: "x", Version: "1.0.0",
		Logic: block.Logic{Kind: block.LogicCommand, File: "transform.sh"},
		Dir:  dir,
	}
}

func TestExecutor_RunsScriptWithInputOnStdin(t *testing.T) {
	def := defWithScript(t, `#!/bin/bash
read -r line
echo "PROMPT: $line"
`)

	result, err := New().Execute(context.Background(), def, runtime.Input{
		Text:   "hello",
		Config: map[string]any{"length": "short"},
	}, runtime.Capabilities{})
	require.NoError(t, err)

	assert.False(t, result.Final)
	assert.Contains(t, result.UserPrompt, `"text":"hello"`)
	assert.Contains(t, result.UserPrompt, `"length":"short"`)
}

func TestExecutor_StructuredFinalOutput(t *testing.T) {
	def := defWithScript(t, `#!/bin/bash
echo '{"text":"computed locally","final":true}'
`)

	result, err := New().Execute(context.Background(), def, runtime.Input{Text: "x"}, runtime.Capabilities{})
	require.NoError(t, err)
	assert.True(t, result.Final)
	assert.Equal(t, "computed locally", result.Text)
}

func TestExecutor_ScriptFailureCarriesStderr(t *testing.T) {
	def := defWithScript(t, `#!/bin/bash
echo "something broke" >&2
exit 3
`)

	_, err := New().Execute(context.Background(), def, runtime.Input{Text: "x"}, runtime.Capabilities{})
	require.Error(t, err)
	var execErr *runtime.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Contains(t, execErr.Err.Error(), "something broke")
}

func TestExecutor_Timeout(t *testing.T) {
	def := defWithScript(t, `#!/bin/bash
sleep 10
`)

	_, err := New(WithTimeout(200 * time.Millisecond)).
		Execute(context.Background(), def, runtime.Input{Text: "x"}, runtime.Capabilities{})
	require.ErrorIs(t, err, runtime.ErrTimeout)
}

func TestExecutor_UnsupportedArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transform.rb"), []byte("puts 'x'"), 0644))
	def := &block.Definition{
		ID:    "community/test",
		Logic: block.Logic{Kind: block.LogicCommand, File: "transform.rb"},
		Dir:   dir,
	}

	_, err := New().Execute(context.Background(), def, runtime.Input{Text: "x"}, runtime.Capabilities{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported logic artifact")
}

func TestExecutor_Kind(t *testing.T) {
	assert.Equal(t, block.LogicCommand, New().Kind())
}
