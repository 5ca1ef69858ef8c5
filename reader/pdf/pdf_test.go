//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"
)

// newTestPDF generates a small PDF containing "Hello World". Generating
// the fixture keeps it well-formed without checking binary files in.
func newTestPDF(t *testing.T) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Cell(40, 10, "Hello World")

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestReader_ReadFromReader(t *testing.T) {
	data := newTestPDF(t)

	got, err := New().ReadFromReader("sample.pdf", bytes.NewReader(data))
	require.NoError(t, err)
	require.True(t, strings.Contains(got, "Hello World"), "got %q", got)
}

func TestReader_ReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, newTestPDF(t), 0644))

	got, err := New().ReadFromFile(path)
	require.NoError(t, err)
	require.Contains(t, got, "Hello World")
}

func TestReader_InvalidData(t *testing.T) {
	_, err := New().ReadFromReader("bad.pdf", strings.NewReader("not a pdf"))
	require.Error(t, err)
}
