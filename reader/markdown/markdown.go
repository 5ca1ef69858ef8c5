//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package markdown flattens markdown to plain text. The orchestrator uses
// it to strip markup from content nodes before prompting, and the import
// path uses it as the reader for .md files.
package markdown

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Reader extracts plain text from markdown documents.
type Reader struct {
	md goldmark.Markdown
}

// New creates a markdown reader.
func New() *Reader {
	return &Reader{md: goldmark.New()}
}

// ReadFromReader implements reader.Reader.
func (r *Reader) ReadFromReader(name string, src io.Reader) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	return r.plainText(data), nil
}

// ReadFromFile implements reader.Reader.
func (r *Reader) ReadFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return r.plainText(data), nil
}

// PlainText flattens a markdown document to its text content: block
// structure becomes blank lines, inline markup disappears.
func PlainText(source []byte) string {
	return New().plainText(source)
}

func (r *Reader) plainText(source []byte) string {
	doc := r.md.Parser().Parse(text.NewReader(source))
	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				sb.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(node.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				segment := lines.At(i)
				sb.Write(segment.Value(source))
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			sb.Write(node.URL(source))
		}
		return ast.WalkContinue, nil
	})
	out := blankRuns.ReplaceAllString(sb.String(), "\n\n")
	return strings.TrimSpace(out)
}
