//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package docx extracts plain text from DOCX documents.
package docx

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gonfva/docxlib"
)

// Reader extracts plain text from DOCX documents.
type Reader struct{}

// New creates a DOCX reader.
func New() *Reader {
	return &Reader{}
}

// ReadFromReader implements reader.Reader.
func (r *Reader) ReadFromReader(name string, src io.Reader) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	doc, err := docxlib.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx %q: %w", name, err)
	}
	return extract(doc), nil
}

// ReadFromFile implements reader.Reader.
func (r *Reader) ReadFromFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return "", err
	}
	doc, err := docxlib.Parse(file, stat.Size())
	if err != nil {
		return "", fmt.Errorf("parse docx %q: %w", path, err)
	}
	return extract(doc), nil
}

func extract(doc *docxlib.DocxLib) string {
	var sb strings.Builder
	for _, paragraph := range doc.Paragraphs() {
		lineStart := sb.Len()
		for _, child := range paragraph.Children() {
			if child.Run != nil && child.Run.Text != nil {
				if text := strings.TrimSpace(child.Run.Text.Text); text != "" {
					sb.WriteString(text)
					sb.WriteString(" ")
				}
			}
			if child.Link != nil && child.Link.Run.Text != nil {
				if text := strings.TrimSpace(child.Link.Run.Text.Text); text != "" {
					sb.WriteString(text)
					sb.WriteString(" ")
				}
			}
		}
		if sb.Len() > lineStart {
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}
