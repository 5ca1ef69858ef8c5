//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Reader extracts plain text from PDF documents.
type Reader struct{}

// New creates a PDF reader.
func New() *Reader {
	return &Reader{}
}

// ReadFromReader implements reader.Reader.
func (r *Reader) ReadFromReader(name string, src io.Reader) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	return extract(bytes.NewReader(data), int64(len(data)))
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
	return extract(file, stat.Size())
}

func extract(readerAt io.ReaderAt, size int64) (string, error) {
	pdfReader, err := pdf.NewReader(readerAt, size)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for pageIndex := 1; pageIndex <= pdfReader.NumPage(); pageIndex++ {
		page := pdfReader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		// Pages that fail text extraction are skipped rather than failing
		// the whole document.
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
