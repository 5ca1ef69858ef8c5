//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package template provides an Executor for template transform logic.
//
// The logic artifact is a Go text template rendered against the resolved
// input text and the node configuration. A template can only reach the
// data handed to it and the function map below, so it is sandboxed by
// construction. The rendered output is the user prompt; the system
// function sets the system prompt, and a template that calls the complete
// capability itself produces a final result instead.
package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
	"time"

	"trpc.group/trpc-go/trpc-canvas-go/block"
	"trpc.group/trpc-go/trpc-canvas-go/runtime"
)

const defaultTimeout = 30 * time.Second

// Executor renders template transform logic.
type Executor struct {
	timeout time.Duration
}

// Option configures the Executor.
type Option func(*Executor)

// WithTimeout sets the rendering deadline for a single transform.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.timeout = timeout
	}
}

// New creates a template executor.
func New(opts ...Option) *Executor {
	e := &Executor{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kind implements runtime.Executor.
func (e *Executor) Kind() string {
	return block.LogicTemplate
}

// renderState tracks what the template did while rendering.
type renderState struct {
	systemPrompt string
	final        bool
}

// Execute implements runtime.Executor.
func (e *Executor) Execute(
	ctx context.Context,
	def *block.Definition,
	input runtime.Input,
	caps runtime.Capabilities,
) (runtime.Result, error) {
	source, err := os.ReadFile(filepath.Join(def.Dir, def.LogicFile()))
	if err != nil {
		return runtime.Result{}, &runtime.ExecutionError{BlockID: def.ID, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	state := &renderState{}
	tmpl, err := texttemplate.New(def.ID).
		Funcs(e.funcs(ctx, state, caps)).
		Option("missingkey=zero").
		Parse(string(source))
	if err != nil {
		return runtime.Result{}, &runtime.ExecutionError{BlockID: def.ID, Err: err}
	}

	data := struct {
		Text   string
		Config map[string]any
	}{Text: input.Text, Config: input.Config}

	// Rendering runs in its own goroutine so a runaway template cannot
	// wedge the caller. On timeout the goroutine is abandoned; it holds no
	// locks and its buffer is discarded.
	type rendered struct {
		out string
		err error
	}
	done := make(chan rendered, 1)
	go func() {
		var sb strings.Builder
		err := tmpl.Execute(&sb, data)
		done <- rendered{out: sb.String(), err: err}
	}()

	var out string
	select {
	case <-ctx.Done():
		return runtime.Result{}, &runtime.ExecutionError{BlockID: def.ID, Err: runtime.ErrTimeout}
	case r := <-done:
		if r.err != nil {
			return runtime.Result{}, &runtime.ExecutionError{BlockID: def.ID, Err: r.err}
		}
		out = strings.TrimSpace(r.out)
	}
	if out == "" {
		return runtime.Result{}, &runtime.ExecutionError{BlockID: def.ID, Err: runtime.ErrEmptyResult}
	}
	if state.final {
		return runtime.Result{Text: out, Final: true}, nil
	}
	return runtime.Result{SystemPrompt: state.systemPrompt, UserPrompt: out}, nil
}

// funcs is the entire surface a template can reach beyond its data.
func (e *Executor) funcs(ctx context.Context, state *renderState, caps runtime.Capabilities) texttemplate.FuncMap {
	return texttemplate.FuncMap{
		"system": func(prompt string) string {
			state.systemPrompt = prompt
			return ""
		},
		"complete": func(systemPrompt, userPrompt string) (string, error) {
			if caps.Complete == nil {
				return "", fmt.Errorf("complete capability not available")
			}
			state.final = true
			return caps.Complete(ctx, systemPrompt, userPrompt)
		},
		"trim":  strings.TrimSpace,
		"join":  strings.Join,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}
