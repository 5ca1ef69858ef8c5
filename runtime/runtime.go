//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package runtime defines the contract for running a block's transform
// logic in isolation. Logic gets exactly the input and capabilities it is
// handed and nothing else: no ambient filesystem, network or host-object
// access.
package runtime

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-canvas-go/block"
)

// Errors.
var (
	// ErrTimeout reports that the transform logic exceeded its deadline.
	ErrTimeout = errors.New("transform logic timed out")
	// ErrEmptyResult reports that the transform logic produced no output.
	ErrEmptyResult = errors.New("transform logic produced no output")
)

// Input is what a transform receives: the resolved upstream text and the
// node's configuration, already filtered to the block's declared settings.
type Input struct {
	Text   string
	Config map[string]any
}

// Capabilities is the explicit capability set injected into a transform.
// At minimum Complete is set, bound to the configured completion provider.
type Capabilities struct {
	// Complete sends a (system, user) prompt pair to the completion
	// provider and returns the generated text.
	Complete func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Result is what a transform produces. When Final is false the transform
// built a prompt artifact and the caller performs the provider call; when
// Final is true the transform already produced the end text (for example
// by calling the Complete capability itself) and Text holds it.
type Result struct {
	SystemPrompt string
	UserPrompt   string
	Text         string
	Final        bool
}

// Executor runs one kind of transform logic.
type Executor interface {
	// Kind returns the logic kind this executor handles, matching the
	// manifest's logic.kind field.
	Kind() string
	// Execute runs the block's transform logic against the input.
	Execute(ctx context.Context, def *block.Definition, input Input, caps Capabilities) (Result, error)
}

// ExecutionError reports a faulted transform: the logic threw, timed out
// or returned an unusable value. The block id and underlying cause are
// preserved for display.
type ExecutionError struct {
	BlockID string
	Err     error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("block %q transform failed: %v", e.BlockID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}
