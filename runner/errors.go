//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package runner

import "errors"

// Errors. Each maps to a distinct remediation: connect a node, look up
// the right id, reset the node, or fix the block itself.
var (
	// ErrNotABlock reports a run request against a node with no block
	// association.
	ErrNotABlock = errors.New("node is not a block")
	// ErrBlockNotFound reports that the node references a block id the
	// registry does not know.
	ErrBlockNotFound = errors.New("block definition not found")
	// ErrNoInputText reports that no connected upstream node carried any
	// text. The node is left in the error state; the run is not retried.
	ErrNoInputText = errors.New("no input text: no connected node has text")
	// ErrAlreadyRunning reports a second run request for a node that is
	// still processing. The request is rejected, not queued.
	ErrAlreadyRunning = errors.New("a run is already in flight for this node")
)
