//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package canvas

import "errors"

// Errors.
var (
	// ErrNodeNotFound is returned when a node id does not exist in the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeEndpoint is returned when an edge references a node that does
	// not exist in the graph. The graph is left unchanged.
	ErrEdgeEndpoint = errors.New("edge endpoint does not exist")
)
