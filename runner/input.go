//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package runner

import (
	"strings"

	"trpc.group/trpc-go/trpc-canvas-go/canvas"
	"trpc.group/trpc-go/trpc-canvas-go/reader/markdown"
)

// resolveInput concatenates the text of every upstream node, in edge
// insertion order, joined by a blank line. Content nodes hold markdown;
// it is flattened to plain text so markup does not leak into prompts.
// Nodes with no effective text are excluded.
func resolveInput(graph *canvas.Graph, nodeID string) string {
	var parts []string
	for _, node := range graph.UpstreamNodes(nodeID) {
		text := markdown.PlainText([]byte(node.Text))
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}
