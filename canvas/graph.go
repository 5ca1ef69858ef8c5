//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package canvas

import (
	"fmt"
	"strconv"
	"strings"
)

// insertionGap is the horizontal spacing between a node and an output node
// placed next to it.
const insertionGap = 60.0

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (*Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// UpstreamNodes returns the nodes feeding into the given node, in edge
// insertion order. The order is stable across load/store cycles.
func (g *Graph) UpstreamNodes(id string) []*Node {
	var nodes []*Node
	for _, e := range g.Edges {
		if e.To != id {
			continue
		}
		if n, ok := g.Node(e.From); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// DownstreamNodes returns the nodes the given node feeds into, in edge
// insertion order.
func (g *Graph) DownstreamNodes(id string) []*Node {
	var nodes []*Node
	for _, e := range g.Edges {
		if e.From != id {
			continue
		}
		if n, ok := g.Node(e.To); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// CreateNode adds the node to the graph, assigns it a fresh id unique
// within the graph and returns that id. Any id already set on the node is
// overwritten.
func (g *Graph) CreateNode(n *Node) string {
	n.ID = g.nextID("node")
	g.Nodes = append(g.Nodes, n)
	return n.ID
}

// CreateEdge adds a directed edge from one node to another. Both endpoints
// must exist; otherwise ErrEdgeEndpoint is returned and the graph is left
// unchanged. Visual attributes already set on attrs are kept.
func (g *Graph) CreateEdge(from, to string, attrs *Edge) (string, error) {
	if _, ok := g.Node(from); !ok {
		return "", fmt.Errorf("%w: from node %q", ErrEdgeEndpoint, from)
	}
	if _, ok := g.Node(to); !ok {
		return "", fmt.Errorf("%w: to node %q", ErrEdgeEndpoint, to)
	}
	if attrs == nil {
		attrs = &Edge{}
	}
	attrs.From = from
	attrs.To = to
	attrs.ID = g.nextID("edge")
	g.Edges = append(g.Edges, attrs)
	return attrs.ID, nil
}

// NodeUpdate describes a partial update of a node. Nil fields are left
// untouched; Block replaces the whole block state when set.
type NodeUpdate struct {
	Text   *string  `json:"text,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Block  *Block   `json:"block,omitempty"`
}

// UpdateNode merges the update into the node with the given id.
func (g *Graph) UpdateNode(id string, update NodeUpdate) error {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	if update.Text != nil {
		n.Text = *update.Text
	}
	if update.X != nil {
		n.X = *update.X
	}
	if update.Y != nil {
		n.Y = *update.Y
	}
	if update.Width != nil {
		n.Width = *update.Width
	}
	if update.Height != nil {
		n.Height = *update.Height
	}
	if update.Block != nil {
		n.Block = update.Block
	}
	return nil
}

// DeleteNode removes the node and every edge touching it.
func (g *Graph) DeleteNode(id string) error {
	idx := -1
	for i, n := range g.Nodes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)
	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if e.From == id || e.To == id {
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	return nil
}

// InsertionPoint computes where to place a new node: to the right of the
// reference node when one is given, otherwise to the right of the
// rightmost node in the graph. Pure function of the graph.
func (g *Graph) InsertionPoint(referenceID string) (x, y float64) {
	if referenceID != "" {
		if ref, ok := g.Node(referenceID); ok {
			return ref.X + ref.Width + insertionGap, ref.Y
		}
	}
	var rightmost *Node
	for _, n := range g.Nodes {
		if rightmost == nil || n.X > rightmost.X {
			rightmost = n
		}
	}
	if rightmost == nil {
		return 0, 0
	}
	return rightmost.X + rightmost.Width + insertionGap, rightmost.Y
}

// nextID generates an id of the form "<prefix>-<k>" that no node or edge
// in the graph currently uses. k starts one past the largest suffix in
// use, so ids are unique by construction rather than by probability.
func (g *Graph) nextID(prefix string) string {
	max := 0
	scan := func(id string) {
		rest, ok := strings.CutPrefix(id, prefix+"-")
		if !ok {
			return
		}
		if k, err := strconv.Atoi(rest); err == nil && k > max {
			max = k
		}
	}
	for _, n := range g.Nodes {
		scan(n.ID)
	}
	for _, e := range g.Edges {
		scan(e.ID)
	}
	for k := max + 1; ; k++ {
		id := prefix + "-" + strconv.Itoa(k)
		if g.idInUse(id) {
			continue
		}
		return id
	}
}

func (g *Graph) idInUse(id string) bool {
	if _, ok := g.Node(id); ok {
		return true
	}
	_, ok := g.Edge(id)
	return ok
}
