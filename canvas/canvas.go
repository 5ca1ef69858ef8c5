//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package canvas defines the node/edge graph of a canvas document and the
// operations that maintain its invariants.
package canvas

import (
	"encoding/json"
)

// Node types.
const (
	// NodeTypeText is a content node carrying markdown text.
	NodeTypeText = "text"
	// NodeTypeFile is a reference node pointing at a file.
	NodeTypeFile = "file"
	// NodeTypeLink is a reference node pointing at a URL.
	NodeTypeLink = "link"
)

// Status is the execution status of a block node.
type Status string

// Block node statuses. A node moves idle -> processing -> complete or
// error; error and complete return to idle only via an explicit reset.
const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Block is the execution state attached to a node that instantiates a
// block definition.
type Block struct {
	ID     string         `json:"id"`
	Status Status         `json:"status"`
	Config map[string]any `json:"config,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Node is a single node of a canvas document. Fields not modeled here are
// preserved in Extra and round-tripped unchanged.
type Node struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Text   string  `json:"text,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Block  *Block  `json:"block,omitempty"`

	// Extra holds fields the host wrote that this package does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

// Edge is a directed edge: the node named by From feeds the node named by To.
type Edge struct {
	ID       string `json:"id"`
	From     string `json:"fromNode"`
	To       string `json:"toNode"`
	FromSide string `json:"fromSide,omitempty"`
	ToSide   string `json:"toSide,omitempty"`
	Color    string `json:"color,omitempty"`
	Label    string `json:"label,omitempty"`

	// Extra holds fields the host wrote that this package does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

// Graph is the full node/edge set of one canvas document. Node and edge
// order is preserved across load/store cycles; edge order doubles as the
// stable upstream-resolution order.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// New returns an empty graph with both collections initialized.
func New() *Graph {
	return &Graph{Nodes: []*Node{}, Edges: []*Edge{}}
}

var nodeKnownFields = map[string]struct{}{
	"id": {}, "type": {}, "text": {}, "x": {}, "y": {},
	"width": {}, "height": {}, "block": {},
}

var edgeKnownFields = map[string]struct{}{
	"id": {}, "fromNode": {}, "toNode": {}, "fromSide": {},
	"toSide": {}, "color": {}, "label": {},
}

// nodeAlias avoids recursing into Node's own (un)marshalers.
type nodeAlias Node

// UnmarshalJSON decodes the modeled fields and keeps everything else in Extra.
func (n *Node) UnmarshalJSON(data []byte) error {
	var alias nodeAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if _, known := nodeKnownFields[key]; known {
			delete(raw, key)
		}
	}
	*n = Node(alias)
	if len(raw) > 0 {
		n.Extra = raw
	}
	return nil
}

// MarshalJSON merges the modeled fields with the preserved Extra fields.
// Output key order is deterministic (sorted by the encoder).
func (n *Node) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(nodeAlias(*n), n.Extra)
}

type edgeAlias Edge

// UnmarshalJSON decodes the modeled fields and keeps everything else in Extra.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var alias edgeAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if _, known := edgeKnownFields[key]; known {
			delete(raw, key)
		}
	}
	*e = Edge(alias)
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

// MarshalJSON merges the modeled fields with the preserved Extra fields.
func (e *Edge) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(edgeAlias(*e), e.Extra)
}

func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	known, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return known, nil
	}
	merged := make(map[string]json.RawMessage, len(extra)+8)
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}
