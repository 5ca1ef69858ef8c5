//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package runner orchestrates block execution: it resolves a block node's
// upstream input, drives the node's status through its lifecycle, invokes
// the transform runtime and the completion provider, and materializes the
// output node.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"trpc.group/trpc-go/trpc-canvas-go/block"
	"trpc.group/trpc-go/trpc-canvas-go/canvas"
	"trpc.group/trpc-go/trpc-canvas-go/canvas/store"
	"trpc.group/trpc-go/trpc-canvas-go/log"
	"trpc.group/trpc-go/trpc-canvas-go/provider"
	"trpc.group/trpc-go/trpc-canvas-go/runtime"
	"trpc.group/trpc-go/trpc-canvas-go/runtime/template"
	"trpc.group/trpc-go/trpc-canvas-go/telemetry/trace"
)

// Default geometry of output content nodes.
const (
	outputNodeWidth  = 400.0
	outputNodeHeight = 400.0
)

const clarifySystemPrompt = "You answer questions about an excerpt of the " +
	"user's notes. Base your answer on the excerpt alone and say so when " +
	"it does not contain the answer."

// Outcome is the caller-visible result of a successful run.
type Outcome struct {
	// RunID identifies this run in logs and traces.
	RunID string `json:"runId"`
	// NodeID is the block node that ran (empty for Clarify).
	NodeID string `json:"nodeId,omitempty"`
	// OutputNodeID is the content node created for the result.
	OutputNodeID string `json:"outputNodeId"`
	// Text is the generated text.
	Text string `json:"text"`
}

// Runner composes the graph store, the block registry, the transform
// runtime and the completion provider.
type Runner struct {
	store     store.DocumentStore
	registry  *block.Registry
	provider  provider.CompletionProvider
	executors map[string]runtime.Executor

	locks    *keyedMutex
	inflight sync.Map // inflight key -> run id
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor registers an executor for the logic kind it reports. The
// template executor is always available unless overridden.
func WithExecutor(executor runtime.Executor) Option {
	return func(r *Runner) {
		r.executors[executor.Kind()] = executor
	}
}

// New creates a Runner.
func New(s store.DocumentStore, registry *block.Registry, p provider.CompletionProvider, opts ...Option) *Runner {
	r := &Runner{
		store:     s,
		registry:  registry,
		provider:  p,
		executors: map[string]runtime.Executor{},
		locks:     newKeyedMutex(),
	}
	r.executors[block.LogicTemplate] = template.New()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunBlock executes the block node once. The processing status is
// persisted before the provider call begins; the output node, its edge
// and the final status land in a single write. Failed runs move the node
// to the error state and are never retried automatically.
func (r *Runner) RunBlock(ctx context.Context, ref store.DocumentRef, nodeID string) (*Outcome, error) {
	ctx, span := trace.Tracer.Start(ctx, "run_block")
	defer span.End()
	span.SetAttributes(
		attribute.String("canvas.document", ref),
		attribute.String("canvas.node", nodeID),
	)

	runID := "run-" + uuid.New().String()
	key := ref + "\x00" + nodeID
	if _, running := r.inflight.LoadOrStore(key, runID); running {
		return nil, fmt.Errorf("%w: node %q", ErrAlreadyRunning, nodeID)
	}
	defer r.inflight.Delete(key)

	def, input, config, err := r.begin(ctx, ref, nodeID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("block.id", def.ID))
	log.Infof("run %s: block %q on node %q (%d bytes of input)", runID, def.ID, nodeID, len(input))

	text, err := r.execute(ctx, def, input, config)
	if err != nil {
		r.fail(ctx, ref, nodeID, err)
		return nil, err
	}

	outputID, err := r.finish(ctx, ref, nodeID, text)
	if err != nil {
		return nil, err
	}
	return &Outcome{RunID: runID, NodeID: nodeID, OutputNodeID: outputID, Text: text}, nil
}

// begin validates the run, persists the processing marker and resolves
// the input, all under the document lock.
func (r *Runner) begin(
	ctx context.Context, ref store.DocumentRef, nodeID string,
) (def *block.Definition, input string, config map[string]any, err error) {
	unlock := r.locks.lock(ref)
	defer unlock()

	graph, err := r.store.Read(ctx, ref)
	if err != nil {
		return nil, "", nil, err
	}
	node, ok := graph.Node(nodeID)
	if !ok {
		return nil, "", nil, fmt.Errorf("%w: %q", canvas.ErrNodeNotFound, nodeID)
	}
	if node.Block == nil {
		return nil, "", nil, fmt.Errorf("%w: %q", ErrNotABlock, nodeID)
	}
	if node.Block.Status == canvas.StatusProcessing {
		// A processing node that is not in flight in this process was
		// interrupted by a crash; it stays busy until an explicit reset.
		return nil, "", nil, fmt.Errorf("%w: node %q", ErrAlreadyRunning, nodeID)
	}
	def, ok = r.registry.Get(node.Block.ID)
	if !ok {
		return nil, "", nil, fmt.Errorf("%w: %q", ErrBlockNotFound, node.Block.ID)
	}

	// The busy marker must be durable before the provider call starts, so
	// a concurrent reader sees the node as processing.
	node.Block.Status = canvas.StatusProcessing
	node.Block.Error = ""
	if err := r.store.Write(ctx, ref, graph); err != nil {
		return nil, "", nil, err
	}

	input = resolveInput(graph, nodeID)
	if input == "" {
		err := fmt.Errorf("%w: node %q", ErrNoInputText, nodeID)
		r.failLocked(ctx, ref, graph, node, err)
		return nil, "", nil, err
	}
	config, err = def.ResolveConfig(node.Block.Config)
	if err != nil {
		err = &runtime.ExecutionError{BlockID: def.ID, Err: err}
		r.failLocked(ctx, ref, graph, node, err)
		return nil, "", nil, err
	}
	return def, input, config, nil
}

// execute runs the transform logic and, for prompt artifacts, the
// provider call. It holds no locks: this is the only phase that may
// suspend for a long time.
func (r *Runner) execute(ctx context.Context, def *block.Definition, input string, config map[string]any) (string, error) {
	executor, ok := r.executors[def.LogicKind()]
	if !ok {
		return "", &runtime.ExecutionError{
			BlockID: def.ID,
			Err:     fmt.Errorf("no executor for logic kind %q", def.LogicKind()),
		}
	}
	caps := runtime.Capabilities{Complete: r.provider.Complete}
	result, err := executor.Execute(ctx, def, runtime.Input{Text: input, Config: config}, caps)
	if err != nil {
		return "", err
	}
	if result.Final {
		return result.Text, nil
	}
	return r.provider.Complete(ctx, result.SystemPrompt, result.UserPrompt)
}

// finish materializes the output: a new content node placed next to the
// source, an edge from source to output and the complete status, all in
// one durable write.
func (r *Runner) finish(ctx context.Context, ref store.DocumentRef, nodeID, text string) (string, error) {
	unlock := r.locks.lock(ref)
	defer unlock()

	graph, err := r.store.Read(ctx, ref)
	if err != nil {
		return "", err
	}
	node, ok := graph.Node(nodeID)
	if !ok || node.Block == nil {
		// The node disappeared mid-run; there is nowhere to attach the
		// output.
		return "", fmt.Errorf("%w: %q", canvas.ErrNodeNotFound, nodeID)
	}

	x, y := graph.InsertionPoint(nodeID)
	outputID := graph.CreateNode(&canvas.Node{
		Type:   canvas.NodeTypeText,
		Text:   text,
		X:      x,
		Y:      y,
		Width:  outputNodeWidth,
		Height: outputNodeHeight,
	})
	if _, err := graph.CreateEdge(nodeID, outputID, nil); err != nil {
		return "", err
	}
	node.Block.Status = canvas.StatusComplete
	node.Block.Error = ""
	if err := r.store.Write(ctx, ref, graph); err != nil {
		return "", err
	}
	return outputID, nil
}

// fail moves the node to the error state with the captured cause. The
// primary error is what the caller sees; a persist failure on top of it
// is logged.
func (r *Runner) fail(ctx context.Context, ref store.DocumentRef, nodeID string, cause error) {
	unlock := r.locks.lock(ref)
	defer unlock()

	graph, err := r.store.Read(ctx, ref)
	if err != nil {
		log.Errorf("failed to load %q to record error on node %q: %v", ref, nodeID, err)
		return
	}
	node, ok := graph.Node(nodeID)
	if !ok || node.Block == nil {
		return
	}
	r.failLocked(ctx, ref, graph, node, cause)
}

func (r *Runner) failLocked(ctx context.Context, ref store.DocumentRef, graph *canvas.Graph, node *canvas.Node, cause error) {
	node.Block.Status = canvas.StatusError
	node.Block.Error = cause.Error()
	if err := r.store.Write(ctx, ref, graph); err != nil {
		log.Errorf("failed to persist error state of node %q in %q: %v", node.ID, ref, err)
	}
}

// Reset returns a block node to the idle state. This is the explicit
// recovery action for error, complete and crash-stuck processing nodes;
// it is rejected while a run is actually in flight in this process.
func (r *Runner) Reset(ctx context.Context, ref store.DocumentRef, nodeID string) error {
	key := ref + "\x00" + nodeID
	if _, running := r.inflight.Load(key); running {
		return fmt.Errorf("%w: node %q", ErrAlreadyRunning, nodeID)
	}
	unlock := r.locks.lock(ref)
	defer unlock()

	graph, err := r.store.Read(ctx, ref)
	if err != nil {
		return err
	}
	node, ok := graph.Node(nodeID)
	if !ok {
		return fmt.Errorf("%w: %q", canvas.ErrNodeNotFound, nodeID)
	}
	if node.Block == nil {
		return fmt.Errorf("%w: %q", ErrNotABlock, nodeID)
	}
	node.Block.Status = canvas.StatusIdle
	node.Block.Error = ""
	return r.store.Write(ctx, ref, graph)
}

// Clarify is a one-shot run without a block node: it asks the provider a
// question about the selected text and, on success, materializes the
// answer as a standalone content node. On failure the graph is untouched.
func (r *Runner) Clarify(ctx context.Context, ref store.DocumentRef, selectedText, question string) (*Outcome, error) {
	ctx, span := trace.Tracer.Start(ctx, "clarify")
	defer span.End()
	span.SetAttributes(attribute.String("canvas.document", ref))

	runID := "run-" + uuid.New().String()
	userPrompt := fmt.Sprintf("Excerpt:\n\n%s\n\nQuestion: %s", selectedText, question)
	text, err := r.provider.Complete(ctx, clarifySystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	unlock := r.locks.lock(ref)
	defer unlock()
	graph, err := r.store.Read(ctx, ref)
	if err != nil {
		return nil, err
	}
	x, y := graph.InsertionPoint("")
	outputID := graph.CreateNode(&canvas.Node{
		Type:   canvas.NodeTypeText,
		Text:   text,
		X:      x,
		Y:      y,
		Width:  outputNodeWidth,
		Height: outputNodeHeight,
	})
	if err := r.store.Write(ctx, ref, graph); err != nil {
		return nil, err
	}
	return &Outcome{RunID: runID, OutputNodeID: outputID, Text: text}, nil
}
